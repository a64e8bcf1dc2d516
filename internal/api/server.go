// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	apperrors "contract-query-workers/internal/common/errors"
	"contract-query-workers/internal/common/logger"
	"contract-query-workers/internal/common/querylog"
	pcq "contract-query-workers/internal/workers/query-understanding/parse-contract-query"
	"contract-query-workers/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionStore is what the API needs from session.Store.
type SessionStore interface {
	pcq.SessionStore
	Clear(ctx context.Context, id string) error
}

type Options struct {
	ServiceName string
	Interpreter pcq.Interpreter
	Registry    *registry.Registry
	Sessions    SessionStore
	QueryLog    pcq.QueryLog
	Probes      map[string]Pinger
	Tracer      pcq.Tracer
	Timeout     time.Duration
}

type Server struct {
	router   *gin.Engine
	handler  *pcq.Handler
	registry *registry.Registry
	sessions SessionStore
	probes   map[string]Pinger
	logger   logger.Logger
}

func New(opts Options, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	log = log.With(map[string]interface{}{"component": "api"})
	handlerOpts := []pcq.Option{pcq.WithChannel(querylog.ChannelAPI)}
	if opts.Sessions != nil {
		handlerOpts = append(handlerOpts, pcq.WithSessions(opts.Sessions))
	}
	if opts.QueryLog != nil {
		handlerOpts = append(handlerOpts, pcq.WithQueryLog(opts.QueryLog))
	}
	if opts.Tracer != nil {
		handlerOpts = append(handlerOpts, pcq.WithTracer(opts.Tracer))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &Server{
		router:   gin.New(),
		handler:  pcq.NewHandler(&pcq.Config{Timeout: timeout}, opts.Interpreter, log, handlerOpts...),
		registry: opts.Registry,
		sessions: opts.Sessions,
		probes:   opts.Probes,
		logger:   log,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(otelgin.Middleware(opts.ServiceName))
	s.router.Use(s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.health)
	s.router.GET("/ready", s.ready)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	v1.POST("/query/parse", s.parseQuery)
	v1.DELETE("/sessions/:id", s.clearSession)
	v1.GET("/registry", s.getRegistry)
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request served", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.probes))
	status := http.StatusOK
	for name, p := range s.probes {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) parseQuery(c *gin.Context) {
	var input pcq.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		s.writeError(c, apperrors.NewInvalidInputError("request body must be a JSON object"))
		return
	}

	output, err := s.handler.Execute(c.Request.Context(), &input)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (s *Server) clearSession(c *gin.Context) {
	if s.sessions == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "sessions are disabled"})
		return
	}
	if err := s.sessions.Clear(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getRegistry(c *gin.Context) {
	if s.registry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "registry not loaded"})
		return
	}
	c.JSON(http.StatusOK, s.registry.Schema())
}

func (s *Server) writeError(c *gin.Context, err error) {
	stdErr := apperrors.Normalize(err)
	status := statusFor(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"path":  c.FullPath(),
			"code":  stdErr.Code,
			"error": stdErr.Error(),
		})
	}
	c.JSON(status, gin.H{"error": stdErr})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeParseError:
		return http.StatusBadRequest
	case apperrors.ErrCodeQueryNeedsContext:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeSessionStoreFailed, apperrors.ErrCodeDatabaseConnectionFailed,
		apperrors.ErrCodeElasticsearchConnectionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", map[string]interface{}{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
