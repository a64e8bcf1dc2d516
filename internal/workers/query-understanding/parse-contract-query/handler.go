// internal/workers/query-understanding/parse-contract-query/handler.go
package parsecontractquery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "contract-query-workers/internal/common/errors"
	"contract-query-workers/internal/common/logger"
	"contract-query-workers/internal/common/metrics"
	"contract-query-workers/internal/common/querylog"
	"contract-query-workers/internal/common/validation"
	"contract-query-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const TaskType = "parse-contract-query"

// Interpreter runs the query understanding pipeline.
type Interpreter interface {
	Process(text string) *models.QueryResult
	ProcessAt(text string, now time.Time) *models.QueryResult
}

// SessionStore is the subset of session.Store the worker needs.
type SessionStore interface {
	ResolveFollowUp(ctx context.Context, id, input string) (string, bool, error)
	Save(ctx context.Context, id, input string, result *models.QueryResult) (*models.Session, error)
}

// QueryLog is the subset of querylog.Indexer the worker needs.
type QueryLog interface {
	Index(ctx context.Context, e querylog.Entry) (string, error)
}

// Tracer starts spans. *observability.Observability satisfies it.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

type Handler struct {
	config      *Config
	logger      logger.Logger
	interpreter Interpreter
	sessions    SessionStore
	queryLog    QueryLog
	channel     string
	tracer      Tracer
	errors      *apperrors.ErrorHandler
}

type Option func(*Handler)

func WithSessions(s SessionStore) Option {
	return func(h *Handler) { h.sessions = s }
}

func WithQueryLog(q QueryLog) Option {
	return func(h *Handler) { h.queryLog = q }
}

// WithChannel tags query log entries with the surface the query came from.
func WithChannel(channel string) Option {
	return func(h *Handler) { h.channel = channel }
}

func WithTracer(t Tracer) Option {
	return func(h *Handler) { h.tracer = t }
}

func NewHandler(config *Config, interpreter Interpreter, log logger.Logger, opts ...Option) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config:      config,
		logger:      log,
		interpreter: interpreter,
		channel:     querylog.ChannelWorker,
		errors:      apperrors.NewErrorHandler(log),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, timer, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, timer, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	timer.Completed()
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if res := validation.ValidateStruct(input); !res.Valid {
		return nil, apperrors.NewInvalidInputError(res.Summary())
	}

	if h.tracer != nil {
		var span trace.Span
		ctx, span = h.tracer.StartSpan(ctx, "query.parse", attribute.String("query.channel", h.channel))
		defer span.End()
	}

	text := input.Query
	resolved := false
	if h.sessions != nil && input.SessionID != "" {
		rewritten, ok, err := h.sessions.ResolveFollowUp(ctx, input.SessionID, text)
		if err != nil {
			h.logger.Warn("session lookup failed", map[string]interface{}{
				"sessionId": input.SessionID,
				"error":     err.Error(),
			})
		} else if ok {
			text, resolved = rewritten, true
		}
	}

	var result *models.QueryResult
	if input.AsOf != "" {
		asOf, _ := time.Parse("2006-01-02", input.AsOf)
		result = h.interpreter.ProcessAt(text, asOf)
	} else {
		result = h.interpreter.Process(text)
	}

	if result.Metadata.ActionType == models.ActionError {
		msg := "query processing failed"
		if len(result.Errors) > 0 {
			msg = result.Errors[0].Message
		}
		return nil, apperrors.NewProcessingError(msg)
	}

	if h.sessions != nil && input.SessionID != "" {
		if _, err := h.sessions.Save(ctx, input.SessionID, text, result); err != nil {
			h.logger.Warn("session save failed", map[string]interface{}{
				"sessionId": input.SessionID,
				"error":     err.Error(),
			})
		}
	}

	queryID := querylog.NewQueryID()
	if h.queryLog != nil {
		_, _ = h.queryLog.Index(ctx, querylog.Entry{
			QueryID:   queryID,
			SessionID: input.SessionID,
			Channel:   h.channel,
			Result:    result,
		})
	}

	blocked := result.HasBlockers()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("query.type", string(result.Metadata.QueryType)),
		attribute.String("query.action", string(result.Metadata.ActionType)),
		attribute.Bool("query.blocked", blocked),
		attribute.Bool("query.follow_up", resolved),
	)
	if blocked && h.config.ThrowOnBlocker {
		return nil, apperrors.NewQueryNeedsClarificationError(firstBlocker(result))
	}

	output := &Output{
		QueryID:               queryID,
		QueryResult:           result,
		QueryType:             result.Metadata.QueryType,
		ActionType:            result.Metadata.ActionType,
		RequiresClarification: blocked,
	}
	if resolved {
		output.ResolvedQuery = text
	}

	h.logger.Info("query interpreted", map[string]interface{}{
		"queryId":    queryID,
		"queryType":  output.QueryType,
		"actionType": output.ActionType,
		"entities":   len(result.Entities),
		"blocked":    blocked,
	})
	return output, nil
}

func firstBlocker(r *models.QueryResult) string {
	for _, e := range r.Errors {
		if e.Severity == models.SeverityBlocker {
			return e.Message
		}
	}
	return ""
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, timer *metrics.JobTimer, err error) {
	timer.Failed(string(apperrors.Normalize(err).Code))
	h.errors.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
