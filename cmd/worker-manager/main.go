// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"contract-query-workers/internal/api"
	"contract-query-workers/internal/common/camunda"
	"contract-query-workers/internal/common/config"
	"contract-query-workers/internal/common/database"
	"contract-query-workers/internal/common/logger"
	"contract-query-workers/internal/common/metrics"
	"contract-query-workers/internal/common/observability"
	"contract-query-workers/internal/common/querylog"
	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/pipeline"
	"contract-query-workers/internal/session"

	pcq "contract-query-workers/internal/workers/query-understanding/parse-contract-query"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// queryObserver fans each interpreted query out to Prometheus and OTel.
type queryObserver struct {
	prom metrics.QueryObserver
	obs  *observability.Observability
}

func (q queryObserver) ObserveQuery(result *models.QueryResult, corrections int) {
	q.prom.ObserveQuery(result, corrections)
	q.obs.RecordQueryClassified(context.Background(),
		string(result.Metadata.QueryType), string(result.Metadata.ActionType))
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	log, zapLog := logger.NewFromConfig(cfg.Logging)
	defer zapLog.Sync()

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obsOpts := []observability.Option{}
	if cfg.Tracing.Enabled {
		obsOpts = append(obsOpts, observability.WithTracing(cfg.Tracing.SampleRatio))
	}
	obs := observability.New(cfg.Tracing.ServiceName, obsOpts...)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	probes := map[string]api.Pinger{}

	// --- PostgreSQL (registry source) ---
	var pg *database.PostgresClient
	if cfg.Registry.Source == config.RegistrySourcePostgres {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		probes["postgres"] = pg
	}

	// --- Column registry and spell dictionary ---
	reg, err := database.LoadColumnRegistry(ctx, cfg.Registry, pg)
	if err != nil {
		zapLog.Fatal("column registry load failed", zap.Error(err))
	}
	dict, err := database.LoadSpellDictionary(cfg.Registry)
	if err != nil {
		zapLog.Fatal("spell dictionary load failed", zap.Error(err))
	}
	zapLog.Info("Column registry loaded",
		zap.String("source", cfg.Registry.Source),
		zap.Strings("tables", reg.Tables()),
		zap.Int("corrections", dict.Len()),
	)

	processor := pipeline.NewProcessor(reg, dict,
		pipeline.WithLogger(log),
		pipeline.WithObserver(queryObserver{obs: obs}),
	)

	handlerOpts := []pcq.Option{pcq.WithTracer(obs)}
	var sessions *session.Store
	var queryLog *querylog.Indexer

	// --- Redis (session store) ---
	if cfg.Session.Enabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		if err := rdb.Ping(ctx); err != nil {
			zapLog.Warn("redis not reachable at startup, sessions will retry per request", zap.Error(err))
		}
		defer rdb.Close()
		probes["redis"] = rdb

		sessions = session.NewStore(rdb.Client, cfg.Session.KeyPrefix, cfg.Session.TTL())
		handlerOpts = append(handlerOpts, pcq.WithSessions(sessions))
		zapLog.Info("Session store enabled", zap.Duration("ttl", cfg.Session.TTL()))
	}

	// --- Elasticsearch (query log) ---
	if cfg.QueryLog.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch client failed", zap.Error(err))
		}
		if err := es.Ping(ctx); err != nil {
			zapLog.Warn("elasticsearch not reachable at startup", zap.Error(err))
		}
		probes["elasticsearch"] = es

		queryLog = querylog.New(es, cfg.QueryLog.Index, log)
		handlerOpts = append(handlerOpts, pcq.WithQueryLog(queryLog))
		zapLog.Info("Query log enabled", zap.String("index", cfg.QueryLog.Index))
	}

	// --- Zeebe worker ---
	var jobWorker *camunda.CamundaWorker
	var zeebe *camunda.Client
	if config.IsWorkerEnabled(cfg, pcq.TaskType) {
		zeebe, err = camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda))
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))
		probes["zeebe"] = pingFunc(zeebe.HealthCheck)

		wcfg := config.GetWorkerConfig(cfg, pcq.TaskType)
		handlerCfg := pcq.LoadConfig()
		if wcfg.Timeout > 0 {
			handlerCfg.Timeout = config.GetDuration(wcfg.Timeout)
		}
		handler := pcq.NewHandler(handlerCfg, processor, log, handlerOpts...)
		jobWorker = camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      pcq.TaskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, handler, log)
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", pcq.TaskType))
	}

	// --- Health, Metrics and Parse API ---
	serverErr := make(chan error, 1)
	if cfg.Server.Enabled {
		apiOpts := api.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Interpreter: processor,
			Registry:    reg,
			Probes:      probes,
			Tracer:      obs,
		}
		if sessions != nil {
			apiOpts.Sessions = sessions
		}
		if queryLog != nil {
			apiOpts.QueryLog = queryLog
		}
		srv := api.New(apiOpts, log)
		go func() {
			serverErr <- srv.Run(ctx, cfg.Server.Address(),
				config.GetDuration(cfg.Server.ReadTimeout), config.GetDuration(cfg.Server.WriteTimeout))
		}()
	}

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping workers...")
		if cfg.Server.Enabled {
			if err := <-serverErr; err != nil {
				zapLog.Error("API server shutdown failed", zap.Error(err))
			}
		}
	case err := <-serverErr:
		if err != nil {
			zapLog.Error("API server failed", zap.Error(err))
		}
		stop()
	}

	if jobWorker != nil {
		jobWorker.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}
