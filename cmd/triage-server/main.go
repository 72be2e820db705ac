package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead-triage/internal/api"
	"lead-triage/internal/common/camunda"
	"lead-triage/internal/common/config"
	"lead-triage/internal/common/database"
	"lead-triage/internal/common/logger"
	"lead-triage/internal/common/observability"
	"lead-triage/internal/triage/actions"
	"lead-triage/internal/triage/corpus"
	"lead-triage/internal/triage/ledger"
	"lead-triage/internal/triage/pipeline"
	approve "lead-triage/internal/workers/suggestion/approve-suggestion"
	create "lead-triage/internal/workers/suggestion/create-suggestion"
	"lead-triage/pkg/registry"

	"go.uber.org/zap"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting lead triage service...",
		zap.String("environment", cfg.App.Environment),
		zap.String("corpusSource", cfg.Pipeline.Corpus.Source),
	)

	obs, err := observability.New(cfg.Observability.ServiceName)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	ctx := context.Background()
	var readiness []api.Option

	// --- PostgreSQL (corpus source and/or audit mirror) ---
	var pg *database.PostgresClient
	if cfg.UsesPostgres() {
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
		readiness = append(readiness, api.WithReadinessCheck("postgres", pg.Ping))
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Elasticsearch (corpus source) ---
	var esClient *database.ElasticsearchClient
	if cfg.Pipeline.Corpus.Source == config.CorpusSourceElasticsearch {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Redis (audit mirror) ---
	var rdb *database.RedisClient
	if cfg.Ledger.Redis.Enabled {
		rdb = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		readiness = append(readiness, api.WithReadinessCheck("redis", rdb.Ping))
		zapLog.Info("Redis connected successfully")
	}

	// --- Corpus ---
	sources := corpus.Sources{}
	if pg != nil {
		sources.Postgres = pg.DB
	}
	if esClient != nil {
		sources.Elasticsearch = esClient.Client
	}
	deals, err := corpus.Load(ctx, cfg.Pipeline.Corpus, sources)
	if err != nil {
		zapLog.Fatal("corpus load failed", zap.Error(err))
	}
	zapLog.Info("Corpus loaded", zap.Int("deals", deals.Len()))

	// --- Ledger ---
	sinks, err := buildSinks(ctx, cfg, pg, rdb)
	if err != nil {
		zapLog.Fatal("audit sink setup failed", zap.Error(err))
	}
	auditLedger := ledger.New(ledger.Options{
		Logger:       log,
		Sinks:        sinks,
		MirrorBuffer: cfg.Ledger.MirrorBuffer,
		WriteTimeout: config.GetDuration(cfg.Ledger.WriteTimeout),
	})

	// --- Pipeline ---
	svc, err := pipeline.NewService(pipeline.Options{
		Corpus:        deals,
		Ledger:        auditLedger,
		Executor:      actions.NewExecutor(nil),
		Logger:        log,
		Observability: obs,
		TopK:          cfg.Pipeline.TopK,
		AuditWindow:   cfg.Pipeline.AuditWindow,
	})
	if err != nil {
		zapLog.Fatal("pipeline init failed", zap.Error(err))
	}

	// --- Zeebe workers ---
	var (
		zeebe   *camunda.Client
		workers *camunda.Group
	)
	if cfg.Camunda.Enabled {
		zeebe, workers, err = startWorkers(cfg, svc, log)
		if err != nil {
			zapLog.Fatal("zeebe workers failed to start", zap.Error(err))
		}
		readiness = append(readiness, api.WithReadinessCheck("zeebe", zeebe.HealthCheck))
	}

	// --- HTTP Server ---
	opts := append([]api.Option{api.WithMaxBodyBytes(cfg.Server.MaxBodyBytes)}, readiness...)
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewServer(svc, log, opts...).Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	if workers != nil {
		workers.Close()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	if err := auditLedger.Close(shutdownCtx); err != nil {
		zapLog.Error("Audit mirror did not drain", zap.Error(err))
	}

	zapLog.Info("Lead triage service stopped gracefully")
}

func buildSinks(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, rdb *database.RedisClient) ([]ledger.Sink, error) {
	var sinks []ledger.Sink

	if cfg.Ledger.Redis.Enabled && rdb != nil {
		sinks = append(sinks, ledger.NewRedisSink(rdb.Client, cfg.Ledger.Redis.Key))
	}

	if cfg.Ledger.Postgres.Enabled && pg != nil {
		sink, err := ledger.NewPostgresSink(pg.DB, cfg.Ledger.Postgres.Table)
		if err != nil {
			return nil, err
		}
		if err := sink.EnsureTable(ctx); err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	return sinks, nil
}

func startWorkers(cfg *config.Config, svc *pipeline.Service, log logger.Logger) (*camunda.Client, *camunda.Group, error) {
	if cfg.Camunda.RegistryPath != "" {
		reg, err := registry.LoadRegistry(cfg.Camunda.RegistryPath)
		if err != nil {
			return nil, nil, err
		}
		if err := reg.Validate(); err != nil {
			return nil, nil, err
		}
		if err := reg.Require(create.TaskType, approve.TaskType); err != nil {
			return nil, nil, err
		}
	}

	client, err := camunda.NewClient(cfg.Camunda)
	if err != nil {
		return nil, nil, err
	}

	createHandler, err := create.NewHandler(create.HandlerOptions{
		AppConfig: cfg,
		Camunda:   client,
		Logger:    log,
		Pipeline:  svc,
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	approveHandler, err := approve.NewHandler(approve.HandlerOptions{
		AppConfig: cfg,
		Camunda:   client,
		Logger:    log,
		Pipeline:  svc,
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	group := camunda.NewGroup(log, createHandler, approveHandler)
	if err := group.Start(); err != nil {
		client.Close()
		return nil, nil, err
	}
	return client, group, nil
}
