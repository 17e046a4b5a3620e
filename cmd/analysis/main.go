package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/storm-claims-analysis/internal/adapter/envdata"
	httpadapter "github.com/couchcryptid/storm-claims-analysis/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-claims-analysis/internal/adapter/kafka"
	natsadapter "github.com/couchcryptid/storm-claims-analysis/internal/adapter/nats"
	"github.com/couchcryptid/storm-claims-analysis/internal/analysis"
	"github.com/couchcryptid/storm-claims-analysis/internal/config"
	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
	"github.com/couchcryptid/storm-claims-analysis/internal/observability"
	"github.com/couchcryptid/storm-claims-analysis/internal/pipeline"
)

// readiness is ready when every member is.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		slog.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	params := analysis.LoadModelParams(analysis.ParamPaths{
		Risk:   cfg.RiskModelPath,
		Fraud:  cfg.FraudModelPath,
		Damage: cfg.DamageModelPath,
	}, logger)
	analyzers, err := analysis.NewAnalyzers(params, cfg.BasePropertyValue, logger)
	if err != nil {
		return fmt.Errorf("build analyzers: %w", err)
	}

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	// Environment lookups (feature-flagged via ENVIRONMENT_API_URL).
	var env domain.EnvironmentProvider
	var ready readiness
	if cfg.EnvironmentEnabled {
		var provider domain.EnvironmentProvider = envdata.NewClient(
			cfg.EnvironmentAPIURL, cfg.EnvironmentAPIToken, cfg.EnvironmentTimeout, logger, metrics)

		if cfg.EnvironmentRedisURL != "" {
			opts, err := redis.ParseURL(cfg.EnvironmentRedisURL)
			if err != nil {
				return fmt.Errorf("invalid ENVIRONMENT_REDIS_URL: %w", err)
			}
			rdb := redis.NewClient(opts)
			closers = append(closers, func() {
				if err := rdb.Close(); err != nil {
					logger.Error("redis close error", "error", err)
				}
			})
			shared := envdata.NewSharedCache(provider, rdb, cfg.EnvironmentCacheTTL, logger)
			ready = append(ready, shared)
			provider = shared
			logger.Info("environment shared cache enabled", "ttl", cfg.EnvironmentCacheTTL)
		}

		env = envdata.NewCachedProvider(provider, cfg.EnvironmentCacheSize, metrics)
		metrics.EnvironmentEnabled.Set(1)
		logger.Info("environment lookups enabled",
			"cache_size", cfg.EnvironmentCacheSize, "timeout", cfg.EnvironmentTimeout)
	} else {
		logger.Info("environment lookups disabled, using baseline snapshot")
	}

	// Fraud review notifications (feature-flagged via NATS_URL).
	var notifier domain.ReviewNotifier
	if cfg.NATSURL != "" {
		n, err := natsadapter.NewNotifier(cfg.NATSURL, cfg.NATSReviewSubject, logger)
		if err != nil {
			return err
		}
		closers = append(closers, n.Close)
		ready = append(ready, n)
		notifier = n
		logger.Info("review notifications enabled", "subject", cfg.NATSReviewSubject)
	}

	engine := analysis.NewEngine(analyzers, analysis.Options{
		Environment: env,
		Notifier:    notifier,
		Workers:     cfg.BatchWorkers,
		MaxItems:    cfg.BatchMaxItems,
	}, logger, metrics)
	ready = append(ready, engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	done := make(chan struct{})
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(engine, logger), writer, logger, metrics, cfg.BatchSize)
		ready = append(ready, p)

		go func() {
			defer close(done)
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		close(done)
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, engine, ready, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
