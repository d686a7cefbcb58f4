// cmd/worker-manager/main.go
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

	"go.uber.org/zap"

	"resource-workers/internal/api"
	"resource-workers/internal/catalog"
	"resource-workers/internal/common/camunda"
	"resource-workers/internal/common/config"
	"resource-workers/internal/common/logger"
	"resource-workers/internal/common/observability"
	"resource-workers/internal/matching"

	fmr "resource-workers/internal/workers/resources/find-matching-resources"
	fr "resource-workers/internal/workers/resources/filter-resources"
	frr "resource-workers/internal/workers/resources/format-resource-response"
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
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting resource worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("catalogSource", cfg.Catalog.Source),
	)

	obs := observability.New(cfg.Observability.ServiceName, observability.Options{
		TracingEnabled: cfg.Observability.TracingEnabled,
		SampleRatio:    cfg.Observability.SampleRatio,
	})
	defer obs.Shutdown()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Catalog ---
	source, closeSource, err := buildSource(ctx, cfg, log, zapLog)
	if err != nil {
		zapLog.Fatal("catalog source setup failed", zap.Error(err))
	}
	defer closeSource()

	store := catalog.NewStore(source, catalog.StoreOptions{
		MaxResources: cfg.Catalog.MaxResources,
		LoadTimeout:  config.GetDuration(cfg.Catalog.LoadTimeout),
	}, log)

	loaded := store.Refresh(ctx)
	zapLog.Info("Catalog loaded",
		zap.String("version", loaded.Version),
		zap.Int("resources", len(loaded.Resources)),
		zap.Int("rejected", len(loaded.Rejected)),
		zap.Bool("fallback", loaded.Fallback),
	)
	go store.Run(ctx, cfg.Catalog.GetReloadInterval())

	engine := matching.NewEngine(store, matching.Options{
		MaxDistanceKm:    cfg.Matching.MaxDistanceKm,
		GeneralCategory:  cfg.Matching.GeneralCategory,
		StrictBaseScore:  cfg.Matching.StrictBaseScore,
		RelaxedBaseScore: cfg.Matching.RelaxedBaseScore,
		RankDecrement:    cfg.Matching.RankDecrement,
		WeightOverrides:  cfg.Matching.ScoringWeights,
	}, log)

	// --- Job workers ---
	var zeebe *camunda.Client
	var workers []*camunda.Worker
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		workers = startWorkers(cfg, zeebe, engine, obs, log)
	} else {
		zapLog.Info("Camunda disabled, serving HTTP API only")
	}

	// --- HTTP API, health and metrics ---
	apiServer := api.NewServer(engine, store, api.Options{
		DefaultMinScore:   cfg.Matching.DefaultMinScore,
		DefaultMaxResults: cfg.Matching.DefaultMaxResults,
	}, log)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      apiServer.Routes(),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorkers(cfg *config.Config, zeebe *camunda.Client, engine *matching.Engine, obs *observability.Observability, log logger.Logger) []*camunda.Worker {
	client := zeebe.GetClient()
	var started []*camunda.Worker

	if wcfg := config.GetWorkerConfig(cfg, fmr.TaskType); wcfg.Enabled {
		handler := fmr.NewHandler(&fmr.Config{
			Timeout:           config.GetDuration(wcfg.Timeout),
			DefaultMinScore:   cfg.Matching.DefaultMinScore,
			DefaultMaxResults: cfg.Matching.DefaultMaxResults,
		}, engine, obs, log)
		started = append(started, camunda.StartWorker(client, fmr.TaskType, wcfg, handler.Handle, log))
	}

	if wcfg := config.GetWorkerConfig(cfg, fr.TaskType); wcfg.Enabled {
		handler := fr.NewHandler(&fr.Config{
			Timeout:           config.GetDuration(wcfg.Timeout),
			DefaultMaxResults: cfg.Matching.DefaultMaxResults,
		}, engine, obs, log)
		started = append(started, camunda.StartWorker(client, fr.TaskType, wcfg, handler.Handle, log))
	}

	if wcfg := config.GetWorkerConfig(cfg, frr.TaskType); wcfg.Enabled {
		handler := frr.NewHandler(obs, log)
		started = append(started, camunda.StartWorker(client, frr.TaskType, wcfg, handler.Handle, log))
	}

	log.Info("workers registered", map[string]interface{}{"count": len(started)})
	return started
}
