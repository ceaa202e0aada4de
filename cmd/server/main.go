package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/smarthousehold/inventory-service/internal/api"
	"github.com/smarthousehold/inventory-service/internal/app"
	"github.com/smarthousehold/inventory-service/internal/config"
	"github.com/smarthousehold/inventory-service/internal/logging"
	"github.com/smarthousehold/inventory-service/internal/worker"
)

func main() {
	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		bootLogger, _ := zap.NewProduction()
		bootLogger.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	// ---- dependencies ----
	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer a.Close()

	// ---- background workers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	var wg sync.WaitGroup
	scheduler := worker.NewDailyScheduler(a.Expiry, cfg.ScheduleHour, cfg.ScheduleMin, cfg.Location, logger.Named("scheduler"))
	cleanup := worker.NewCleanupWorker(a.Inventory, cfg.CleanupInterval, logger.Named("cleanup"), func(n int64) {
		a.Metrics.ItemsCleanedUp.Add(float64(n))
	})
	for _, run := range []func(context.Context){scheduler.Run, cleanup.Run} {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(workerCtx)
		}(run)
	}

	// ---- HTTP server ----
	router := api.NewRouter(api.Services{
		Inventory: a.Inventory,
		Tokens:    a.Tokens,
		Analytics: a.Analytics,
		Expiry:    a.Expiry,
	}, a.HealthChecks(), a.Registry, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal the scheduler and cleanup sweep to stop.
	cancelWorkers()

	// 3. Wait for an in-flight expiry check to finish its sends.
	wg.Wait()

	logger.Info("server stopped cleanly")
}
