// Command expiry-check runs a single expiry check and exits. It is meant for
// external schedulers such as cron or a Kubernetes CronJob. The exit status
// is non-zero when the item scan or token lookup failed.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/smarthousehold/inventory-service/internal/app"
	"github.com/smarthousehold/inventory-service/internal/config"
	"github.com/smarthousehold/inventory-service/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		bootLogger, _ := zap.NewProduction()
		bootLogger.Error("failed to load config", zap.Error(err))
		return 2
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return 2
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		return 2
	}
	defer a.Close()

	report, err := a.Expiry.Run(ctx)
	if err != nil {
		logger.Error("expiry check failed", zap.Error(err))
		return 1
	}

	logger.Info("expiry check complete",
		zap.String("outcome", string(report.Outcome)),
		zap.Int("users", report.Users),
		zap.Int("dispatched", report.Dispatched),
		zap.Int("succeeded", report.Succeeded),
		zap.Strings("failed_users", report.FailedUserIDs()),
		zap.Duration("duration", report.Duration),
	)
	return 0
}
