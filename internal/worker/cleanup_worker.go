package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiredItemPurger deletes items that are past their expiry date.
type ExpiredItemPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// CleanupWorker periodically removes expired inventory items.
type CleanupWorker struct {
	purger    ExpiredItemPurger
	interval  time.Duration
	logger    *zap.Logger
	onCleaned func(n int64)
}

// NewCleanupWorker constructs the sweep. onCleaned is optional (nil = no-op).
func NewCleanupWorker(
	purger ExpiredItemPurger,
	interval time.Duration,
	logger *zap.Logger,
	onCleaned func(n int64),
) *CleanupWorker {
	if onCleaned == nil {
		onCleaned = func(int64) {}
	}
	return &CleanupWorker{purger: purger, interval: interval, logger: logger, onCleaned: onCleaned}
}

// Run sweeps once immediately, then every interval.
// Stops cleanly when ctx is cancelled.
func (cw *CleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(cw.interval)
	defer ticker.Stop()

	cw.logger.Info("cleanup worker started", zap.Duration("interval", cw.interval))
	cw.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			cw.logger.Info("cleanup worker stopping")
			return
		case <-ticker.C:
			cw.sweep(ctx)
		}
	}
}

func (cw *CleanupWorker) sweep(ctx context.Context) {
	n, err := cw.purger.PurgeExpired(ctx)
	if err != nil {
		cw.logger.Error("cleanup sweep error", zap.Error(err))
		return
	}

	if n > 0 {
		cw.onCleaned(n)
		cw.logger.Info("deleted expired items", zap.Int64("count", n))
	}
}
