package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// ExpiryRunner executes one expiry check.
type ExpiryRunner interface {
	Run(ctx context.Context) (*domain.RunReport, error)
}

// DailyScheduler fires the expiry check once a day at a fixed local
// wall-clock time.
type DailyScheduler struct {
	runner ExpiryRunner
	hour   int
	minute int
	loc    *time.Location
	logger *zap.Logger

	now func() time.Time
}

func NewDailyScheduler(
	runner ExpiryRunner,
	hour, minute int,
	loc *time.Location,
	logger *zap.Logger,
) *DailyScheduler {
	return &DailyScheduler{
		runner: runner, hour: hour, minute: minute, loc: loc, logger: logger,
		now: time.Now,
	}
}

// NextRun returns the first hour:minute in loc strictly after now.
// time.Date normalises a wall time that falls in a DST gap.
func NextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// Run sleeps until each scheduled time and triggers the check.
// Stops cleanly when ctx is cancelled.
func (s *DailyScheduler) Run(ctx context.Context) {
	s.logger.Info("daily scheduler started",
		zap.Int("hour", s.hour),
		zap.Int("minute", s.minute),
		zap.String("time_zone", s.loc.String()),
	)

	for {
		next := NextRun(s.now(), s.hour, s.minute, s.loc)
		s.logger.Debug("next expiry check scheduled", zap.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("daily scheduler stopping")
			return
		case <-timer.C:
			s.fire(ctx)
		}
	}
}

func (s *DailyScheduler) fire(ctx context.Context) {
	report, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled expiry check failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled expiry check finished",
		zap.String("outcome", string(report.Outcome)),
		zap.Int("dispatched", report.Dispatched),
		zap.Int("failed", len(report.Failed)),
	)
}
