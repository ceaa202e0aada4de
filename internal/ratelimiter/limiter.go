package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// DispatchLimiter is a token bucket shared by every concurrent send in a run.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type DispatchLimiter struct {
	limiter *rate.Limiter
}

// New creates a DispatchLimiter with ratePerSec tokens per second.
// A non-positive rate disables limiting.
func New(ratePerSec int) *DispatchLimiter {
	if ratePerSec <= 0 {
		return &DispatchLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &DispatchLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)}
}

// Wait blocks until the limiter grants a token.
// Returns an error if ctx is cancelled, or if ctx has a deadline the wait
// would pass.
func (l *DispatchLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
