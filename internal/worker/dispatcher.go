package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smarthousehold/inventory-service/internal/domain"
	"github.com/smarthousehold/inventory-service/internal/provider"
	"github.com/smarthousehold/inventory-service/internal/ratelimiter"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the dispatcher constructor signature clean.
type MetricHooks struct {
	OnSent   func(latency time.Duration, tokensFailed int)
	OnFailed func(latency time.Duration)
}

// Outcome is the result of one user's multicast send.
type Outcome struct {
	UserID string
	Result *provider.Result
	Err    error
}

// Dispatcher fans a run's messages out to the provider, one goroutine per
// user, and waits for every send to finish.
type Dispatcher struct {
	prov    provider.Provider
	limiter *ratelimiter.DispatchLimiter
	timeout time.Duration
	logger  *zap.Logger

	// Hooks for metrics, injected so the dispatcher stays metrics-agnostic.
	onSent   func(latency time.Duration, tokensFailed int)
	onFailed func(latency time.Duration)
}

// NewDispatcher constructs a dispatcher. Hook funcs are optional (nil = no-op).
// A zero timeout leaves each send bounded only by the caller's ctx.
func NewDispatcher(
	prov provider.Provider,
	limiter *ratelimiter.DispatchLimiter,
	timeout time.Duration,
	logger *zap.Logger,
	hooks MetricHooks,
) *Dispatcher {
	if hooks.OnSent == nil {
		hooks.OnSent = func(time.Duration, int) {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func(time.Duration) {}
	}
	if limiter == nil {
		limiter = ratelimiter.New(0)
	}
	return &Dispatcher{
		prov: prov, limiter: limiter, timeout: timeout, logger: logger,
		onSent: hooks.OnSent, onFailed: hooks.OnFailed,
	}
}

// Dispatch sends every message concurrently and blocks until all sends have
// completed. Outcomes are returned in message order. A failing send never
// affects the others.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs []domain.PushMessage) []Outcome {
	outcomes := make([]Outcome, len(msgs))

	var wg sync.WaitGroup
	for i := range msgs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = d.send(ctx, &msgs[i])
		}(i)
	}
	wg.Wait()

	return outcomes
}

func (d *Dispatcher) send(ctx context.Context, msg *domain.PushMessage) (out Outcome) {
	start := time.Now()
	out.UserID = msg.UserID
	log := d.logger.With(
		zap.String("user_id", msg.UserID),
		zap.Int("tokens", len(msg.Tokens)),
	)

	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("provider panic: %v", r)
			out.Result = nil
			log.Error("push send panicked", zap.Any("panic", r))
			d.onFailed(time.Since(start))
		}
	}()

	// Queueing on the limiter is bounded by the run ctx only; the send
	// timeout starts once a token is granted.
	if err := d.limiter.Wait(ctx); err != nil {
		out.Err = fmt.Errorf("rate limiter: %w", err)
		log.Warn("push send aborted while waiting for rate limiter", zap.Error(err))
		d.onFailed(time.Since(start))
		return out
	}

	sendCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	res, err := d.prov.SendMulticast(sendCtx, msg)
	elapsed := time.Since(start)
	if err == nil && res != nil && res.SuccessCount == 0 && res.FailureCount > 0 {
		err = errors.New("all tokens rejected")
	}
	if err != nil {
		out.Err = err
		out.Result = res
		log.Warn("push send failed", zap.String("provider", d.prov.Name()), zap.Error(err))
		d.onFailed(elapsed)
		return out
	}
	if res == nil {
		res = &provider.Result{SuccessCount: len(msg.Tokens)}
	}

	out.Result = res
	d.onSent(elapsed, res.FailureCount)
	log.Info("push sent",
		zap.Int("tokens_succeeded", res.SuccessCount),
		zap.Int("tokens_failed", res.FailureCount),
		zap.Duration("latency", elapsed),
	)
	return out
}
