package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	ExpiryRuns       *prometheus.CounterVec
	ExpiryCandidates prometheus.Histogram
	DispatchesSent   *prometheus.CounterVec
	DispatchesFailed *prometheus.CounterVec
	DispatchLatency  *prometheus.HistogramVec
	TokensFailed     *prometheus.CounterVec
	ItemsCleanedUp   prometheus.Counter
	LastRunTimestamp prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ExpiryRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "expiry_check_runs_total",
			Help: "Expiry check runs by outcome.",
		}, []string{"outcome"}),

		ExpiryCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "expiry_check_candidates",
			Help:    "Items due for notification per run.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),

		DispatchesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_dispatches_sent_total",
			Help: "Per-user multicast sends accepted by the provider.",
		}, []string{"provider"}),

		DispatchesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_dispatches_failed_total",
			Help: "Per-user multicast sends the provider rejected.",
		}, []string{"provider"}),

		DispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "push_dispatch_seconds",
			Help:    "Latency of one multicast send including rate limiter wait.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),

		TokensFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_tokens_failed_total",
			Help: "Individual device tokens rejected inside accepted sends.",
		}, []string{"provider"}),

		ItemsCleanedUp: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_items_cleaned_up_total",
			Help: "Expired items deleted by the cleanup sweep.",
		}),

		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "expiry_check_last_run_timestamp_seconds",
			Help: "Unix time the last expiry check finished.",
		}),
	}

	reg.MustRegister(
		m.ExpiryRuns,
		m.ExpiryCandidates,
		m.DispatchesSent,
		m.DispatchesFailed,
		m.DispatchLatency,
		m.TokensFailed,
		m.ItemsCleanedUp,
		m.LastRunTimestamp,
	)

	return m
}

// DispatchHooks returns the metric callback functions expected by worker.MetricHooks.
// Centralises the prometheus observation calls so the dispatcher stays import-free.
func (m *Metrics) DispatchHooks(provider string) (
	onSent func(latency time.Duration, tokensFailed int),
	onFailed func(latency time.Duration),
) {
	onSent = func(latency time.Duration, tokensFailed int) {
		m.DispatchesSent.WithLabelValues(provider).Inc()
		m.DispatchLatency.WithLabelValues(provider).Observe(latency.Seconds())
		if tokensFailed > 0 {
			m.TokensFailed.WithLabelValues(provider).Add(float64(tokensFailed))
		}
	}
	onFailed = func(latency time.Duration) {
		m.DispatchesFailed.WithLabelValues(provider).Inc()
		m.DispatchLatency.WithLabelValues(provider).Observe(latency.Seconds())
	}
	return
}

// ObserveRun records the outcome of a finished expiry check.
func (m *Metrics) ObserveRun(outcome string, candidates int, finished time.Time) {
	m.ExpiryRuns.WithLabelValues(outcome).Inc()
	m.ExpiryCandidates.Observe(float64(candidates))
	m.LastRunTimestamp.Set(float64(finished.Unix()))
}
