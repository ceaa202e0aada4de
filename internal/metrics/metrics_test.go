package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/smarthousehold/inventory-service/internal/metrics"
)

func TestDispatchHooks(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	onSent, onFailed := m.DispatchHooks("fcm")

	onSent(10*time.Millisecond, 2)
	onSent(10*time.Millisecond, 0)
	onFailed(5 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DispatchesSent.WithLabelValues("fcm")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispatchesFailed.WithLabelValues("fcm")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TokensFailed.WithLabelValues("fcm")))
}

func TestObserveRun(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	finished := time.Unix(1700000000, 0)

	m.ObserveRun("dispatched", 4, finished)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExpiryRuns.WithLabelValues("dispatched")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastRunTimestamp))
}
