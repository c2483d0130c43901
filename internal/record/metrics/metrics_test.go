package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecording(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncrementOutcome("found")
	m.IncrementOutcome("found")
	m.IncrementOutcome("not_found")
	assert.InDelta(t, 2, testutil.ToFloat64(m.ResolveOutcome.WithLabelValues("found")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ResolveOutcome.WithLabelValues("not_found")), 0)

	m.IncrementDelegate("clear", nil)
	m.IncrementDelegate("clear", errors.New("boom"))
	assert.InDelta(t, 1, testutil.ToFloat64(m.DelegateCalls.WithLabelValues("clear", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DelegateCalls.WithLabelValues("clear", "error")), 0)

	m.ObserveResolveLatency(3 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(m.ResolveLatency))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementOutcome("found")
		m.ObserveResolveLatency(time.Millisecond)
		m.IncrementDelegate("age", nil)
		m.IncrementBreakerTransition("postgres", "opened")
	})
}
