package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the record gateway.
type Metrics struct {
	// Resolve outcomes: found, not_found, store_error, propagated
	ResolveOutcome *prometheus.CounterVec

	ResolveLatency prometheus.Histogram

	// Delegated store calls by operation and result
	DelegateCalls *prometheus.CounterVec

	// Circuit breaker transitions by store and direction
	BreakerTransitions *prometheus.CounterVec
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers metrics against reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ResolveOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordgate_resolve_outcomes_total",
			Help: "Total record resolutions by outcome",
		}, []string{"outcome"}),

		ResolveLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recordgate_resolve_duration_seconds",
			Help:    "Duration of record resolution including the store lookup",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		DelegateCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordgate_store_delegate_calls_total",
			Help: "Total delegated store calls by operation and result",
		}, []string{"operation", "result"}),

		BreakerTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordgate_store_breaker_transitions_total",
			Help: "Circuit breaker transitions for guarded stores",
		}, []string{"breaker", "transition"}),
	}
}

// IncrementOutcome records a resolve outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.ResolveOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveResolveLatency records the total resolve duration.
func (m *Metrics) ObserveResolveLatency(d time.Duration) {
	if m != nil {
		m.ResolveLatency.Observe(d.Seconds())
	}
}

// IncrementDelegate records a delegated store call.
func (m *Metrics) IncrementDelegate(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.DelegateCalls.WithLabelValues(operation, result).Inc()
}

// IncrementBreakerTransition records a breaker opening or closing.
func (m *Metrics) IncrementBreakerTransition(breaker, transition string) {
	if m != nil {
		m.BreakerTransitions.WithLabelValues(breaker, transition).Inc()
	}
}
