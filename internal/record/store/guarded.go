package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"recordgate/internal/record/metrics"
	"recordgate/internal/record/models"
	id "recordgate/pkg/domain"
	"recordgate/pkg/platform/circuit"
	"recordgate/pkg/platform/sentinel"
)

// ErrCircuitOpen is returned without touching the backend while the breaker
// is open. It wraps sentinel.ErrUnavailable.
var ErrCircuitOpen = fmt.Errorf("circuit open: %w", sentinel.ErrUnavailable)

// Guarded wraps a Backend with a circuit breaker. Outages (unavailable or
// unrecognized errors) count as failures. Not-found answers and unsupported
// operations do not, nor do caller cancellations or expired caller deadlines.
type Guarded struct {
	next    Backend
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// GuardedOption configures a Guarded store.
type GuardedOption func(*Guarded)

func WithGuardLogger(logger *slog.Logger) GuardedOption {
	return func(g *Guarded) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithGuardMetrics(m *metrics.Metrics) GuardedOption {
	return func(g *Guarded) {
		g.metrics = m
	}
}

func NewGuarded(next Backend, breaker *circuit.Breaker, opts ...GuardedOption) *Guarded {
	g := &Guarded{
		next:    next,
		breaker: breaker,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

func (g *Guarded) FindByID(ctx context.Context, recordID id.RecordID) (*models.Record, error) {
	if !g.breaker.Allow() {
		return nil, ErrCircuitOpen
	}
	rec, err := g.next.FindByID(ctx, recordID)
	g.record(ctx, err)
	return rec, err
}

func (g *Guarded) Clear(ctx context.Context) error {
	if !g.breaker.Allow() {
		return ErrCircuitOpen
	}
	err := g.next.Clear(ctx)
	g.record(ctx, err)
	return err
}

func (g *Guarded) ListGroup(ctx context.Context) ([]*models.Record, error) {
	if !g.breaker.Allow() {
		return nil, ErrCircuitOpen
	}
	records, err := g.next.ListGroup(ctx)
	g.record(ctx, err)
	return records, err
}

func (g *Guarded) Age(ctx context.Context) (int, error) {
	if !g.breaker.Allow() {
		return 0, ErrCircuitOpen
	}
	age, err := g.next.Age(ctx)
	g.record(ctx, err)
	return age, err
}

// Save forwards to the wrapped backend when it accepts writes.
func (g *Guarded) Save(ctx context.Context, record *models.Record) error {
	w, ok := g.next.(Writer)
	if !ok {
		return fmt.Errorf("save record: %w", sentinel.ErrUnsupported)
	}
	if !g.breaker.Allow() {
		return ErrCircuitOpen
	}
	err := w.Save(ctx, record)
	g.record(ctx, err)
	return err
}

func (g *Guarded) record(ctx context.Context, err error) {
	if !countsAsOutage(err) {
		_, change := g.breaker.RecordSuccess()
		if change.Closed {
			g.logger.InfoContext(ctx, "record store circuit closed", "breaker", g.breaker.Name())
			g.metrics.IncrementBreakerTransition(g.breaker.Name(), "closed")
		}
		return
	}
	_, change := g.breaker.RecordFailure()
	if change.Opened {
		g.logger.WarnContext(ctx, "record store circuit opened",
			"breaker", g.breaker.Name(),
			"error", err,
		)
		g.metrics.IncrementBreakerTransition(g.breaker.Name(), "opened")
	}
}

func countsAsOutage(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, sentinel.ErrNotFound),
		errors.Is(err, sentinel.ErrUnsupported),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}
