package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordgate/internal/record/metrics"
	"recordgate/internal/record/models"
	id "recordgate/pkg/domain"
	"recordgate/pkg/platform/circuit"
	"recordgate/pkg/platform/sentinel"
)

// flakyBackend wraps an InMemory store and fails FindByID with err while set.
type flakyBackend struct {
	*InMemory
	err   error
	calls int
}

func (f *flakyBackend) FindByID(ctx context.Context, recordID id.RecordID) (*models.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.InMemory.FindByID(ctx, recordID)
}

func newGuardedFixture(t *testing.T) (*Guarded, *flakyBackend, *metrics.Metrics, *time.Time) {
	t.Helper()
	now := time.Unix(1_700_000_000, 0)
	backend := &flakyBackend{InMemory: NewInMemory()}
	require.NoError(t, backend.Save(context.Background(), &models.Record{ID: 1, Name: "A"}))

	breaker := circuit.New("memory",
		circuit.WithFailureThreshold(2),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(time.Second),
		circuit.WithClock(func() time.Time { return now }),
	)
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	g := NewGuarded(backend, breaker,
		WithGuardLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithGuardMetrics(m),
	)
	return g, backend, m, &now
}

func TestGuarded_OpensOnOutagesAndShortCircuits(t *testing.T) {
	ctx := context.Background()
	g, backend, m, _ := newGuardedFixture(t)
	backend.err = sentinel.ErrUnavailable

	for i := 0; i < 2; i++ {
		_, err := g.FindByID(ctx, 1)
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	}
	assert.Equal(t, 2, backend.calls)

	_, err := g.FindByID(ctx, 1)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Equal(t, 2, backend.calls, "open circuit must not reach the backend")
	assert.InDelta(t, 1, testutil.ToFloat64(m.BreakerTransitions.WithLabelValues("memory", "opened")), 0)
}

func TestGuarded_ProbeClosesCircuit(t *testing.T) {
	ctx := context.Background()
	g, backend, m, now := newGuardedFixture(t)
	backend.err = errors.New("socket reset")

	_, _ = g.FindByID(ctx, 1)
	_, _ = g.FindByID(ctx, 1)
	_, err := g.FindByID(ctx, 1)
	require.ErrorIs(t, err, ErrCircuitOpen)

	backend.err = nil
	*now = now.Add(time.Second)

	rec, err := g.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", rec.Name)

	age, err := g.Age(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultAge, age)
	assert.InDelta(t, 1, testutil.ToFloat64(m.BreakerTransitions.WithLabelValues("memory", "closed")), 0)
}

func TestGuarded_NonOutagesDoNotTrip(t *testing.T) {
	ctx := context.Background()
	g, backend, _, _ := newGuardedFixture(t)

	for _, err := range []error{
		sentinel.ErrNotFound,
		sentinel.ErrUnsupported,
		context.Canceled,
		context.DeadlineExceeded,
		translateRedis("find record", context.DeadlineExceeded),
		translatePostgres("find record", &pq.Error{Code: "57014"}),
	} {
		backend.err = err
		for i := 0; i < 3; i++ {
			_, got := g.FindByID(ctx, 1)
			assert.ErrorIs(t, got, err)
		}
	}
	assert.False(t, g.breaker.IsOpen())
}

func TestGuarded_DelegatesEverything(t *testing.T) {
	ctx := context.Background()
	g, _, _, _ := newGuardedFixture(t)

	require.NoError(t, g.Save(ctx, &models.Record{ID: 2, Name: "B"}))
	group, err := g.ListGroup(ctx)
	require.NoError(t, err)
	assert.Len(t, group, 2)

	require.NoError(t, g.Clear(ctx))
	group, err = g.ListGroup(ctx)
	require.NoError(t, err)
	assert.Empty(t, group)
}

type readOnlyBackend struct{ Backend }

func TestGuarded_SaveWithoutWriter(t *testing.T) {
	g := NewGuarded(readOnlyBackend{NewInMemory()}, circuit.New("ro"))
	err := g.Save(context.Background(), &models.Record{ID: 1})
	assert.ErrorIs(t, err, sentinel.ErrUnsupported)
}

func TestCountsAsOutage(t *testing.T) {
	assert.False(t, countsAsOutage(nil))
	assert.False(t, countsAsOutage(sentinel.ErrNotFound))
	assert.False(t, countsAsOutage(sentinel.ErrUnsupported))
	assert.False(t, countsAsOutage(context.Canceled))
	assert.True(t, countsAsOutage(sentinel.ErrUnavailable))
	assert.False(t, countsAsOutage(context.DeadlineExceeded))
	assert.False(t, countsAsOutage(fmt.Errorf("find record: %w", context.DeadlineExceeded)))
	assert.True(t, countsAsOutage(errors.New("boom")))
}
