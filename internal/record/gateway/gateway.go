package gateway

//go:generate mockgen -source=gateway.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"recordgate/internal/record/metrics"
	"recordgate/internal/record/models"
	id "recordgate/pkg/domain"
	"recordgate/pkg/platform/sentinel"
)

const tracerName = "recordgate/internal/record/gateway"

// Store is the record store contract the gateway depends on.
//
// Error semantics:
//   - sentinel.ErrNotFound: no record for the ID (FindByID)
//   - sentinel.ErrUnsupported, sentinel.ErrUnavailable: recognized store failures
//   - other errors: unrecognized, propagated by Resolve
type Store interface {
	FindByID(ctx context.Context, recordID id.RecordID) (*models.Record, error)
	Clear(ctx context.Context) error
	ListGroup(ctx context.Context) ([]*models.Record, error)
	Age(ctx context.Context) (int, error)
}

// Service resolves record IDs to outcomes and passes the remaining store
// operations through untouched. It holds no per-call state.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracerProvider overrides the global OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// New constructs a Service around store.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Resolve looks the record up and maps the store's answer to exactly one
// outcome. Recognized store failures become OutcomeStoreError; any other
// error is returned wrapped and no outcome is produced.
func (s *Service) Resolve(ctx context.Context, recordID id.RecordID) (models.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "gateway.Resolve",
		trace.WithAttributes(attribute.Int64("record.id", recordID.Int64())))
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.ObserveResolveLatency(time.Since(start))
	}()

	record, err := s.store.FindByID(ctx, recordID)
	outcome, err := classify(record, err)
	if err != nil {
		s.metrics.IncrementOutcome("propagated")
		span.RecordError(err)
		span.SetStatus(codes.Error, "record lookup failed")
		s.logger.ErrorContext(ctx, "record lookup failed",
			"record_id", recordID,
			"error", err,
		)
		return "", fmt.Errorf("find record %s: %w", recordID, err)
	}

	if outcome == models.OutcomeStoreError {
		s.logger.WarnContext(ctx, "record store failure mapped to outcome",
			"record_id", recordID,
			"outcome", outcome,
		)
	}
	s.metrics.IncrementOutcome(outcome.String())
	span.SetAttributes(attribute.String("record.outcome", outcome.String()))
	return outcome, nil
}

func classify(record *models.Record, err error) (models.Outcome, error) {
	switch {
	case err == nil && record != nil:
		return models.OutcomeFound, nil
	case err == nil, errors.Is(err, sentinel.ErrNotFound):
		return models.OutcomeNotFound, nil
	case sentinel.IsStoreFailure(err):
		return models.OutcomeStoreError, nil
	default:
		return "", err
	}
}

// ClearStore delegates to the store's Clear.
func (s *Service) ClearStore(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "gateway.ClearStore")
	defer span.End()

	err := s.store.Clear(ctx)
	s.metrics.IncrementDelegate("clear", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "clear failed")
		return err
	}
	s.logger.InfoContext(ctx, "record store cleared")
	return nil
}

// ListGroup returns the store's group exactly as the store yields it.
func (s *Service) ListGroup(ctx context.Context) ([]*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "gateway.ListGroup")
	defer span.End()

	records, err := s.store.ListGroup(ctx)
	s.metrics.IncrementDelegate("list_group", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list group failed")
	}
	return records, err
}

// CurrentAge returns the store's age exactly as the store yields it.
func (s *Service) CurrentAge(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "gateway.CurrentAge")
	defer span.End()

	age, err := s.store.Age(ctx)
	s.metrics.IncrementDelegate("age", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "age lookup failed")
	}
	return age, err
}
