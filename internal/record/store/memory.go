package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"recordgate/internal/record/models"
	id "recordgate/pkg/domain"
	"recordgate/pkg/platform/sentinel"
)

// InMemory keeps records in a map guarded by a RWMutex. Reads return copies
// so callers cannot mutate stored state.
type InMemory struct {
	mu       sync.RWMutex
	records  map[id.RecordID]*models.Record
	age      int
	readOnly bool
	now      func() time.Time
}

// InMemoryOption configures an InMemory store.
type InMemoryOption func(*InMemory)

// WithAge sets the age reported by Age.
func WithAge(age int) InMemoryOption {
	return func(s *InMemory) {
		s.age = age
	}
}

// WithReadOnly rejects writes and Clear with sentinel.ErrUnsupported.
func WithReadOnly() InMemoryOption {
	return func(s *InMemory) {
		s.readOnly = true
	}
}

// WithMemoryClock overrides the time source used to stamp new records.
func WithMemoryClock(now func() time.Time) InMemoryOption {
	return func(s *InMemory) {
		if now != nil {
			s.now = now
		}
	}
}

func NewInMemory(opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		records: make(map[id.RecordID]*models.Record),
		age:     DefaultAge,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Save inserts or replaces a record. A zero CreatedAt is stamped with the
// store clock.
func (s *InMemory) Save(_ context.Context, record *models.Record) error {
	if record == nil {
		return errors.New("record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return sentinel.ErrUnsupported
	}
	c := cloneRecord(record)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.records[c.ID] = c
	return nil
}

func (s *InMemory) FindByID(_ context.Context, recordID id.RecordID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.records[recordID]; ok {
		return cloneRecord(r), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return sentinel.ErrUnsupported
	}
	s.records = make(map[id.RecordID]*models.Record)
	return nil
}

// ListGroup returns every record ordered by ID.
func (s *InMemory) ListGroup(_ context.Context) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, cloneRecord(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Age(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.age, nil
}

func (s *InMemory) SetAge(_ context.Context, age int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return sentinel.ErrUnsupported
	}
	s.age = age
	return nil
}
