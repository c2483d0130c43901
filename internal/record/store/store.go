// Package store holds the record store adapters: in-memory, PostgreSQL and
// Redis, plus a circuit-breaker decorator usable over any of them.
//
// All adapters report infrastructure facts through pkg/platform/sentinel so
// the gateway can classify them without knowing the backend.
package store

import (
	"context"

	"recordgate/internal/record/models"
	id "recordgate/pkg/domain"
)

// DefaultAge is reported by stores that have no age configured.
const DefaultAge = 18

// Backend is the full record store contract implemented by every adapter.
type Backend interface {
	FindByID(ctx context.Context, recordID id.RecordID) (*models.Record, error)
	Clear(ctx context.Context) error
	ListGroup(ctx context.Context) ([]*models.Record, error)
	Age(ctx context.Context) (int, error)
}

// Writer is implemented by adapters that accept record writes.
type Writer interface {
	Save(ctx context.Context, record *models.Record) error
}

type transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Seed saves each record into w, stopping at the first failure. Writers that
// support transactions apply the whole batch or nothing.
func Seed(ctx context.Context, w Writer, records ...*models.Record) error {
	if t, ok := w.(transactor); ok {
		return t.RunInTx(ctx, func(ctx context.Context) error {
			return saveAll(ctx, w, records)
		})
	}
	return saveAll(ctx, w, records)
}

func saveAll(ctx context.Context, w Writer, records []*models.Record) error {
	for _, r := range records {
		if err := w.Save(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// DemoRecords returns the records loaded when seeding is enabled.
func DemoRecords() []*models.Record {
	return []*models.Record{
		{ID: 1, Name: "Alice", Age: 18},
		{ID: 2, Name: "Bob", Age: 24},
		{ID: 3, Name: "Carol", Age: 31},
	}
}

func cloneRecord(r *models.Record) *models.Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
