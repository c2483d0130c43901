package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordgate/internal/record/models"
)

type txWriter struct {
	saved   []*models.Record
	txCalls int
	failOn  int
}

func (w *txWriter) Save(_ context.Context, r *models.Record) error {
	if int(r.ID) == w.failOn {
		return errors.New("write rejected")
	}
	w.saved = append(w.saved, r)
	return nil
}

func (w *txWriter) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	w.txCalls++
	return fn(ctx)
}

func TestSeed(t *testing.T) {
	t.Run("uses a transaction when the writer offers one", func(t *testing.T) {
		w := &txWriter{}
		require.NoError(t, Seed(context.Background(), w, DemoRecords()...))
		assert.Equal(t, 1, w.txCalls)
		assert.Len(t, w.saved, 3)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		w := &txWriter{failOn: 2}
		err := Seed(context.Background(), w, DemoRecords()...)
		require.Error(t, err)
		assert.Len(t, w.saved, 1)
	})

	t.Run("plain writers", func(t *testing.T) {
		mem := NewInMemory()
		require.NoError(t, Seed(context.Background(), mem, DemoRecords()...))
		group, err := mem.ListGroup(context.Background())
		require.NoError(t, err)
		assert.Len(t, group, 3)
	})
}
