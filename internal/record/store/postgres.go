package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"recordgate/internal/record/models"
	id "recordgate/pkg/domain"
	"recordgate/pkg/platform/sentinel"
	"recordgate/pkg/platform/tx"
)

const ageSettingKey = "age"

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id         BIGINT PRIMARY KEY,
	name       TEXT NOT NULL,
	age        INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS record_settings (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
`

// Postgres persists records in PostgreSQL through database/sql and lib/pq.
type Postgres struct {
	db         *sql.DB
	defaultAge int
	clock      func() time.Time
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithPostgresDefaultAge sets the age reported when none is stored.
func WithPostgresDefaultAge(age int) PostgresOption {
	return func(p *Postgres) {
		p.defaultAge = age
	}
}

// WithPostgresClock sets the clock used to stamp new records.
func WithPostgresClock(clock func() time.Time) PostgresOption {
	return func(p *Postgres) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	p := &Postgres{
		db:         db,
		defaultAge: DefaultAge,
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// RunInTx runs fn in a single transaction. Store calls made with the context
// passed to fn join that transaction.
func (p *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return tx.Run(ctx, p.db, fn)
}

func (p *Postgres) q(ctx context.Context) tx.Querier {
	return tx.QuerierFrom(ctx, p.db)
}

// Migrate creates the tables the store needs if they are missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return translatePostgres("migrate records schema", err)
	}
	return nil
}

func (p *Postgres) Save(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = p.clock()
	}
	query := `
		INSERT INTO records (id, name, age, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age
	`
	_, err := p.q(ctx).ExecContext(ctx, query, record.ID.Int64(), record.Name, record.Age, createdAt)
	if err != nil {
		return translatePostgres("save record", err)
	}
	return nil
}

func (p *Postgres) FindByID(ctx context.Context, recordID id.RecordID) (*models.Record, error) {
	var (
		rawID int64
		r     models.Record
	)
	err := p.q(ctx).QueryRowContext(ctx,
		`SELECT id, name, age, created_at FROM records WHERE id = $1`,
		recordID.Int64(),
	).Scan(&rawID, &r.Name, &r.Age, &r.CreatedAt)
	if err != nil {
		return nil, translatePostgres("find record", err)
	}
	r.ID = id.RecordID(rawID)
	return &r, nil
}

func (p *Postgres) Clear(ctx context.Context) error {
	if _, err := p.q(ctx).ExecContext(ctx, `TRUNCATE records`); err != nil {
		return translatePostgres("clear records", err)
	}
	return nil
}

// ListGroup returns every record ordered by ID.
func (p *Postgres) ListGroup(ctx context.Context) ([]*models.Record, error) {
	rows, err := p.q(ctx).QueryContext(ctx, `SELECT id, name, age, created_at FROM records ORDER BY id`)
	if err != nil {
		return nil, translatePostgres("list records", err)
	}
	defer rows.Close()

	out := make([]*models.Record, 0)
	for rows.Next() {
		var (
			rawID int64
			r     models.Record
		)
		if err := rows.Scan(&rawID, &r.Name, &r.Age, &r.CreatedAt); err != nil {
			return nil, translatePostgres("scan record", err)
		}
		r.ID = id.RecordID(rawID)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePostgres("iterate records", err)
	}
	return out, nil
}

func (p *Postgres) Age(ctx context.Context) (int, error) {
	var age int
	err := p.q(ctx).QueryRowContext(ctx,
		`SELECT value FROM record_settings WHERE key = $1`, ageSettingKey,
	).Scan(&age)
	if errors.Is(err, sql.ErrNoRows) {
		return p.defaultAge, nil
	}
	if err != nil {
		return 0, translatePostgres("read age", err)
	}
	return age, nil
}

func (p *Postgres) SetAge(ctx context.Context, age int) error {
	query := `
		INSERT INTO record_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := p.q(ctx).ExecContext(ctx, query, ageSettingKey, age); err != nil {
		return translatePostgres("set age", err)
	}
	return nil
}

// translatePostgres maps driver errors onto sentinel facts. The original error
// stays in the chain for logging.
func translatePostgres(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "0A": // feature_not_supported
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnsupported, err)
		case "08", "53": // connection exception, insufficient resources
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
		case "57":
			// Operator intervention only; 57014 query_canceled is the caller's
			// own cancellation and is propagated unclassified.
			switch pqErr.Code {
			case "57P01", "57P02", "57P03":
				return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
			}
		case "23": // integrity constraint violation
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrConflict, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
