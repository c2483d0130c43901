package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"recordgate/internal/record/models"
	id "recordgate/pkg/domain"
	"recordgate/pkg/platform/sentinel"
)

const defaultRedisPrefix = "recordgate:"

// Redis keeps one hash per record plus a sorted set of IDs scored by ID, so
// ListGroup can return records in ID order without scanning the keyspace.
type Redis struct {
	client     redis.UniversalClient
	prefix     string
	defaultAge int
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithRedisPrefix namespaces every key the store touches.
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithRedisDefaultAge sets the age reported when none is stored.
func WithRedisDefaultAge(age int) RedisOption {
	return func(r *Redis) {
		r.defaultAge = age
	}
}

func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client:     client,
		prefix:     defaultRedisPrefix,
		defaultAge: DefaultAge,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) recordKey(recordID id.RecordID) string {
	return r.prefix + "record:" + recordID.String()
}

func (r *Redis) groupKey() string {
	return r.prefix + "records:group"
}

func (r *Redis) ageKey() string {
	return r.prefix + "records:age"
}

func (r *Redis) Save(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.recordKey(record.ID),
			"name", record.Name,
			"age", record.Age,
			"created_at", createdAt.UTC().Format(time.RFC3339Nano),
		)
		pipe.ZAdd(ctx, r.groupKey(), redis.Z{
			Score:  float64(record.ID.Int64()),
			Member: record.ID.String(),
		})
		return nil
	})
	if err != nil {
		return translateRedis("save record", err)
	}
	return nil
}

func (r *Redis) FindByID(ctx context.Context, recordID id.RecordID) (*models.Record, error) {
	fields, err := r.client.HGetAll(ctx, r.recordKey(recordID)).Result()
	if err != nil {
		return nil, translateRedis("find record", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("find record: %w", sentinel.ErrNotFound)
	}
	return decodeRecord(recordID, fields)
}

// Clear removes every indexed record hash and the group index.
func (r *Redis) Clear(ctx context.Context) error {
	members, err := r.client.ZRange(ctx, r.groupKey(), 0, -1).Result()
	if err != nil {
		return translateRedis("clear records", err)
	}
	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, r.prefix+"record:"+m)
	}
	keys = append(keys, r.groupKey())
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return translateRedis("clear records", err)
	}
	return nil
}

// ListGroup returns every indexed record ordered by ID. Index entries whose
// hash has disappeared are skipped.
func (r *Redis) ListGroup(ctx context.Context) ([]*models.Record, error) {
	members, err := r.client.ZRange(ctx, r.groupKey(), 0, -1).Result()
	if err != nil {
		return nil, translateRedis("list records", err)
	}
	out := make([]*models.Record, 0, len(members))
	if len(members) == 0 {
		return out, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(members))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, m := range members {
			cmds[i] = pipe.HGetAll(ctx, r.prefix+"record:"+m)
		}
		return nil
	})
	if err != nil {
		return nil, translateRedis("list records", err)
	}

	for i, m := range members {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			continue
		}
		raw, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("list records: bad index member %q: %w", m, err)
		}
		rec, err := decodeRecord(id.RecordID(raw), fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *Redis) Age(ctx context.Context) (int, error) {
	age, err := r.client.Get(ctx, r.ageKey()).Int()
	if errors.Is(err, redis.Nil) {
		return r.defaultAge, nil
	}
	if err != nil {
		return 0, translateRedis("read age", err)
	}
	return age, nil
}

func (r *Redis) SetAge(ctx context.Context, age int) error {
	if err := r.client.Set(ctx, r.ageKey(), age, 0).Err(); err != nil {
		return translateRedis("set age", err)
	}
	return nil
}

func decodeRecord(recordID id.RecordID, fields map[string]string) (*models.Record, error) {
	rec := &models.Record{ID: recordID, Name: fields["name"]}
	if v := fields["age"]; v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("decode record %s age: %w", recordID, err)
		}
		rec.Age = age
	}
	if v := fields["created_at"]; v != "" {
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("decode record %s created_at: %w", recordID, err)
		}
		rec.CreatedAt = ts
	}
	return rec, nil
}

// translateRedis maps client errors onto sentinel facts.
func translateRedis(op string, err error) error {
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	// context.DeadlineExceeded satisfies net.Error; caller cancellation must
	// not look like a backend outage.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		msg := redisErr.Error()
		switch {
		case strings.HasPrefix(msg, "ERR unknown command"), strings.HasPrefix(msg, "NOPERM"):
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnsupported, err)
		case strings.HasPrefix(msg, "LOADING"), strings.HasPrefix(msg, "MASTERDOWN"), strings.HasPrefix(msg, "TRYAGAIN"):
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
