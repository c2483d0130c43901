package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"recordgate/internal/platform/config"
	platformredis "recordgate/internal/platform/redis"
	recordmetrics "recordgate/internal/record/metrics"
	"recordgate/internal/record/store"
	"recordgate/pkg/platform/circuit"
)

// storeHandle is the configured backend plus its lifecycle hooks.
type storeHandle struct {
	store  *store.Guarded
	health func(context.Context) error
	close  func() error
}

func buildStore(ctx context.Context, cfg config.Config, log *slog.Logger, m *recordmetrics.Metrics) (*storeHandle, error) {
	var (
		backend store.Backend
		writer  store.Writer
		health  = func(context.Context) error { return nil }
		closeFn = func() error { return nil }
	)

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		pg := store.NewPostgres(db, store.WithPostgresDefaultAge(cfg.Store.DefaultAge))
		if err := pg.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		backend, writer = pg, pg
		health = db.PingContext
		closeFn = db.Close

	case config.BackendRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		rs := store.NewRedis(client.Client, store.WithRedisDefaultAge(cfg.Store.DefaultAge))
		backend, writer = rs, rs
		health = client.Health
		closeFn = client.Close

	default:
		mem := store.NewInMemory(store.WithAge(cfg.Store.DefaultAge))
		backend, writer = mem, mem
	}

	if cfg.Store.Seed {
		if err := store.Seed(ctx, writer, store.DemoRecords()...); err != nil {
			_ = closeFn()
			return nil, fmt.Errorf("seed store: %w", err)
		}
		log.Info("seeded demo records", "store", cfg.Store.Backend)
	}

	breaker := circuit.New("record-store",
		circuit.WithFailureThreshold(cfg.Store.BreakerFailures),
		circuit.WithSuccessThreshold(cfg.Store.BreakerSuccesses),
		circuit.WithCooldown(cfg.Store.BreakerCooldown),
	)
	guarded := store.NewGuarded(backend, breaker,
		store.WithGuardLogger(log),
		store.WithGuardMetrics(m),
	)

	return &storeHandle{store: guarded, health: health, close: closeFn}, nil
}
