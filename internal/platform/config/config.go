package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config is the full process configuration.
type Config struct {
	Server Server
	Store  StoreConfig
	Redis  RedisConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	AdminToken      string
	LogLevel        string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// StoreConfig selects and tunes the record store.
type StoreConfig struct {
	Backend     string
	DatabaseURL string
	DefaultAge  int
	Seed        bool

	BreakerFailures  int
	BreakerSuccesses int
	BreakerCooldown  time.Duration
}

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var (
		cfg  Config
		errs []string
	)
	intVar := func(dst *int, key string, def int) {
		v, err := envInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		*dst = v
	}
	durVar := func(dst *time.Duration, key string, def time.Duration) {
		v, err := envDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		*dst = v
	}

	cfg.Server.Addr = envString("RECORDGATE_ADDR", ":8080")
	cfg.Server.AdminToken = os.Getenv("RECORDGATE_ADMIN_TOKEN")
	cfg.Server.LogLevel = envString("LOG_LEVEL", "info")
	durVar(&cfg.Server.ShutdownTimeout, "RECORDGATE_SHUTDOWN_TIMEOUT", 10*time.Second)
	durVar(&cfg.Server.RequestTimeout, "RECORDGATE_REQUEST_TIMEOUT", 10*time.Second)

	cfg.Store.Backend = strings.ToLower(envString("RECORDGATE_STORE", BackendMemory))
	cfg.Store.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Store.Seed = os.Getenv("RECORDGATE_SEED") == "true"
	intVar(&cfg.Store.DefaultAge, "RECORDGATE_DEFAULT_AGE", 18)
	intVar(&cfg.Store.BreakerFailures, "RECORDGATE_BREAKER_FAILURES", 5)
	intVar(&cfg.Store.BreakerSuccesses, "RECORDGATE_BREAKER_SUCCESSES", 2)
	durVar(&cfg.Store.BreakerCooldown, "RECORDGATE_BREAKER_COOLDOWN", 5*time.Second)

	cfg.Redis.URL = os.Getenv("REDIS_URL")
	intVar(&cfg.Redis.PoolSize, "REDIS_POOL_SIZE", 10)
	intVar(&cfg.Redis.MinIdleConns, "REDIS_MIN_IDLE_CONNS", 2)
	durVar(&cfg.Redis.DialTimeout, "REDIS_DIAL_TIMEOUT", 5*time.Second)
	durVar(&cfg.Redis.ReadTimeout, "REDIS_READ_TIMEOUT", 3*time.Second)
	durVar(&cfg.Redis.WriteTimeout, "REDIS_WRITE_TIMEOUT", 3*time.Second)

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.Store.BreakerFailures < 1 || c.Store.BreakerSuccesses < 1 {
		return fmt.Errorf("breaker thresholds must be positive")
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not a duration", key, v)
	}
	return d, nil
}
