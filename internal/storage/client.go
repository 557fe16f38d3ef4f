package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/incdrops/server/internal/config"
	"codeberg.org/incdrops/server/internal/logger"
	"codeberg.org/incdrops/server/internal/quota"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// the process's database connections and the configured quota store
type Client struct {
	pool  *pgxpool.Pool
	redis *redis.Client
	store quota.Store

	closers []func() error
}

// opens postgres, redis when configured, and the quota store named by
// cfg.QuotaStore. everything opened so far is closed again on failure
func Open(ctx context.Context, cfg *config.Config) (*Client, error) {
	c := &Client{}

	pool, err := NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	c.pool = pool

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			c.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}

		c.redis = redis.NewClient(opts)
		c.closers = append(c.closers, c.redis.Close)

		if err := c.redis.Ping(ctx).Err(); err != nil {
			// the quota tracker and rate limiter both degrade without redis
			logger.WarnErr(err, "redis ping failed, continuing")
		}
	}

	store, err := c.openQuotaStore(ctx, cfg)
	if err != nil {
		c.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, err
	}

	c.store = store

	logger.Info("storage initialized",
		"quota_store", cfg.QuotaStore,
		"redis", c.redis != nil,
	)

	return c, nil
}

// creates a pgx pool sized for a small managed postgres behind pgbouncer
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// pgbouncer in transaction mode doesn't support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func (c *Client) openQuotaStore(ctx context.Context, cfg *config.Config) (quota.Store, error) {
	switch cfg.QuotaStore {
	case config.StorePostgres:
		store := quota.NewPostgresStore(c.pool)
		if err := store.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize postgres quota store: %w", err)
		}

		return store, nil

	case config.StoreRedis:
		if c.redis == nil {
			return nil, errors.New("redis quota store needs REDIS_URL")
		}

		return quota.NewRedisStore(c.redis), nil

	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}

		store, err := quota.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}

		c.closers = append(c.closers, store.Close)
		return store, nil

	case config.StoreMemory:
		logger.Warn("using in-memory quota store, usage is lost on restart")
		return quota.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown quota store %q", cfg.QuotaStore)
	}
}

func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// nil when REDIS_URL is not set
func (c *Client) Redis() *redis.Client {
	return c.redis
}

func (c *Client) QuotaStore() quota.Store {
	return c.store
}

// closes the quota store, redis and the pool, in reverse order of opening
func (c *Client) Close() error {
	var errs []error

	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	if c.pool != nil {
		c.pool.Close()
	}

	return errors.Join(errs...)
}
