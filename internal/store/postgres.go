package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/db"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS lead_cache (
	cache_key  TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lead_cache_expires ON lead_cache (expires_at);

CREATE TABLE IF NOT EXISTS rate_counters (
	tenant_id      TEXT NOT NULL,
	day            DATE NOT NULL,
	search_count   INTEGER NOT NULL DEFAULT 0,
	last_search_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (tenant_id, day)
);
`

// Migrate creates the cache and counter tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// GetCache returns the entry for key if its expiry is strictly in the future.
func (s *PostgresStore) GetCache(ctx context.Context, key string) (*CacheEntry, error) {
	var e CacheEntry
	err := s.pool.QueryRow(ctx,
		`SELECT cache_key, payload, created_at, expires_at FROM lead_cache WHERE cache_key = $1 AND expires_at > now()`,
		key,
	).Scan(&e.Key, &e.Payload, &e.CreatedAt, &e.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cache")
	}
	return &e, nil
}

// UpsertCache writes the entry, replacing any previous row for the same key.
func (s *PostgresStore) UpsertCache(ctx context.Context, entry CacheEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO lead_cache (cache_key, payload, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cache_key) DO UPDATE
		SET payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`,
		entry.Key, entry.Payload, entry.CreatedAt, entry.ExpiresAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: upsert cache")
	}
	return nil
}

// DeleteExpired removes cache rows whose expiry has passed. Idempotent and
// safe to run concurrently with reads and writes.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM lead_cache WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired")
	}
	return tag.RowsAffected(), nil
}

// IncrementCounter bumps the (tenant, day) search counter atomically at the
// storage layer and returns the new count. Never read-then-write: concurrent
// requests from the same tenant must not race.
func (s *PostgresStore) IncrementCounter(ctx context.Context, tenant string, day time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		INSERT INTO rate_counters (tenant_id, day, search_count, last_search_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (tenant_id, day) DO UPDATE
		SET search_count = rate_counters.search_count + 1,
			last_search_at = now()
		RETURNING search_count`,
		tenant, DayKey(day),
	).Scan(&count)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: increment counter")
	}
	return count, nil
}

// GetCounter reads the (tenant, day) counter; found is false when no counted
// search has happened yet that day.
func (s *PostgresStore) GetCounter(ctx context.Context, tenant string, day time.Time) (int, bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT search_count FROM rate_counters WHERE tenant_id = $1 AND day = $2`,
		tenant, DayKey(day),
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, eris.Wrap(err, "postgres: get counter")
	}
	return count, true, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
