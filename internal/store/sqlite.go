package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite, for single-binary
// local deployments without a Postgres server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS lead_cache (
	cache_key  TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lead_cache_expires ON lead_cache (expires_at);

CREATE TABLE IF NOT EXISTS rate_counters (
	tenant_id      TEXT NOT NULL,
	day            TEXT NOT NULL,
	search_count   INTEGER NOT NULL DEFAULT 0,
	last_search_at DATETIME NOT NULL,
	PRIMARY KEY (tenant_id, day)
);
`

// Migrate creates the cache and counter tables if they do not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// GetCache returns the entry for key if its expiry is strictly in the future.
func (s *SQLiteStore) GetCache(ctx context.Context, key string) (*CacheEntry, error) {
	var e CacheEntry
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT cache_key, payload, created_at, expires_at FROM lead_cache WHERE cache_key = ? AND expires_at > ?`,
		key, time.Now().UTC(),
	).Scan(&e.Key, &payload, &e.CreatedAt, &e.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cache")
	}
	e.Payload = []byte(payload)
	return &e, nil
}

// UpsertCache writes the entry, replacing any previous row for the same key.
func (s *SQLiteStore) UpsertCache(ctx context.Context, entry CacheEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lead_cache (cache_key, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE
		SET payload = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		entry.Key, string(entry.Payload), entry.CreatedAt.UTC(), entry.ExpiresAt.UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: upsert cache")
	}
	return nil
}

// DeleteExpired removes cache rows whose expiry has passed.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lead_cache WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return n, nil
}

// IncrementCounter bumps the (tenant, day) counter atomically via a single
// upsert statement and returns the new count.
func (s *SQLiteStore) IncrementCounter(ctx context.Context, tenant string, day time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO rate_counters (tenant_id, day, search_count, last_search_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (tenant_id, day) DO UPDATE
		SET search_count = search_count + 1,
			last_search_at = excluded.last_search_at
		RETURNING search_count`,
		tenant, DayKey(day), time.Now().UTC(),
	).Scan(&count)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: increment counter")
	}
	return count, nil
}

// GetCounter reads the (tenant, day) counter.
func (s *SQLiteStore) GetCounter(ctx context.Context, tenant string, day time.Time) (int, bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT search_count FROM rate_counters WHERE tenant_id = ? AND day = ?`,
		tenant, DayKey(day),
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, eris.Wrap(err, "sqlite: get counter")
	}
	return count, true, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
