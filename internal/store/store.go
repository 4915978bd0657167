// Package store persists cache entries and per-tenant rate counters behind
// interchangeable Postgres and SQLite backends.
package store

import (
	"context"
	"time"
)

// CacheEntry is one cached search payload keyed by its spatial bucket.
type CacheEntry struct {
	Key       string    `json:"key"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store is the persistence interface for the search engine. Counter day
// arguments are interpreted as UTC calendar dates.
type Store interface {
	// Cache. GetCache returns (nil, nil) when the key is absent or the
	// entry's expiry is not strictly in the future.
	GetCache(ctx context.Context, key string) (*CacheEntry, error)
	UpsertCache(ctx context.Context, entry CacheEntry) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// Rate counters. IncrementCounter is an atomic upsert-increment and
	// returns the new count; GetCounter reports found=false when no counter
	// row exists for the (tenant, day) pair.
	IncrementCounter(ctx context.Context, tenant string, day time.Time) (int, error)
	GetCounter(ctx context.Context, tenant string, day time.Time) (count int, found bool, err error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}

// DayKey formats a counter day as its UTC calendar date.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
