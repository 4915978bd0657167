package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/store"
)

// DefaultTTL is the lifetime of a cache entry from write time.
const DefaultTTL = 6 * time.Hour

// Outcome classifies a cache read. Miss and Unavailable produce identical
// caller behavior; they are kept distinct for operational metrics.
type Outcome string

const (
	OutcomeHit         Outcome = "hit"
	OutcomeMiss        Outcome = "miss"
	OutcomeUnavailable Outcome = "unavailable"
)

// Result is the outcome of a cache read.
type Result struct {
	Outcome Outcome
	Payload []byte
}

// Hit reports whether the read returned a usable payload.
func (r Result) Hit() bool { return r.Outcome == OutcomeHit }

// Cache is the fail-open cache layer over the persistent store. Caching is
// an optimization, never a correctness dependency: storage errors read as
// misses and write failures are logged and swallowed.
type Cache struct {
	store store.Store
	ttl   time.Duration
	clock func() time.Time
}

// Option customizes cache construction.
type Option func(*Cache)

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock substitutes the time source. Used by TTL tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) { c.clock = clock }
}

// New creates a Cache over the given store.
func New(s store.Store, opts ...Option) *Cache {
	c := &Cache{store: s, ttl: DefaultTTL, clock: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get reads the payload for key. Missing or expired rows are a miss; a
// storage error degrades to a miss as well but is reported as Unavailable.
func (c *Cache) Get(ctx context.Context, key string) Result {
	entry, err := c.store.GetCache(ctx, key)
	if err != nil {
		zap.L().Warn("cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
		return Result{Outcome: OutcomeUnavailable}
	}
	if entry == nil || !entry.ExpiresAt.After(c.clock()) {
		return Result{Outcome: OutcomeMiss}
	}
	return Result{Outcome: OutcomeHit, Payload: entry.Payload}
}

// Put upserts the payload under key with the configured TTL. A write failure
// must never fail the search; it is logged and swallowed.
func (c *Cache) Put(ctx context.Context, key string, payload []byte) {
	now := c.clock()
	err := c.store.UpsertCache(ctx, store.CacheEntry{
		Key:       key,
		Payload:   payload,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	})
	if err != nil {
		zap.L().Warn("cache write failed, continuing without cache", zap.String("key", key), zap.Error(err))
	}
}

// Sweep deletes rows whose expiry has passed. Idempotent; safe to run on any
// schedule, concurrently with reads and writes.
func (c *Cache) Sweep(ctx context.Context) (int64, error) {
	n, err := c.store.DeleteExpired(ctx, c.clock())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		zap.L().Info("swept expired cache entries", zap.Int64("deleted", n))
	}
	return n, nil
}
