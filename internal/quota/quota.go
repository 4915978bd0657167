// Package quota enforces the per-tenant daily search limit. The limiter
// fails open: an unavailable or cold counter store never blocks searching.
package quota

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/store"
)

// DefaultDailyLimit is the number of counted searches a tenant gets per UTC day.
const DefaultDailyLimit = 25

// ExceededError is returned when a tenant's daily quota is exhausted. It is
// a distinct condition, not a generic failure: callers can show "quota
// exhausted, retry after ResetAt".
type ExceededError struct {
	Tenant    string
	Remaining int
	ResetAt   time.Time
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("quota: tenant %s exhausted daily search limit, resets %s", e.Tenant, e.ResetAt.Format(time.RFC3339))
}

// Status is the outcome of a quota check.
type Status struct {
	Allowed   bool      `json:"allowed"`
	Count     int       `json:"count"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Limiter checks and consumes per-tenant daily quota.
type Limiter struct {
	store store.Store
	limit int
	clock func() time.Time
}

// Option customizes limiter construction.
type Option func(*Limiter)

// WithLimit overrides the default daily limit.
func WithLimit(limit int) Option {
	return func(l *Limiter) { l.limit = limit }
}

// WithClock substitutes the time source. Used by day-rollover tests.
func WithClock(clock func() time.Time) Option {
	return func(l *Limiter) { l.clock = clock }
}

// New creates a Limiter over the given store.
func New(s store.Store, opts ...Option) *Limiter {
	l := &Limiter{store: s, limit: DefaultDailyLimit, clock: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Check reads the tenant's counter for today. A missing counter (first
// search of the day, or an unprovisioned store) and a storage error both
// fail open with a full remaining quota.
func (l *Limiter) Check(ctx context.Context, tenant string) Status {
	now := l.clock()
	st := Status{Allowed: true, Remaining: l.limit, ResetAt: nextUTCMidnight(now)}

	count, found, err := l.store.GetCounter(ctx, tenant, now)
	if err != nil {
		zap.L().Warn("quota check failed, failing open", zap.String("tenant", tenant), zap.Error(err))
		return st
	}
	if !found {
		return st
	}

	st.Count = count
	st.Allowed = count < l.limit
	st.Remaining = l.limit - count
	if st.Remaining < 0 {
		st.Remaining = 0
	}
	return st
}

// Consume counts one search against the tenant's daily quota via an atomic
// storage-level increment and returns the updated status. A storage error
// fails open: the search proceeds uncounted.
func (l *Limiter) Consume(ctx context.Context, tenant string) Status {
	now := l.clock()
	st := Status{Allowed: true, Remaining: l.limit, ResetAt: nextUTCMidnight(now)}

	count, err := l.store.IncrementCounter(ctx, tenant, now)
	if err != nil {
		zap.L().Warn("quota increment failed, failing open", zap.String("tenant", tenant), zap.Error(err))
		return st
	}

	st.Count = count
	st.Allowed = count <= l.limit
	st.Remaining = l.limit - count
	if st.Remaining < 0 {
		st.Remaining = 0
	}
	return st
}

// Exceeded builds the typed quota error for a tenant given its status.
func (l *Limiter) Exceeded(tenant string, st Status) *ExceededError {
	return &ExceededError{Tenant: tenant, Remaining: 0, ResetAt: st.ResetAt}
}

// nextUTCMidnight is when the day component of every counter key rolls over.
func nextUTCMidnight(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
