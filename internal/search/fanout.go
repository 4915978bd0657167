package search

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/pkg/census"
	"github.com/sells-group/leadscout/pkg/geocode"
	"github.com/sells-group/leadscout/pkg/permits"
	"github.com/sells-group/leadscout/pkg/places"
	"github.com/sells-group/leadscout/pkg/weather"
)

// layers holds the raw provider results backing one cache miss. Any layer
// may be empty when its provider failed; a single provider's failure never
// aborts the search.
type layers struct {
	mu       sync.Mutex
	listings []places.Listing
	stats    *census.AreaStats
	storms   []weather.StormEvent
	permits  []permits.Permit
}

// fetch fans out to the providers with bounded concurrency and client-side
// pacing. Each provider call gets its own timeout so one slow provider
// cannot stall the whole request.
func (s *Service) fetch(ctx context.Context, q Query, keywords []string) *layers {
	out := &layers{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FetchConcurrency)
	limiter := rate.NewLimiter(rate.Limit(s.cfg.FetchRate), 1)

	radiusMeters := q.RadiusMiles * 1609.344

	// One listing query per keyword; duplicates across keywords are removed
	// during normalization.
	for _, kw := range keywords {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return nil //nolint:nilerr // cancellation ends the batch quietly
			}
			pctx, cancel := context.WithTimeout(gctx, s.cfg.ProviderTimeout)
			defer cancel()

			listings, err := s.providers.Listings.Search(pctx, q.Center, radiusMeters, []string{kw})
			if err != nil {
				zap.L().Warn("listing provider failed, degrading layer",
					zap.String("keyword", kw), zap.Error(err))
				return nil
			}
			out.mu.Lock()
			out.listings = append(out.listings, listings...)
			out.mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		if err := limiter.Wait(gctx); err != nil {
			return nil //nolint:nilerr
		}
		pctx, cancel := context.WithTimeout(gctx, s.cfg.ProviderTimeout)
		defer cancel()

		stats, err := s.providers.Census.TractStatsForArea(pctx, q.Center, q.RadiusMiles)
		if err != nil {
			zap.L().Warn("demographic provider failed, degrading layer", zap.Error(err))
			return nil
		}
		out.mu.Lock()
		out.stats = stats
		out.mu.Unlock()
		return nil
	})

	g.Go(func() error {
		if err := limiter.Wait(gctx); err != nil {
			return nil //nolint:nilerr
		}
		pctx, cancel := context.WithTimeout(gctx, s.cfg.ProviderTimeout)
		defer cancel()

		storms, err := s.providers.Weather.StormsNear(pctx, q.Center, q.RadiusMiles)
		if err != nil {
			zap.L().Warn("severe-weather provider failed, degrading layer", zap.Error(err))
			return nil
		}
		out.mu.Lock()
		out.storms = storms
		out.mu.Unlock()
		return nil
	})

	// The permit provider is optional; a nil client means no portal is
	// configured and the layer stays empty.
	if s.providers.Permits != nil {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return nil //nolint:nilerr
			}
			pctx, cancel := context.WithTimeout(gctx, s.cfg.ProviderTimeout)
			defer cancel()

			prms, err := s.providers.Permits.PermitsNear(pctx, q.Center, q.RadiusMiles)
			if err != nil {
				zap.L().Warn("permit provider failed, degrading layer", zap.Error(err))
				return nil
			}
			out.mu.Lock()
			out.permits = prms
			out.mu.Unlock()
			return nil
		})
	}

	_ = g.Wait() // goroutines never return errors; layers degrade instead

	return out
}

// resolveAddresses reverse-geocodes residential candidates with the same
// bounded concurrency and pacing as the main fan-out. Candidates whose point
// does not resolve to an address are dropped; addresses are never fabricated.
func (s *Service) resolveAddresses(ctx context.Context, points []addressRequest) map[string]*geocode.Address {
	resolved := make(map[string]*geocode.Address, len(points))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FetchConcurrency)
	limiter := rate.NewLimiter(rate.Limit(s.cfg.FetchRate), 1)

	for _, p := range points {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return nil //nolint:nilerr
			}
			pctx, cancel := context.WithTimeout(gctx, s.cfg.ProviderTimeout)
			defer cancel()

			addr, err := s.providers.Geocode.ReverseGeocode(pctx, p.lat, p.lng)
			if err != nil {
				zap.L().Debug("reverse geocode failed, excluding candidate",
					zap.String("id", p.id), zap.Error(err))
				return nil
			}
			if addr == nil {
				return nil
			}
			mu.Lock()
			resolved[p.id] = addr
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return resolved
}

type addressRequest struct {
	id       string
	lat, lng float64
}

// searchDeadline bounds the whole provider round-trip.
func (s *Service) searchDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.SearchDeadline <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.SearchDeadline)
}
