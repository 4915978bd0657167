package search

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/cache"
	"github.com/sells-group/leadscout/internal/cluster"
	"github.com/sells-group/leadscout/internal/profile"
	"github.com/sells-group/leadscout/internal/quota"
	"github.com/sells-group/leadscout/internal/scoring"
	"github.com/sells-group/leadscout/pkg/census"
	"github.com/sells-group/leadscout/pkg/geocode"
	"github.com/sells-group/leadscout/pkg/permits"
	"github.com/sells-group/leadscout/pkg/places"
	"github.com/sells-group/leadscout/pkg/weather"
)

// Providers bundles the external collaborators one search consumes.
type Providers struct {
	Listings places.Client
	Census   census.Client
	Weather  weather.Client
	Geocode  geocode.Client
	Permits  permits.Client
}

// Config tunes the orchestration layer. Zero values take the defaults.
type Config struct {
	// FetchConcurrency bounds concurrent provider calls. Default: 5.
	FetchConcurrency int
	// FetchRate paces provider calls per second. Default: 10.
	FetchRate float64
	// ProviderTimeout bounds each provider call. Default: 10s.
	ProviderTimeout time.Duration
	// SearchDeadline bounds the whole provider round-trip. Default: 45s.
	SearchDeadline time.Duration
}

func (c Config) withDefaults() Config {
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = 5
	}
	if c.FetchRate <= 0 {
		c.FetchRate = 10
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = 10 * time.Second
	}
	if c.SearchDeadline <= 0 {
		c.SearchDeadline = 45 * time.Second
	}
	return c
}

// Service runs lead searches end to end.
type Service struct {
	providers Providers
	registry  *profile.Registry
	cache     *cache.Cache
	quota     *quota.Limiter
	cluster   cluster.Options
	cfg       Config
	clock     func() time.Time
}

// Option customizes service construction.
type Option func(*Service)

// WithClock substitutes the time source. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithClusterOptions overrides the residential clustering parameters.
func WithClusterOptions(opts cluster.Options) Option {
	return func(s *Service) { s.cluster = opts }
}

// New creates a search service.
func New(providers Providers, registry *profile.Registry, c *cache.Cache, q *quota.Limiter, cfg Config, opts ...Option) *Service {
	s := &Service{
		providers: providers,
		registry:  registry,
		cache:     c,
		quota:     q,
		cfg:       cfg.withDefaults(),
		clock:     func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search executes one lead search: validation, quota check, cache lookup,
// then on a miss the provider fan-out, scoring, clustering, and persistence.
// Cache hits do not consume quota; only actual provider usage counts.
func (s *Service) Search(ctx context.Context, q Query) (*Response, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	st := s.quota.Check(ctx, q.Tenant)
	if !st.Allowed {
		return nil, s.quota.Exceeded(q.Tenant, st)
	}

	key := cache.Key(q.Center.Lat, q.Center.Lng, q.RadiusMiles, q.Industry)
	log := zap.L().With(zap.String("tenant", q.Tenant), zap.String("cache_key", key))

	if res := s.cache.Get(ctx, key); res.Hit() {
		var payload Payload
		if err := json.Unmarshal(res.Payload, &payload); err == nil {
			log.Info("search served from cache", zap.Int("leads", len(payload.Leads)))
			return &Response{
				Payload: payload,
				Meta: Meta{
					RequestID: uuid.NewString(),
					Count:     len(payload.Leads),
					FromCache: true,
					Remaining: st.Remaining,
				},
			}, nil
		}
		log.Warn("cached payload unreadable, refetching")
	}

	fctx, cancel := s.searchDeadline(ctx)
	defer cancel()

	keywords := q.Keywords
	if len(keywords) == 0 {
		keywords = s.defaultKeywords(q.Industry)
	}

	lay := s.fetch(fctx, q, keywords)

	payload, err := s.assemble(fctx, q, lay)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "search: marshal payload")
	}
	s.cache.Put(ctx, key, raw)

	st = s.quota.Consume(ctx, q.Tenant)

	log.Info("search complete",
		zap.Int("leads", len(payload.Leads)),
		zap.Int("clusters", len(payload.Clusters)),
		zap.Int("remaining", st.Remaining),
	)

	return &Response{
		Payload: payload,
		Meta: Meta{
			RequestID: uuid.NewString(),
			Count:     len(payload.Leads),
			FromCache: false,
			Remaining: st.Remaining,
		},
	}, nil
}

// assemble scores and clusters the fetched layers into a payload.
func (s *Service) assemble(ctx context.Context, q Query, lay *layers) (Payload, error) {
	params := scoring.Params{
		Center:       q.Center,
		RadiusMeters: q.RadiusMiles * 1609.344,
		Industry:     q.Industry,
		Filters:      q.Filters,
		Now:          s.clock(),
	}

	var leads []scoring.Lead
	var clusters []cluster.Cluster

	listings := dedupeListings(lay.listings)

	if s.registry.IsNiche(q.Industry) {
		niche := s.registry.NicheFor(q.Industry)
		for _, l := range listings {
			leads = append(leads, scoring.ScorePhotoSpot(l, niche, params))
		}
	} else {
		prof := s.registry.TradeFor(q.Industry)
		params.Industry = prof.ID

		for _, l := range listings {
			leads = append(leads, scoring.ScorePlace(l, params))
		}

		residential := s.scoreResidential(ctx, q, lay, prof, params)
		clusters = cluster.Group(residential, s.cluster).Clusters
		leads = append(leads, residential...)
	}

	sortLeads(leads)

	return Payload{
		Leads:       leads,
		Clusters:    clusters,
		Storms:      lay.storms,
		Permits:     lay.permits,
		GeneratedAt: s.clock(),
	}, nil
}

// scoreResidential builds residential candidates from the demographic layer,
// resolves their addresses, and scores the ones that resolved. Candidates
// without a resolvable address are excluded rather than given one.
func (s *Service) scoreResidential(ctx context.Context, q Query, lay *layers, prof profile.TradeProfile, params scoring.Params) []scoring.Lead {
	areas := buildAreas(lay.stats, lay.storms, lay.permits, q.Center, q.RadiusMiles)
	if len(areas) == 0 {
		return nil
	}

	reqs := make([]addressRequest, 0, len(areas))
	for _, a := range areas {
		reqs = append(reqs, addressRequest{id: a.ID, lat: a.Center.Lat, lng: a.Center.Lng})
	}
	addresses := s.resolveAddresses(ctx, reqs)

	var out []scoring.Lead
	for _, a := range areas {
		addr, ok := addresses[a.ID]
		if !ok {
			continue
		}
		lead := scoring.ScoreResidential(a, prof, params)
		lead.Address = addr.Formatted
		out = append(out, lead)
	}
	return out
}

// defaultKeywords derives listing queries from the industry profile.
func (s *Service) defaultKeywords(industry string) []string {
	if s.registry.IsNiche(industry) {
		niche := s.registry.NicheFor(industry)
		kws := make([]string, 0, 3)
		for _, kw := range niche.VenueKeywords {
			kws = append(kws, kw)
			if len(kws) == 3 {
				break
			}
		}
		return kws
	}
	prof := s.registry.TradeFor(industry)
	return []string{prof.DisplayName}
}

// sortLeads orders by descending score with id as a deterministic tie-break.
func sortLeads(leads []scoring.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		if leads[i].Score != leads[j].Score {
			return leads[i].Score > leads[j].Score
		}
		return leads[i].ID < leads[j].ID
	})
}
