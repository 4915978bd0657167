package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/cache"
	"github.com/sells-group/leadscout/internal/cluster"
	"github.com/sells-group/leadscout/internal/profile"
	"github.com/sells-group/leadscout/internal/quota"
	"github.com/sells-group/leadscout/internal/search"
	"github.com/sells-group/leadscout/internal/store"
	"github.com/sells-group/leadscout/pkg/census"
	"github.com/sells-group/leadscout/pkg/geocode"
	"github.com/sells-group/leadscout/pkg/permits"
	"github.com/sells-group/leadscout/pkg/places"
	"github.com/sells-group/leadscout/pkg/weather"
)

// searchEnv holds the store, limiters, and the search service needed by
// the search/serve commands.
type searchEnv struct {
	Store    store.Store
	Cache    *cache.Cache
	Quota    *quota.Limiter
	Registry *profile.Registry
	Service  *search.Service
}

// Close releases resources held by the environment.
func (se *searchEnv) Close() {
	if se.Store != nil {
		_ = se.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadscout.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initRegistry() (*profile.Registry, error) {
	if cfg.Profiles.Path != "" {
		reg, err := profile.LoadFile(cfg.Profiles.Path)
		if err != nil {
			return nil, err
		}
		zap.L().Info("trade profiles loaded from file", zap.String("path", cfg.Profiles.Path))
		return reg, nil
	}
	return profile.NewRegistry()
}

// initSearchEnv sets up the store, provider clients, quota and cache
// layers, and builds the search service. Callers should defer env.Close().
func initSearchEnv(ctx context.Context, mode string) (*searchEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	reg, err := initRegistry()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	providers := search.Providers{
		Listings: places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL)),
		Census: census.NewClient(cfg.Census.Key,
			census.WithACSBaseURL(cfg.Census.BaseURL),
			census.WithGeocoderBaseURL(cfg.Census.GeoBaseURL),
		),
		Weather: weather.NewClient(
			weather.WithBaseURL(cfg.Weather.BaseURL),
			weather.WithUserAgent(cfg.Weather.UserAgent),
		),
		Geocode: geocode.NewClient(cfg.Geocode.Key, geocode.WithBaseURL(cfg.Geocode.BaseURL)),
	}

	// Permit portal is opt-in; with an empty base URL the client always
	// reports no permits.
	providers.Permits = permits.NewClient(cfg.Permits.BaseURL, cfg.Permits.AppToken)
	if cfg.Permits.BaseURL != "" {
		zap.L().Info("permit portal enabled", zap.String("base_url", cfg.Permits.BaseURL))
	} else {
		zap.L().Debug("permits.base_url not set, permit layer disabled")
	}

	c := cache.New(st, cache.WithTTL(time.Duration(cfg.Cache.TTLHours)*time.Hour))
	q := quota.New(st, quota.WithLimit(cfg.Quota.DailyLimit))

	svc := search.New(providers, reg, c, q, search.Config{
		FetchConcurrency: cfg.Search.FetchConcurrency,
		FetchRate:        cfg.Search.FetchRatePerSec,
		ProviderTimeout:  time.Duration(cfg.Search.ProviderTimeoutSecs) * time.Second,
		SearchDeadline:   time.Duration(cfg.Search.SearchDeadlineSecs) * time.Second,
	}, search.WithClusterOptions(cluster.Options{
		CellKM:         cfg.Search.ClusterCellKM,
		MinClusterSize: cfg.Search.ClusterMinSize,
	}))

	return &searchEnv{
		Store:    st,
		Cache:    c,
		Quota:    q,
		Registry: reg,
		Service:  svc,
	}, nil
}
