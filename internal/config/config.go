package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Places   PlacesConfig   `yaml:"places" mapstructure:"places"`
	Census   CensusConfig   `yaml:"census" mapstructure:"census"`
	Weather  WeatherConfig  `yaml:"weather" mapstructure:"weather"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Permits  PermitsConfig  `yaml:"permits" mapstructure:"permits"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Quota    QuotaConfig    `yaml:"quota" mapstructure:"quota"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Profiles ProfilesConfig `yaml:"profiles" mapstructure:"profiles"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CensusConfig holds Census Bureau API settings.
type CensusConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	GeoBaseURL string `yaml:"geo_base_url" mapstructure:"geo_base_url"`
}

// WeatherConfig holds National Weather Service API settings.
type WeatherConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// GeocodeConfig holds Google Geocoding API settings.
type GeocodeConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PermitsConfig holds the municipal permit portal settings. An empty
// base URL disables the permit layer.
type PermitsConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	AppToken string `yaml:"app_token" mapstructure:"app_token"`
}

// SearchConfig configures provider fan-out behavior.
type SearchConfig struct {
	FetchConcurrency     int     `yaml:"fetch_concurrency" mapstructure:"fetch_concurrency"`
	FetchRatePerSec      float64 `yaml:"fetch_rate_per_sec" mapstructure:"fetch_rate_per_sec"`
	ProviderTimeoutSecs  int     `yaml:"provider_timeout_secs" mapstructure:"provider_timeout_secs"`
	SearchDeadlineSecs   int     `yaml:"search_deadline_secs" mapstructure:"search_deadline_secs"`
	DefaultRadiusMiles   float64 `yaml:"default_radius_miles" mapstructure:"default_radius_miles"`
	ClusterCellKM        float64 `yaml:"cluster_cell_km" mapstructure:"cluster_cell_km"`
	ClusterMinSize       int     `yaml:"cluster_min_size" mapstructure:"cluster_min_size"`
}

// QuotaConfig configures per-tenant daily search limits.
type QuotaConfig struct {
	DailyLimit int `yaml:"daily_limit" mapstructure:"daily_limit"`
}

// CacheConfig configures the search result cache.
type CacheConfig struct {
	TTLHours int `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// ProfilesConfig points at an optional trade profile override file.
type ProfilesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("places.base_url", "https://places.googleapis.com")
	v.SetDefault("census.base_url", "https://api.census.gov/data")
	v.SetDefault("census.geo_base_url", "https://geocoding.geo.census.gov")
	v.SetDefault("weather.base_url", "https://api.weather.gov")
	v.SetDefault("weather.user_agent", "leadscout (ops@sells.group)")
	v.SetDefault("geocode.base_url", "https://maps.googleapis.com")
	v.SetDefault("search.fetch_concurrency", 5)
	v.SetDefault("search.fetch_rate_per_sec", 10.0)
	v.SetDefault("search.provider_timeout_secs", 10)
	v.SetDefault("search.search_deadline_secs", 45)
	v.SetDefault("search.default_radius_miles", 10.0)
	v.SetDefault("search.cluster_cell_km", 0.8)
	v.SetDefault("search.cluster_min_size", 3)
	v.SetDefault("quota.daily_limit", 25)
	v.SetDefault("cache.ttl_hours", 6)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete for the given
// run mode ("search", "serve", "sweep", or "quota").
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "search", "serve":
		if c.Store.DatabaseURL == "" && c.Store.Driver != "sqlite" {
			problems = append(problems, "store.database_url is required")
		}
		if c.Places.Key == "" {
			problems = append(problems, "places.key is required")
		}
		if c.Geocode.Key == "" {
			problems = append(problems, "geocode.key is required")
		}
		if c.Search.FetchConcurrency < 1 || c.Search.FetchConcurrency > 50 {
			problems = append(problems, "search.fetch_concurrency must be between 1 and 50")
		}
		if c.Quota.DailyLimit < 1 {
			problems = append(problems, "quota.daily_limit must be > 0")
		}
		if c.Cache.TTLHours < 1 {
			problems = append(problems, "cache.ttl_hours must be > 0")
		}
		if mode == "serve" && c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	// Sweep and quota touch only the store.
	case "sweep", "quota":
		if c.Store.DatabaseURL == "" && c.Store.Driver != "sqlite" {
			problems = append(problems, "store.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s mode: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
