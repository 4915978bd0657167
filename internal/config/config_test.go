package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://places.googleapis.com", cfg.Places.BaseURL)
	assert.Equal(t, "https://api.census.gov/data", cfg.Census.BaseURL)
	assert.Equal(t, "https://api.weather.gov", cfg.Weather.BaseURL)
	assert.Equal(t, "https://maps.googleapis.com", cfg.Geocode.BaseURL)
	assert.Equal(t, 5, cfg.Search.FetchConcurrency)
	assert.InDelta(t, 10.0, cfg.Search.FetchRatePerSec, 0.001)
	assert.Equal(t, 10, cfg.Search.ProviderTimeoutSecs)
	assert.Equal(t, 45, cfg.Search.SearchDeadlineSecs)
	assert.InDelta(t, 10.0, cfg.Search.DefaultRadiusMiles, 0.001)
	assert.InDelta(t, 0.8, cfg.Search.ClusterCellKM, 0.001)
	assert.Equal(t, 3, cfg.Search.ClusterMinSize)
	assert.Equal(t, 25, cfg.Quota.DailyLimit)
	assert.Equal(t, 6, cfg.Cache.TTLHours)
	// Permit layer is opt-in
	assert.Empty(t, cfg.Permits.BaseURL)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
  format: console
server:
  port: 9090
quota:
  daily_limit: 50
cache:
  ttl_hours: 12
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Quota.DailyLimit)
	assert.Equal(t, 12, cfg.Cache.TTLHours)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Search.FetchConcurrency)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADSCOUT_STORE_DRIVER", "postgres")
	t.Setenv("LEADSCOUT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("LEADSCOUT_QUOTA_DAILY_LIMIT", "100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Quota.DailyLimit)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"
	cfg.Search.FetchConcurrency = 5
	cfg.Quota.DailyLimit = 25
	cfg.Cache.TTLHours = 6
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateSearch_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/test"
	cfg.Places.Key = "places-key"
	cfg.Geocode.Key = "geocode-key"

	assert.NoError(t, cfg.Validate("search"))
}

func TestValidateSearch_MissingFields(t *testing.T) {
	cfg := validDefaults()
	// All search-required fields are empty

	err := cfg.Validate("search")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "places.key is required")
	assert.Contains(t, err.Error(), "geocode.key is required")
}

func TestValidateSearch_SQLiteNeedsNoURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "sqlite"
	cfg.Places.Key = "places-key"
	cfg.Geocode.Key = "geocode-key"

	assert.NoError(t, cfg.Validate("search"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/test"
	cfg.Places.Key = "places-key"
	cfg.Geocode.Key = "geocode-key"
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateStoreOnlyModes_NoProviderKeysNeeded(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/test"

	assert.NoError(t, cfg.Validate("sweep"))
	assert.NoError(t, cfg.Validate("quota"))
}

func TestValidateStoreOnlyModes_RequireDatabase(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""
	cfg.Store.Driver = "postgres"

	for _, mode := range []string{"sweep", "quota"} {
		err := cfg.Validate(mode)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "store.database_url is required")
	}
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/test"
	cfg.Places.Key = "places-key"
	cfg.Geocode.Key = "geocode-key"

	cfg.Search.FetchConcurrency = 0
	err := cfg.Validate("search")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch_concurrency must be between 1 and 50")

	cfg.Search.FetchConcurrency = 51
	err = cfg.Validate("search")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch_concurrency must be between 1 and 50")

	cfg.Search.FetchConcurrency = 50
	err = cfg.Validate("search")
	assert.NoError(t, err)
}
