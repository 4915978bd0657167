package census

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/geo"
)

const geographiesBody = `{
	"result": {
		"geographies": {
			"Counties": [{"STATE": "48", "COUNTY": "453"}]
		}
	}
}`

const acsBody = `[
	["NAME","B19013_001E","B25035_001E","B25003_001E","B25003_002E","B25001_001E","state","county","tract"],
	["Census Tract 1.01","92500","2004","1500","1200","1600","48","453","000101"],
	["Census Tract 1.02","-666666666","-666666666","0","0","-666666666","48","453","000102"],
	["Census Tract 2","58000","1978","900","450","950","48","453","000200"]
]`

func newGeocoderServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoder/geographies/coordinates", r.URL.Path)
		assert.Equal(t, "Public_AR_Current", r.URL.Query().Get("benchmark"))
		assert.Equal(t, "Current_Current", r.URL.Query().Get("vintage"))
		assert.NotEmpty(t, r.URL.Query().Get("x"))
		assert.NotEmpty(t, r.URL.Query().Get("y"))
		_, _ = w.Write([]byte(geographiesBody))
	}))
}

func TestTractStatsForArea_Success(t *testing.T) {
	geocoder := newGeocoderServer(t)
	defer geocoder.Close()

	acs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2022/acs/acs5", r.URL.Path)
		assert.Equal(t, "tract:*", r.URL.Query().Get("for"))
		assert.Equal(t, "state:48 county:453", r.URL.Query().Get("in"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(acsBody))
	}))
	defer acs.Close()

	client := NewClient("test-key", WithGeocoderBaseURL(geocoder.URL), WithACSBaseURL(acs.URL))
	stats, err := client.TractStatsForArea(context.Background(), geo.Point{Lat: 30.2672, Lng: -97.7431}, 10)

	require.NoError(t, err)
	require.Len(t, stats.Tracts, 3)

	first := stats.Tracts[0]
	assert.Equal(t, "48453000101", first.ID)
	assert.Equal(t, "Census Tract 1.01", first.Name)
	require.NotNil(t, first.MedianIncome)
	assert.InDelta(t, 92500, *first.MedianIncome, 0.01)
	require.NotNil(t, first.MedianYearBuilt)
	assert.Equal(t, 2004, *first.MedianYearBuilt)
	require.NotNil(t, first.OwnerOccupiedPct)
	assert.InDelta(t, 80.0, *first.OwnerOccupiedPct, 0.01)
	require.NotNil(t, first.TotalHousingUnits)
	assert.Equal(t, 1600, *first.TotalHousingUnits)
}

func TestTractStatsForArea_SuppressedSentinels(t *testing.T) {
	geocoder := newGeocoderServer(t)
	defer geocoder.Close()

	acs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(acsBody))
	}))
	defer acs.Close()

	client := NewClient("", WithGeocoderBaseURL(geocoder.URL), WithACSBaseURL(acs.URL))
	stats, err := client.TractStatsForArea(context.Background(), geo.Point{Lat: 30.2672, Lng: -97.7431}, 10)
	require.NoError(t, err)

	// Sentinel-valued columns come back nil, and a zero tenure total yields
	// no ownership percentage.
	suppressed := stats.Tracts[1]
	assert.Nil(t, suppressed.MedianIncome)
	assert.Nil(t, suppressed.MedianYearBuilt)
	assert.Nil(t, suppressed.OwnerOccupiedPct)
	assert.Nil(t, suppressed.TotalHousingUnits)
}

func TestTractStatsForArea_Averages(t *testing.T) {
	geocoder := newGeocoderServer(t)
	defer geocoder.Close()

	acs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(acsBody))
	}))
	defer acs.Close()

	client := NewClient("", WithGeocoderBaseURL(geocoder.URL), WithACSBaseURL(acs.URL))
	stats, err := client.TractStatsForArea(context.Background(), geo.Point{Lat: 30.2672, Lng: -97.7431}, 10)
	require.NoError(t, err)

	// Only tracts that carried data contribute.
	require.NotNil(t, stats.Averages.MedianIncome)
	assert.InDelta(t, 75250, *stats.Averages.MedianIncome, 0.01)
	require.NotNil(t, stats.Averages.MedianYearBuilt)
	assert.Equal(t, 1991, *stats.Averages.MedianYearBuilt)
	require.NotNil(t, stats.Averages.OwnerOccupiedPct)
	assert.InDelta(t, 65.0, *stats.Averages.OwnerOccupiedPct, 0.01)
}

func TestTractStatsForArea_NoCountyCoverage(t *testing.T) {
	geocoder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result": {"geographies": {}}}`))
	}))
	defer geocoder.Close()

	client := NewClient("", WithGeocoderBaseURL(geocoder.URL))
	stats, err := client.TractStatsForArea(context.Background(), geo.Point{Lat: 0, Lng: 0}, 10)

	assert.Error(t, err)
	assert.Nil(t, stats)
	assert.Contains(t, err.Error(), "county")
}

func TestTractStatsForArea_EmptyACSRows(t *testing.T) {
	geocoder := newGeocoderServer(t)
	defer geocoder.Close()

	acs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[["NAME","state","county","tract"]]`))
	}))
	defer acs.Close()

	client := NewClient("", WithGeocoderBaseURL(geocoder.URL), WithACSBaseURL(acs.URL))
	stats, err := client.TractStatsForArea(context.Background(), geo.Point{Lat: 30.2672, Lng: -97.7431}, 10)

	require.NoError(t, err)
	assert.Empty(t, stats.Tracts)
}

func TestTractStatsForArea_GeocoderError(t *testing.T) {
	geocoder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid coordinates"}`))
	}))
	defer geocoder.Close()

	client := NewClient("", WithGeocoderBaseURL(geocoder.URL))
	_, err := client.TractStatsForArea(context.Background(), geo.Point{Lat: 30.2672, Lng: -97.7431}, 10)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
