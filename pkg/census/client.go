// Package census is the demographic provider client. It resolves the county
// containing a search point via the Census geocoder, then pulls tract-level
// ACS 5-year housing and income statistics for that county.
package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/resilience"
)

const (
	defaultGeocoderBaseURL = "https://geocoding.geo.census.gov"
	defaultACSBaseURL      = "https://api.census.gov"

	censusBenchmark = "Public_AR_Current"
	censusVintage   = "Current_Current"
	acsDataset      = "2022/acs/acs5"
)

// acsVariables are the tract-level columns the residential scorer consumes.
// B19013: median household income; B25035: median year structure built;
// B25003: tenure (total / owner-occupied); B25001: housing units.
const acsVariables = "NAME,B19013_001E,B25035_001E,B25003_001E,B25003_002E,B25001_001E"

// Client fetches census-tract statistics for a search area.
type Client interface {
	TractStatsForArea(ctx context.Context, center geo.Point, radiusMiles float64) (*AreaStats, error)
}

// TractStat holds one tract's statistics. Pointer fields are nil when the
// ACS reports no data for the tract.
type TractStat struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	MedianYearBuilt   *int     `json:"median_year_built,omitempty"`
	MedianIncome      *float64 `json:"median_income,omitempty"`
	OwnerOccupiedPct  *float64 `json:"owner_occupied_pct,omitempty"`
	TotalHousingUnits *int     `json:"total_housing_units,omitempty"`
}

// AreaAverages aggregates the tract columns that carried data.
type AreaAverages struct {
	MedianYearBuilt  *int     `json:"median_year_built,omitempty"`
	MedianIncome     *float64 `json:"median_income,omitempty"`
	OwnerOccupiedPct *float64 `json:"owner_occupied_pct,omitempty"`
}

// AreaStats is the demographic picture of one search area.
type AreaStats struct {
	Tracts   []TractStat  `json:"tracts"`
	Averages AreaAverages `json:"averages"`
}

// Option configures the client.
type Option func(*httpClient)

// WithGeocoderBaseURL overrides the geocoder base URL.
func WithGeocoderBaseURL(url string) Option {
	return func(c *httpClient) { c.geocoderBaseURL = url }
}

// WithACSBaseURL overrides the ACS API base URL.
func WithACSBaseURL(url string) Option {
	return func(c *httpClient) { c.acsBaseURL = url }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey          string
	geocoderBaseURL string
	acsBaseURL      string
	http            *http.Client
	retry           resilience.RetryConfig
}

// NewClient creates a census client. The API key is optional for low volumes.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:          apiKey,
		geocoderBaseURL: defaultGeocoderBaseURL,
		acsBaseURL:      defaultACSBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TractStatsForArea implements Client. The tract list is county-granular:
// every tract of the county containing the center, which callers filter by
// distance as needed.
func (c *httpClient) TractStatsForArea(ctx context.Context, center geo.Point, radiusMiles float64) (*AreaStats, error) {
	state, county, err := c.countyFor(ctx, center)
	if err != nil {
		return nil, eris.Wrap(err, "census: resolve county")
	}

	tracts, err := c.countyTracts(ctx, state, county)
	if err != nil {
		return nil, eris.Wrapf(err, "census: tracts for %s%s", state, county)
	}

	return &AreaStats{Tracts: tracts, Averages: averagesOf(tracts)}, nil
}

type geographiesResponse struct {
	Result struct {
		Geographies map[string][]struct {
			State  string `json:"STATE"`
			County string `json:"COUNTY"`
		} `json:"geographies"`
	} `json:"result"`
}

func (c *httpClient) countyFor(ctx context.Context, p geo.Point) (state, county string, err error) {
	params := url.Values{
		"x":         {strconv.FormatFloat(p.Lng, 'f', 6, 64)},
		"y":         {strconv.FormatFloat(p.Lat, 'f', 6, 64)},
		"benchmark": {censusBenchmark},
		"vintage":   {censusVintage},
		"format":    {"json"},
	}
	reqURL := c.geocoderBaseURL + "/geocoder/geographies/coordinates?" + params.Encode()

	raw, err := c.get(ctx, reqURL)
	if err != nil {
		return "", "", err
	}

	var parsed geographiesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", "", eris.Wrap(err, "parse geographies")
	}

	counties := parsed.Result.Geographies["Counties"]
	if len(counties) == 0 {
		return "", "", eris.New("point is outside census county coverage")
	}
	return counties[0].State, counties[0].County, nil
}

func (c *httpClient) countyTracts(ctx context.Context, state, county string) ([]TractStat, error) {
	params := url.Values{
		"get": {acsVariables},
		"for": {"tract:*"},
		"in":  {fmt.Sprintf("state:%s county:%s", state, county)},
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	reqURL := c.acsBaseURL + "/data/" + acsDataset + "?" + params.Encode()

	raw, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	// The ACS API returns a 2D string array; the first row is the header.
	var rows [][]string
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, eris.Wrap(err, "parse acs rows")
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}

	tracts := make([]TractStat, 0, len(rows)-1)
	for _, row := range rows[1:] {
		t := TractStat{
			ID:   cell(row, col, "state") + cell(row, col, "county") + cell(row, col, "tract"),
			Name: cell(row, col, "NAME"),
		}
		if v, ok := parseACSInt(cell(row, col, "B25035_001E")); ok && v > 1900 {
			t.MedianYearBuilt = &v
		}
		if v, ok := parseACSFloat(cell(row, col, "B19013_001E")); ok {
			t.MedianIncome = &v
		}
		if units, ok := parseACSInt(cell(row, col, "B25001_001E")); ok {
			t.TotalHousingUnits = &units
		}
		total, okT := parseACSFloat(cell(row, col, "B25003_001E"))
		owner, okO := parseACSFloat(cell(row, col, "B25003_002E"))
		if okT && okO && total > 0 {
			pct := 100 * owner / total
			t.OwnerOccupiedPct = &pct
		}
		tracts = append(tracts, t)
	}
	return tracts, nil
}

func (c *httpClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "read response")
		}
		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("status %d: %s", resp.StatusCode, raw)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}
		return raw, nil
	})
}

func cell(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseACSInt parses an ACS cell, rejecting the negative sentinel values the
// API uses for suppressed or unavailable data.
func parseACSInt(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func parseACSFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func averagesOf(tracts []TractStat) AreaAverages {
	var avg AreaAverages
	var yearSum, yearN int
	var incomeSum, ownerSum float64
	var incomeN, ownerN int
	for _, t := range tracts {
		if t.MedianYearBuilt != nil {
			yearSum += *t.MedianYearBuilt
			yearN++
		}
		if t.MedianIncome != nil {
			incomeSum += *t.MedianIncome
			incomeN++
		}
		if t.OwnerOccupiedPct != nil {
			ownerSum += *t.OwnerOccupiedPct
			ownerN++
		}
	}
	if yearN > 0 {
		v := yearSum / yearN
		avg.MedianYearBuilt = &v
	}
	if incomeN > 0 {
		v := incomeSum / float64(incomeN)
		avg.MedianIncome = &v
	}
	if ownerN > 0 {
		v := ownerSum / float64(ownerN)
		avg.OwnerOccupiedPct = &v
	}
	return avg
}
