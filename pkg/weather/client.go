// Package weather is the severe-weather provider client, backed by the
// National Weather Service alerts API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	gg "github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/resilience"
)

const defaultBaseURL = "https://api.weather.gov"

// defaultUserAgent identifies the client per NWS API policy.
const defaultUserAgent = "leadscout (support@sellsadvisors.com)"

// qualifyingEvents are the alert event types that read as lead signals for
// exterior home-service trades.
var qualifyingEvents = []string{
	"tornado", "severe thunderstorm", "hail", "high wind", "hurricane",
	"tropical storm", "winter storm", "ice storm", "flood",
}

// Client fetches storm events near a search area.
type Client interface {
	StormsNear(ctx context.Context, center gg.Point, radiusMiles float64) ([]StormEvent, error)
}

// StormEvent is one qualifying severe-weather event with its geometry.
type StormEvent struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	Severity      string        `json:"severity"`
	DaysAgo       int           `json:"days_ago"`
	Center        gg.Point      `json:"center"`
	DistanceMiles float64       `json:"distance_miles"`
	Geometry      *geom.Polygon `json:"-"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = url }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithClock substitutes the time source. Used by recency tests.
func WithClock(clock func() time.Time) Option {
	return func(c *httpClient) { c.clock = clock }
}

// WithUserAgent overrides the User-Agent header sent to the NWS API.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) { c.userAgent = ua }
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	retry     resilience.RetryConfig
	clock     func() time.Time
}

// NewClient creates an NWS alerts client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type alertsResponse struct {
	Features []alertFeature `json:"features"`
}

type alertFeature struct {
	ID       string `json:"id"`
	Geometry *struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Event    string    `json:"event"`
		Severity string    `json:"severity"`
		Sent     time.Time `json:"sent"`
	} `json:"properties"`
}

// StormsNear implements Client. Events without geometry are anchored at the
// search center's alert zone and rendered with a deterministic jitter
// polygon so repeated fetches draw the same shape.
func (c *httpClient) StormsNear(ctx context.Context, center gg.Point, radiusMiles float64) ([]StormEvent, error) {
	params := url.Values{
		"point":  {fmt.Sprintf("%.4f,%.4f", center.Lat, center.Lng)},
		"status": {"actual"},
	}
	reqURL := c.baseURL + "/alerts?" + params.Encode()

	raw, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/geo+json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "read response")
		}
		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("status %d: %s", resp.StatusCode, body)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "weather: fetch alerts")
	}

	var parsed alertsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, eris.Wrap(err, "weather: parse alerts")
	}

	now := c.clock()
	var events []StormEvent
	for _, f := range parsed.Features {
		if !qualifies(f.Properties.Event) {
			continue
		}

		ev := StormEvent{
			ID:       f.ID,
			Type:     f.Properties.Event,
			Severity: f.Properties.Severity,
			DaysAgo:  int(now.Sub(f.Properties.Sent).Hours() / 24),
			Center:   center,
		}
		if f.Geometry != nil {
			if p, ok := polygonCentroid(f.Geometry.Type, f.Geometry.Coordinates); ok {
				ev.Center = p
			}
		}
		ev.DistanceMiles = gg.DistanceMiles(center, ev.Center)
		if ev.DistanceMiles > radiusMiles {
			continue
		}
		ev.Geometry = gg.JitterPolygon(ev.Center, impactRadiusMeters(ev.Type), 12, 0.3)
		events = append(events, ev)
	}
	return events, nil
}

func qualifies(event string) bool {
	e := strings.ToLower(event)
	for _, q := range qualifyingEvents {
		if strings.Contains(e, q) {
			return true
		}
	}
	return false
}

// polygonCentroid averages the outer-ring vertices of a GeoJSON Polygon or
// the first polygon of a MultiPolygon.
func polygonCentroid(geomType string, coords json.RawMessage) (gg.Point, bool) {
	var ring [][]float64
	switch geomType {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(coords, &rings); err != nil || len(rings) == 0 {
			return gg.Point{}, false
		}
		ring = rings[0]
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(coords, &polys); err != nil || len(polys) == 0 || len(polys[0]) == 0 {
			return gg.Point{}, false
		}
		ring = polys[0][0]
	default:
		return gg.Point{}, false
	}
	if len(ring) == 0 {
		return gg.Point{}, false
	}

	var lat, lng float64
	for _, v := range ring {
		if len(v) < 2 {
			return gg.Point{}, false
		}
		lng += v[0]
		lat += v[1]
	}
	n := float64(len(ring))
	return gg.Point{Lat: lat / n, Lng: lng / n}, true
}

// impactRadiusMeters sizes the rendered impact polygon by event type.
func impactRadiusMeters(eventType string) float64 {
	e := strings.ToLower(eventType)
	switch {
	case strings.Contains(e, "tornado"):
		return 3_000
	case strings.Contains(e, "hurricane"), strings.Contains(e, "tropical"):
		return 25_000
	case strings.Contains(e, "hail"), strings.Contains(e, "thunderstorm"):
		return 8_000
	default:
		return 10_000
	}
}
