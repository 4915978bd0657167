// Package permits is the building-permit activity provider client. It talks
// to a Socrata-style open-data endpoint; the dataset URL is deployment
// configuration, since permit portals vary by jurisdiction.
package permits

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

// Client fetches recent building permits near a search area.
type Client interface {
	PermitsNear(ctx context.Context, center geo.Point, radiusMiles float64) ([]Permit, error)
}

// Permit is one issued building permit.
type Permit struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	IssuedDate time.Time `json:"issued_date"`
	Location   geo.Point `json:"location"`
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	baseURL  string
	appToken string
	http     *http.Client
	retry    resilience.RetryConfig
}

// NewClient creates a permit client for the given dataset URL. An empty URL
// yields a client that always reports no permits, for jurisdictions without
// an open permit portal.
func NewClient(baseURL, appToken string, opts ...Option) Client {
	c := &httpClient{
		baseURL:  baseURL,
		appToken: appToken,
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

type apiPermit struct {
	PermitNumber string `json:"permit_number"`
	PermitType   string `json:"permit_type"`
	IssuedDate   string `json:"issued_date"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
}

// PermitsNear implements Client using a Socrata within_circle query.
func (c *httpClient) PermitsNear(ctx context.Context, center geo.Point, radiusMiles float64) ([]Permit, error) {
	if c.baseURL == "" {
		return nil, nil
	}

	params := url.Values{
		"$where": {fmt.Sprintf("within_circle(location, %.6f, %.6f, %.0f)",
			center.Lat, center.Lng, geo.MilesToMeters(radiusMiles))},
		"$limit": {"200"},
	}
	reqURL := c.baseURL + "?" + params.Encode()

	raw, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		if c.appToken != "" {
			req.Header.Set("X-App-Token", c.appToken)
		}

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
		return nil, eris.Wrap(err, "permits: fetch")
	}

	var parsed []apiPermit
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, eris.Wrap(err, "permits: parse response")
	}

	permits := make([]Permit, 0, len(parsed))
	for _, p := range parsed {
		lat, errLat := strconv.ParseFloat(p.Latitude, 64)
		lng, errLng := strconv.ParseFloat(p.Longitude, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		permit := Permit{
			ID:       p.PermitNumber,
			Type:     p.PermitType,
			Location: geo.Point{Lat: lat, Lng: lng},
		}
		if t, err := time.Parse("2006-01-02T15:04:05.000", p.IssuedDate); err == nil {
			permit.IssuedDate = t
		}
		permits = append(permits, permit)
	}
	return permits, nil
}
