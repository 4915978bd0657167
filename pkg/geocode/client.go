// Package geocode is the reverse-geocoding provider client, backed by the
// Google Geocoding API. Unresolved points are excluded from results, never
// fabricated: a miss returns (nil, nil).
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/resilience"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode"

// Client reverse-geocodes points to street addresses.
type Client interface {
	// ReverseGeocode returns the address at (lat, lng), or (nil, nil) when
	// the point does not resolve to one.
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error)
}

// Address is one resolved street address.
type Address struct {
	Formatted string `json:"formatted"`
	Street    string `json:"street,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zip_code,omitempty"`
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

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a reverse-geocoding client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
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

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// ReverseGeocode implements Client.
func (c *httpClient) ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error) {
	params := url.Values{
		"latlng":      {fmt.Sprintf("%.6f,%.6f", lat, lng)},
		"key":         {c.apiKey},
		"result_type": {"street_address|premise"},
	}
	reqURL := c.baseURL + "/json?" + params.Encode()

	parsed, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*geocodeResponse, error) {
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

		var gr geocodeResponse
		if err := json.Unmarshal(raw, &gr); err != nil {
			return nil, eris.Wrap(err, "parse response")
		}
		return &gr, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "geocode: reverse geocode")
	}

	if parsed.Status != "OK" && parsed.Status != "ZERO_RESULTS" {
		return nil, eris.Errorf("geocode: status %s", parsed.Status)
	}
	// ZERO_RESULTS is a clean miss, not an error.
	if parsed.Status == "ZERO_RESULTS" || len(parsed.Results) == 0 {
		return nil, nil
	}

	best := parsed.Results[0]
	addr := &Address{Formatted: best.FormattedAddress}
	var streetNumber, route string
	for _, comp := range best.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "street_number":
				streetNumber = comp.LongName
			case "route":
				route = comp.LongName
			case "locality":
				addr.City = comp.LongName
			case "administrative_area_level_1":
				addr.State = comp.ShortName
			case "postal_code":
				addr.ZipCode = comp.LongName
			}
		}
	}
	if route != "" {
		addr.Street = route
		if streetNumber != "" {
			addr.Street = streetNumber + " " + route
		}
	}
	return addr, nil
}
