// Package places is the business-listing provider client, backed by the
// Google Places (New) Text Search API.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/resilience"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// Client performs business-listing searches.
type Client interface {
	// Search issues one query per keyword biased to the circle around
	// center. Results may contain duplicates across keywords; callers
	// deduplicate by listing ID.
	Search(ctx context.Context, center geo.Point, radiusMeters float64, keywords []string) ([]Listing, error)
}

// Listing is one business returned by the provider.
type Listing struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address,omitempty"`
	Location       geo.Point `json:"location"`
	Rating         *float64  `json:"rating,omitempty"`
	ReviewCount    *int      `json:"review_count,omitempty"`
	Types          []string  `json:"types"`
	BusinessStatus string    `json:"business_status"`
	Website        string    `json:"website,omitempty"`
	OpenNow        *bool     `json:"open_now,omitempty"`
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

// NewClient creates a Places API client.
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

type searchTextRequest struct {
	TextQuery    string        `json:"textQuery"`
	LocationBias *locationBias `json:"locationBias,omitempty"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchTextResponse struct {
	Places []apiPlace `json:"places"`
}

type apiPlace struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress string   `json:"formattedAddress"`
	Location         latLng   `json:"location"`
	Rating           *float64 `json:"rating"`
	UserRatingCount  *int     `json:"userRatingCount"`
	Types            []string `json:"types"`
	BusinessStatus   string   `json:"businessStatus"`
	WebsiteURI       string   `json:"websiteUri"`
	CurrentOpening   *struct {
		OpenNow bool `json:"openNow"`
	} `json:"currentOpeningHours"`
}

// placesFieldMask limits the response to the fields scoring consumes.
const placesFieldMask = "places.id,places.displayName,places.formattedAddress,places.location," +
	"places.rating,places.userRatingCount,places.types,places.businessStatus,places.websiteUri," +
	"places.currentOpeningHours.openNow"

// Search implements Client.
func (c *httpClient) Search(ctx context.Context, center geo.Point, radiusMeters float64, keywords []string) ([]Listing, error) {
	// Places caps circle radius at 50km.
	if radiusMeters > 50_000 {
		radiusMeters = 50_000
	}

	var all []Listing
	for _, kw := range keywords {
		listings, err := c.searchOne(ctx, center, radiusMeters, kw)
		if err != nil {
			return nil, eris.Wrapf(err, "places: search %q", kw)
		}
		all = append(all, listings...)
	}
	return all, nil
}

func (c *httpClient) searchOne(ctx context.Context, center geo.Point, radiusMeters float64, keyword string) ([]Listing, error) {
	body, err := json.Marshal(searchTextRequest{
		TextQuery: keyword,
		LocationBias: &locationBias{
			Circle: circle{
				Center: latLng{Latitude: center.Lat, Longitude: center.Lng},
				Radius: radiusMeters,
			},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "marshal request")
	}

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]Listing, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Goog-Api-Key", c.apiKey)
		req.Header.Set("X-Goog-FieldMask", placesFieldMask)

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

		var parsed searchTextResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, eris.Wrap(err, "parse response")
		}

		listings := make([]Listing, 0, len(parsed.Places))
		for _, p := range parsed.Places {
			l := Listing{
				ID:             p.ID,
				Name:           p.DisplayName.Text,
				Address:        p.FormattedAddress,
				Location:       geo.Point{Lat: p.Location.Latitude, Lng: p.Location.Longitude},
				Rating:         p.Rating,
				ReviewCount:    p.UserRatingCount,
				Types:          p.Types,
				BusinessStatus: p.BusinessStatus,
				Website:        p.WebsiteURI,
			}
			if p.CurrentOpening != nil {
				open := p.CurrentOpening.OpenNow
				l.OpenNow = &open
			}
			listings = append(listings, l)
		}
		return listings, nil
	})
}
