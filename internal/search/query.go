// Package search orchestrates one lead search: quota check, cache lookup,
// provider fan-out, scoring, clustering, and persistence.
package search

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/scoring"
)

// Query is one caller-issued lead search.
type Query struct {
	Tenant      string               `json:"tenant"`
	Center      geo.Point            `json:"center"`
	RadiusMiles float64              `json:"radius_miles"`
	Industry    string               `json:"industry"`
	Filters     scoring.PlaceFilters `json:"filters"`

	// Keywords override the industry-derived listing queries.
	Keywords []string `json:"keywords,omitempty"`
}

// ValidationError reports a query rejected before any provider call.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("search: invalid query: %s %s", e.Field, e.Msg)
}

// Validate rejects malformed queries up front. Validation failures are never
// retried and never reach a provider.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Tenant) == "" {
		return eris.Wrap(&ValidationError{Field: "tenant", Msg: "is required"}, "search: validate")
	}
	if !geo.ValidLat(q.Center.Lat) {
		return eris.Wrap(&ValidationError{Field: "lat", Msg: "must be within [-90, 90]"}, "search: validate")
	}
	if !geo.ValidLng(q.Center.Lng) {
		return eris.Wrap(&ValidationError{Field: "lng", Msg: "must be within [-180, 180]"}, "search: validate")
	}
	if q.RadiusMiles <= 0 {
		return eris.Wrap(&ValidationError{Field: "radius", Msg: "must be positive"}, "search: validate")
	}
	if strings.TrimSpace(q.Industry) == "" {
		return eris.Wrap(&ValidationError{Field: "industry", Msg: "is required"}, "search: validate")
	}
	return nil
}
