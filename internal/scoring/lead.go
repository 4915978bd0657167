// Package scoring turns raw provider records into ranked leads. All scoring
// functions are pure: one record in, one lead out, no I/O and no shared state.
package scoring

import (
	"math"
	"time"

	"github.com/sells-group/leadscout/internal/geo"
)

// Kind distinguishes the scoring strategy that produced a lead.
type Kind string

const (
	KindCommercial  Kind = "commercial"
	KindResidential Kind = "residential"
	KindPhotoSpot   Kind = "photo_spot"
)

// Lead is one ranked candidate.
type Lead struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Address  string    `json:"address,omitempty"`
	Location geo.Point `json:"location"`

	Score         float64  `json:"score"`
	Trigger       string   `json:"trigger"`
	Reasons       []string `json:"reasons"`
	Industry      string   `json:"industry"`
	Kind          Kind     `json:"kind"`
	DistanceMiles float64  `json:"distance_miles"`

	// Commercial attributes.
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`
	Website     string   `json:"website,omitempty"`

	// Residential attributes.
	MedianIncome     *float64 `json:"median_income,omitempty"`
	OwnerOccupiedPct *float64 `json:"owner_occupied_pct,omitempty"`
	PropertyAge      *int     `json:"property_age,omitempty"`
	HasStorm         bool     `json:"has_storm,omitempty"`
	HasPermit        bool     `json:"has_permit,omitempty"`
}

// Params are the caller-supplied search parameters every scorer receives.
type Params struct {
	Center       geo.Point
	RadiusMeters float64
	Industry     string

	// Filters gate the place-based heuristic bonuses.
	Filters PlaceFilters

	// Now anchors age and recency math; the zero value means time.Now().
	Now time.Time
}

// PlaceFilters toggle the independent place-based scoring heuristics.
type PlaceFilters struct {
	LowRating     bool `json:"low_rating"`
	WeakPresence  bool `json:"weak_presence"`
	LowReviews    bool `json:"low_reviews"`
	IndustryMatch bool `json:"industry_match"`
}

// AllPlaceFilters enables every place-based heuristic.
func AllPlaceFilters() PlaceFilters {
	return PlaceFilters{LowRating: true, WeakPresence: true, LowReviews: true, IndustryMatch: true}
}

func (p Params) now() time.Time {
	if p.Now.IsZero() {
		return time.Now().UTC()
	}
	return p.Now
}

// genericReason is the fall-back justification used when no heuristic fired.
const genericReason = "Matches the search area and industry profile"

// clip bounds score to [lo, hi] and rounds to one decimal.
func clip(score, lo, hi float64) float64 {
	if score < lo {
		score = lo
	}
	if score > hi {
		score = hi
	}
	return math.Round(score*10) / 10
}
