package scoring

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/profile"
)

// Listing is a normalized business-listing record from the listing provider.
type Listing struct {
	ID             string
	Name           string
	Address        string
	Location       geo.Point
	Rating         *float64
	ReviewCount    *int
	Types          []string
	BusinessStatus string
	Website        string
	OpenNow        *bool
}

const (
	placeBaseScore = 3.0

	lowRatingThreshold = 3.5
	lowReviewThreshold = 10

	lowRatingBonus     = 2.5
	weakPresenceBonus  = 1.5
	lowReviewsBonus    = 1.5
	industryMatchBonus = 0.8

	// maxDistanceBonus applies at the search center and decays linearly to
	// zero at the edge of the radius.
	maxDistanceBonus = 1.2

	// venueBoost is the photographer-variant bump for strong venue matches.
	venueBoost = 1.5
)

// ScorePlace scores one commercial listing against the caller's filters.
// The score starts at a fixed base and accumulates independently-gated
// heuristic bonuses, clipped to [0,10].
func ScorePlace(l Listing, params Params) Lead {
	score := placeBaseScore
	var reasons []string
	trigger := ""

	// Heuristics in trigger-precedence order, lowest rating first.
	if params.Filters.LowRating && l.Rating != nil && *l.Rating < lowRatingThreshold {
		score += lowRatingBonus
		reasons = append(reasons, fmt.Sprintf("Rated %.1f, below the %.1f reputation threshold", *l.Rating, lowRatingThreshold))
		if trigger == "" {
			trigger = "low_rating"
		}
	}
	if params.Filters.WeakPresence && l.Website == "" {
		score += weakPresenceBonus
		reasons = append(reasons, "No website found, weak online presence")
		if trigger == "" {
			trigger = "weak_presence"
		}
	}
	if params.Filters.LowReviews && l.ReviewCount != nil && *l.ReviewCount < lowReviewThreshold {
		score += lowReviewsBonus
		reasons = append(reasons, fmt.Sprintf("Only %d reviews, low review volume", *l.ReviewCount))
		if trigger == "" {
			trigger = "low_reviews"
		}
	}
	if params.Filters.IndustryMatch {
		score += industryMatchBonus
		if trigger == "" {
			trigger = "industry_match"
		}
	}

	dist := geo.DistanceMeters(params.Center, l.Location)
	score += distanceBonus(dist, params.RadiusMeters)

	if trigger == "" {
		trigger = "industry_match"
	}
	if len(reasons) == 0 {
		reasons = []string{genericReason}
	}

	return Lead{
		ID:            l.ID,
		Name:          l.Name,
		Address:       l.Address,
		Location:      l.Location,
		Score:         clip(score, 0, 10),
		Trigger:       trigger,
		Reasons:       reasons,
		Industry:      params.Industry,
		Kind:          KindCommercial,
		DistanceMiles: geo.MetersToMiles(dist),
		Rating:        l.Rating,
		ReviewCount:   l.ReviewCount,
		Website:       l.Website,
	}
}

// ScorePlaceForNiche scores a commercial listing for a niche vertical. It
// runs the standard place heuristics, then boosts listings whose name or
// types strongly match the niche's venue keywords, overriding the trigger
// with a venue label.
func ScorePlaceForNiche(l Listing, niche profile.NicheProfile, params Params) Lead {
	lead := ScorePlace(l, params)

	hits := venueKeywordHits(l, niche.VenueKeywords)
	if hits >= 2 {
		lead.Score = clip(lead.Score+venueBoost, 0, 10)
		lead.Trigger = "venue"
		lead.Reasons = append([]string{fmt.Sprintf("Reads as an event venue (%d venue signals in name/type)", hits)}, lead.Reasons...)
	}
	return lead
}

// distanceBonus decays linearly from maxDistanceBonus at the center to zero
// at the radius edge.
func distanceBonus(distMeters, radiusMeters float64) float64 {
	if radiusMeters <= 0 {
		return 0
	}
	frac := 1 - distMeters/radiusMeters
	if frac < 0 {
		frac = 0
	}
	return maxDistanceBonus * frac
}

func venueKeywordHits(l Listing, keywords []string) int {
	haystack := strings.ToLower(l.Name)
	for _, t := range l.Types {
		haystack += " " + strings.ToLower(t)
	}
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			hits++
		}
	}
	return hits
}
