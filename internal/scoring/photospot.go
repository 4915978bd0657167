package scoring

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/profile"
)

// ScorePhotoSpot scores a listing as a photography location for the
// photographer niche. Same weighted-subscore shape as residential scoring,
// with niche-specific signals, clipped to [1,10].
func ScorePhotoSpot(l Listing, niche profile.NicheProfile, params Params) Lead {
	dist := geo.DistanceMiles(params.Center, l.Location)

	subs := []subscore{
		venueSubscore(l, niche),
		photoFriendlySubscore(l, niche),
		ratingSubscore(l, niche),
		accessibilitySubscore(l, niche),
		distanceSubscore(dist, geo.MetersToMiles(params.RadiusMeters), niche.Weights.Distance),
	}

	var total float64
	var reasons []string
	best := subs[0]
	for _, s := range subs {
		total += s.contribution()
		if s.reason != "" {
			reasons = append(reasons, s.reason)
		}
		if s.contribution() > best.contribution() {
			best = s
		}
	}
	if len(reasons) == 0 {
		reasons = []string{genericReason}
	}

	return Lead{
		ID:            l.ID,
		Name:          l.Name,
		Address:       l.Address,
		Location:      l.Location,
		Score:         clip(total, 1, 10),
		Trigger:       best.name,
		Reasons:       reasons,
		Industry:      niche.ID,
		Kind:          KindPhotoSpot,
		DistanceMiles: dist,
		Rating:        l.Rating,
		ReviewCount:   l.ReviewCount,
		Website:       l.Website,
	}
}

func venueSubscore(l Listing, niche profile.NicheProfile) subscore {
	s := subscore{name: "venue", weight: niche.Weights.Venue}
	hits := venueKeywordHits(l, niche.VenueKeywords)
	switch {
	case hits >= 3:
		s.value = 10
	case hits >= 1:
		s.value = 8
	default:
		s.value = 4
	}
	if hits >= 1 {
		s.reason = fmt.Sprintf("Matches %d event-venue signals", hits)
	}
	return s
}

// photoFriendlySubscore is additive: each outdoor/industrial/urban keyword
// raises the score from a low floor, capped at 10.
func photoFriendlySubscore(l Listing, niche profile.NicheProfile) subscore {
	s := subscore{name: "photo_friendly", weight: niche.Weights.PhotoFriendly}
	hits := venueKeywordHits(l, niche.PhotoKeywords)
	value := 2.0 + 2.5*float64(hits)
	if value > 10 {
		value = 10
	}
	s.value = value
	if hits >= 1 {
		s.reason = fmt.Sprintf("Photogenic setting (%d backdrop signals)", hits)
	}
	return s
}

func ratingSubscore(l Listing, niche profile.NicheProfile) subscore {
	s := subscore{name: "rating", value: neutralSubscore, weight: niche.Weights.Rating}
	if l.Rating == nil {
		return s
	}
	switch r := *l.Rating; {
	case r >= 4.5:
		s.value = 10
	case r >= 4.0:
		s.value = 8
	case r >= 3.0:
		s.value = 6
	default:
		s.value = 4
	}
	if s.value >= 8 {
		s.reason = fmt.Sprintf("Visitors rate this spot %.1f", *l.Rating)
	}
	return s
}

func accessibilitySubscore(l Listing, niche profile.NicheProfile) subscore {
	s := subscore{name: "accessibility", value: 4, weight: niche.Weights.Accessibility}
	public := false
	for _, t := range l.Types {
		for _, at := range niche.AccessibleTypes {
			if strings.EqualFold(t, at) {
				public = true
			}
		}
	}
	if !public {
		return s
	}
	s.value = 8
	s.reason = "Publicly accessible location"
	if l.OpenNow != nil && *l.OpenNow {
		s.value = 10
		s.reason = "Publicly accessible and currently open"
	}
	return s
}
