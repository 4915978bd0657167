package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/profile"
)

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }
func b(v bool) *bool         { return &v }

var testCenter = geo.Point{Lat: 30.2672, Lng: -97.7431}

func placeParams() Params {
	return Params{
		Center:       testCenter,
		RadiusMeters: geo.MilesToMeters(10),
		Industry:     "roofing",
		Filters:      AllPlaceFilters(),
	}
}

func TestScorePlaceAllHeuristicsFire(t *testing.T) {
	l := Listing{
		ID:          "p1",
		Name:        "Shady Roofing Co",
		Address:     "100 Congress Ave, Austin, TX",
		Location:    testCenter,
		Rating:      f64(2.8),
		ReviewCount: i(3),
	}

	lead := ScorePlace(l, placeParams())

	// 3.0 + 2.5 + 1.5 + 1.5 + 0.8 + 1.2 clips at 10.
	assert.Equal(t, 10.0, lead.Score)
	assert.Equal(t, "low_rating", lead.Trigger)
	assert.Equal(t, KindCommercial, lead.Kind)
	assert.Equal(t, "100 Congress Ave, Austin, TX", lead.Address)
	assert.Len(t, lead.Reasons, 3)
	assert.Zero(t, lead.DistanceMiles)
}

func TestScorePlaceNeutralListing(t *testing.T) {
	l := Listing{
		ID:          "p2",
		Name:        "Solid Roofing",
		Location:    testCenter,
		Rating:      f64(4.6),
		ReviewCount: i(120),
		Website:     "https://solidroofing.example.com",
	}

	lead := ScorePlace(l, placeParams())

	// Base + industry match + full distance bonus.
	assert.InDelta(t, 5.0, lead.Score, 0.001)
	assert.Equal(t, "industry_match", lead.Trigger)
	assert.Equal(t, []string{genericReason}, lead.Reasons)
}

func TestScorePlaceFiltersGateBonuses(t *testing.T) {
	l := Listing{
		ID:          "p3",
		Name:        "Quiet Roofing",
		Location:    testCenter,
		Rating:      f64(2.0),
		ReviewCount: i(1),
	}

	params := placeParams()
	params.Filters = PlaceFilters{} // everything off

	lead := ScorePlace(l, params)

	// Only base + distance bonus survive.
	assert.InDelta(t, 4.2, lead.Score, 0.001)
	assert.Equal(t, "industry_match", lead.Trigger)
}

func TestScorePlaceTriggerPrecedence(t *testing.T) {
	// Rating misses the threshold; no website fires first among the rest.
	l := Listing{
		ID:          "p4",
		Name:        "Webless Roofing",
		Location:    testCenter,
		Rating:      f64(4.0),
		ReviewCount: i(5),
	}

	lead := ScorePlace(l, placeParams())
	assert.Equal(t, "weak_presence", lead.Trigger)
}

func TestScorePlaceMissingAttributesDoNotFire(t *testing.T) {
	// Nil rating and nil review count are unknown, not bad.
	l := Listing{
		ID:       "p5",
		Name:     "Unknown Roofing",
		Location: testCenter,
		Website:  "https://example.com",
	}

	lead := ScorePlace(l, placeParams())
	assert.InDelta(t, 5.0, lead.Score, 0.001)
}

func TestScorePlaceDistanceDecay(t *testing.T) {
	params := placeParams()
	near := ScorePlace(Listing{ID: "a", Location: testCenter, Website: "x"}, params)

	// ~10 miles north, at the radius edge.
	edge := geo.Point{Lat: testCenter.Lat + 0.1449, Lng: testCenter.Lng}
	far := ScorePlace(Listing{ID: "b", Location: edge, Website: "x"}, params)

	assert.Greater(t, near.Score, far.Score)
	assert.InDelta(t, maxDistanceBonus, near.Score-far.Score, 0.1)
}

func TestScorePlaceClipsToTen(t *testing.T) {
	l := Listing{
		ID:          "p6",
		Name:        "Everything Wrong Roofing",
		Location:    testCenter,
		Rating:      f64(1.0),
		ReviewCount: i(0),
	}
	lead := ScorePlace(l, placeParams())
	assert.LessOrEqual(t, lead.Score, 10.0)
}

func TestScorePlaceForNicheVenueBoost(t *testing.T) {
	reg, err := profile.NewRegistry()
	require.NoError(t, err)
	niche := reg.NicheFor("photographer")

	params := placeParams()
	params.Industry = "photographer"

	venue := Listing{
		ID:       "v1",
		Name:     "Creekside Wedding Venue & Gardens",
		Location: testCenter,
		Rating:   f64(4.8),
		Website:  "https://creekside.example.com",
		Types:    []string{"event_venue"},
	}
	lead := ScorePlaceForNiche(venue, niche, params)

	assert.Equal(t, "venue", lead.Trigger)
	assert.Contains(t, lead.Reasons[0], "event venue")

	// A single weak keyword hit does not flip the trigger.
	cafe := Listing{
		ID:       "v2",
		Name:     "Rose Gardens Cafe",
		Location: testCenter,
		Rating:   f64(4.8),
		Website:  "https://cafe.example.com",
	}
	plain := ScorePlaceForNiche(cafe, niche, params)
	assert.NotEqual(t, "venue", plain.Trigger)
	assert.Greater(t, lead.Score, plain.Score)
}
