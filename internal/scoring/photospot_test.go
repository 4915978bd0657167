package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/profile"
)

func photoNiche(t *testing.T) profile.NicheProfile {
	t.Helper()
	reg, err := profile.NewRegistry()
	require.NoError(t, err)
	return reg.NicheFor("photographer")
}

func photoParams() Params {
	return Params{
		Center:       testCenter,
		RadiusMeters: geo.MilesToMeters(10),
		Industry:     "photographer",
	}
}

func TestScorePhotoSpotWeddingVenue(t *testing.T) {
	l := Listing{
		ID:       "s1",
		Name:     "Mercury Hall Wedding & Event Venue",
		Address:  "615 Cardinal Ln, Austin, TX",
		Location: testCenter,
		Rating:   f64(4.8),
		Types:    []string{"event_venue"},
	}

	lead := ScorePhotoSpot(l, photoNiche(t), photoParams())

	// Name and type carry hall/wedding/event/venue: a top venue match.
	assert.Equal(t, "venue", lead.Trigger)
	assert.Equal(t, KindPhotoSpot, lead.Kind)
	assert.Greater(t, lead.Score, 7.0)
	assert.Equal(t, "615 Cardinal Ln, Austin, TX", lead.Address)

	joined := ""
	for _, r := range lead.Reasons {
		joined += r + "\n"
	}
	assert.Contains(t, joined, "event-venue signals")
	assert.Contains(t, joined, "4.8")
}

func TestScorePhotoSpotPublicPark(t *testing.T) {
	l := Listing{
		ID:       "s2",
		Name:     "Riverside Park Overlook",
		Location: testCenter,
		Rating:   f64(4.6),
		Types:    []string{"park", "tourist_attraction"},
		OpenNow:  b(true),
	}

	lead := ScorePhotoSpot(l, photoNiche(t), photoParams())

	assert.Greater(t, lead.Score, 6.0)
	joined := ""
	for _, r := range lead.Reasons {
		joined += r + "\n"
	}
	assert.Contains(t, joined, "backdrop signals")
	assert.Contains(t, joined, "currently open")
}

func TestScorePhotoSpotAdditivePhotoKeywords(t *testing.T) {
	niche := photoNiche(t)
	params := photoParams()

	one := ScorePhotoSpot(Listing{ID: "a", Name: "Old Mill Trail", Location: testCenter}, niche, params)
	three := ScorePhotoSpot(Listing{ID: "b", Name: "Historic Downtown Warehouse Mural", Location: testCenter}, niche, params)

	assert.Greater(t, three.Score, one.Score)
}

func TestScorePhotoSpotPlainStorefront(t *testing.T) {
	l := Listing{
		ID:       "s3",
		Name:     "Quick Copy Print Shop",
		Location: testCenter,
		Rating:   f64(2.5),
		Types:    []string{"store"},
	}

	lead := ScorePhotoSpot(l, photoNiche(t), photoParams())

	// Nothing fires: low venue floor, low rating tier, not accessible.
	assert.Less(t, lead.Score, 5.5)
	assert.GreaterOrEqual(t, lead.Score, 1.0)
}

func TestScorePhotoSpotNilRatingIsNeutral(t *testing.T) {
	niche := photoNiche(t)
	params := photoParams()

	unknown := ScorePhotoSpot(Listing{ID: "a", Name: "Spot", Location: testCenter}, niche, params)
	bad := ScorePhotoSpot(Listing{ID: "b", Name: "Spot", Location: testCenter, Rating: f64(2.0)}, niche, params)

	assert.Greater(t, unknown.Score, bad.Score)
}

func TestScorePhotoSpotAccessibilityTiers(t *testing.T) {
	niche := photoNiche(t)
	params := photoParams()

	private := ScorePhotoSpot(Listing{ID: "a", Name: "Spot", Location: testCenter, Types: []string{"store"}}, niche, params)
	public := ScorePhotoSpot(Listing{ID: "b", Name: "Spot", Location: testCenter, Types: []string{"museum"}}, niche, params)
	open := ScorePhotoSpot(Listing{ID: "c", Name: "Spot", Location: testCenter, Types: []string{"museum"}, OpenNow: b(true)}, niche, params)

	assert.Greater(t, public.Score, private.Score)
	assert.Greater(t, open.Score, public.Score)
}
