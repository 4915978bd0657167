package search

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/scoring"
	"github.com/sells-group/leadscout/pkg/census"
	"github.com/sells-group/leadscout/pkg/permits"
	"github.com/sells-group/leadscout/pkg/places"
	"github.com/sells-group/leadscout/pkg/weather"
)

// permitSignalMiles is how close permit activity must sit to an area
// candidate to count as its permit signal.
const permitSignalMiles = 2.0

// dedupeListings removes duplicate listings across keyword queries by id,
// keeping first occurrence, and drops closed businesses.
func dedupeListings(in []places.Listing) []scoring.Listing {
	seen := make(map[string]bool, len(in))
	out := make([]scoring.Listing, 0, len(in))
	for _, l := range in {
		if l.ID == "" || seen[l.ID] {
			continue
		}
		if l.BusinessStatus == "CLOSED_PERMANENTLY" {
			continue
		}
		seen[l.ID] = true
		out = append(out, scoring.Listing{
			ID:             l.ID,
			Name:           l.Name,
			Address:        l.Address,
			Location:       l.Location,
			Rating:         l.Rating,
			ReviewCount:    l.ReviewCount,
			Types:          l.Types,
			BusinessStatus: l.BusinessStatus,
			Website:        l.Website,
			OpenNow:        l.OpenNow,
		})
	}
	return out
}

// buildAreas turns census tracts into residential area candidates. Tract
// statistics carry no geometry, so each candidate is anchored at a
// deterministic point inside the search radius derived from the tract id:
// the same tract in the same search always lands on the same point.
func buildAreas(stats *census.AreaStats, storms []weather.StormEvent, prms []permits.Permit, center geo.Point, radiusMiles float64) []scoring.Area {
	if stats == nil || len(stats.Tracts) == 0 {
		return nil
	}

	// Stable input order regardless of provider row order.
	tracts := make([]census.TractStat, len(stats.Tracts))
	copy(tracts, stats.Tracts)
	sort.Slice(tracts, func(i, j int) bool { return tracts[i].ID < tracts[j].ID })

	areas := make([]scoring.Area, 0, len(tracts))
	for _, t := range tracts {
		point := tractPoint(t.ID, center, radiusMiles)
		a := scoring.Area{
			ID:               "tract-" + t.ID,
			Label:            t.Name,
			Center:           point,
			MedianYearBuilt:  t.MedianYearBuilt,
			MedianIncome:     t.MedianIncome,
			OwnerOccupiedPct: t.OwnerOccupiedPct,
		}
		for _, st := range storms {
			a.Storms = append(a.Storms, scoring.StormSignal{
				Type:          st.Type,
				Severity:      st.Severity,
				DaysAgo:       st.DaysAgo,
				DistanceMiles: geo.DistanceMiles(point, st.Center),
			})
		}
		for _, p := range prms {
			if geo.DistanceMiles(point, p.Location) <= permitSignalMiles {
				a.HasPermit = true
				break
			}
		}
		areas = append(areas, a)
	}
	return areas
}

// tractPoint places a tract candidate at a stable pseudo-random point within
// 80% of the search radius, seeded from the tract id.
func tractPoint(tractID string, center geo.Point, radiusMiles float64) geo.Point {
	h := fnv.New64a()
	h.Write([]byte(tractID)) //nolint:errcheck
	rng := rand.New(rand.NewPCG(h.Sum64(), 0x5851f42d4c957f2d))

	angle := 2 * math.Pi * rng.Float64()
	distMiles := radiusMiles * 0.8 * math.Sqrt(rng.Float64())

	distDeg := distMiles * 1609.344 / 1000 * geo.DegreesPerKM
	lngScale := math.Cos(center.Lat * math.Pi / 180)
	if lngScale < 0.01 {
		lngScale = 0.01
	}
	return geo.Point{
		Lat: center.Lat + distDeg*math.Sin(angle),
		Lng: center.Lng + distDeg*math.Cos(angle)/lngScale,
	}
}
