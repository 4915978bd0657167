// Package cluster groups residential leads into neighborhood clusters via
// fixed-size spatial grid bucketing. Clustering is deterministic: identical
// input lead sets always produce identical assignment and statistics.
package cluster

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/scoring"
)

const (
	// DefaultCellKM is the grid-cell edge used for bucketing (~800 m).
	DefaultCellKM = 0.8

	// DefaultMinClusterSize is the member count a cell needs to seed a cluster.
	DefaultMinClusterSize = 3

	// mergeRadiusKM is how far an outlier may sit from a qualifying cluster
	// centroid and still be merged into it (~1.5 km).
	mergeRadiusKM = 1.5
)

// Options tune the grid clustering pass. Zero values take the defaults.
type Options struct {
	CellKM         float64
	MinClusterSize int
}

func (o Options) withDefaults() Options {
	if o.CellKM <= 0 {
		o.CellKM = DefaultCellKM
	}
	if o.MinClusterSize <= 0 {
		o.MinClusterSize = DefaultMinClusterSize
	}
	return o
}

// Bounds is a geographic bounding rectangle.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Cluster is an aggregate over spatially co-located residential leads.
type Cluster struct {
	ID       string         `json:"id"`
	Centroid geo.Point      `json:"centroid"`
	Bounds   Bounds         `json:"bounds"`
	Leads    []scoring.Lead `json:"leads"` // sorted by descending score

	PropertyCount       int      `json:"property_count"`
	AvgScore            float64  `json:"avg_score"`
	AvgPropertyAge      float64  `json:"avg_property_age"`
	AvgMedianIncome     float64  `json:"avg_median_income"`
	AvgOwnerOccupiedPct float64  `json:"avg_owner_occupied_pct"`
	StormExposurePct    float64  `json:"storm_exposure_pct"`
	PermitActivityPct   float64  `json:"permit_activity_pct"`
	TopReasons          []string `json:"top_reasons"`
}

// Result holds the clustering output: qualifying clusters sorted by
// descending average score, plus leads that could not be clustered.
type Result struct {
	Clusters    []Cluster      `json:"clusters"`
	Unclustered []scoring.Lead `json:"unclustered"`
}

var enPrinter = message.NewPrinter(language.English)

// Group buckets residential leads into grid cells, promotes cells that reach
// the minimum cluster size, merges nearby outliers, and computes aggregate
// statistics per cluster.
func Group(leads []scoring.Lead, opts Options) Result {
	opts = opts.withDefaults()

	cells := make(map[geo.CellID][]scoring.Lead)
	for _, l := range leads {
		id := geo.CellFor(l.Location, opts.CellKM)
		cells[id] = append(cells[id], l)
	}

	// Stable cell ordering keeps cluster ids and merge outcomes deterministic.
	ids := make([]geo.CellID, 0, len(cells))
	for id := range cells {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Row != ids[j].Row {
			return ids[i].Row < ids[j].Row
		}
		return ids[i].Col < ids[j].Col
	})

	type seed struct {
		cell     geo.CellID
		members  []scoring.Lead
		centroid geo.Point
	}
	var seeds []seed
	var outliers []scoring.Lead
	for _, id := range ids {
		members := cells[id]
		if len(members) >= opts.MinClusterSize {
			seeds = append(seeds, seed{cell: id, members: members, centroid: centroidOf(members)})
		} else {
			outliers = append(outliers, members...)
		}
	}

	// Merge outliers into the nearest qualifying centroid when close enough.
	var unclustered []scoring.Lead
	mergeMeters := mergeRadiusKM * 1000
	for _, l := range outliers {
		bestIdx := -1
		bestDist := math.MaxFloat64
		for i := range seeds {
			d := geo.DistanceMeters(l.Location, seeds[i].centroid)
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		if bestIdx >= 0 && bestDist <= mergeMeters {
			seeds[bestIdx].members = append(seeds[bestIdx].members, l)
		} else {
			unclustered = append(unclustered, l)
		}
	}

	clusters := make([]Cluster, 0, len(seeds))
	for i, s := range seeds {
		c := build(fmt.Sprintf("cluster-%d", i+1), s.members)
		clusters = append(clusters, c)
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].AvgScore > clusters[j].AvgScore
	})

	return Result{Clusters: clusters, Unclustered: unclustered}
}

func build(id string, members []scoring.Lead) Cluster {
	sortLeads(members)

	c := Cluster{
		ID:            id,
		Leads:         members,
		PropertyCount: len(members),
		Centroid:      centroidOf(members),
		Bounds:        boundsOf(members),
	}

	var scoreSum float64
	var ageSum, ageN float64
	var incomeSum, incomeN float64
	var ownerSum, ownerN float64
	var stormN, permitN int
	for _, l := range members {
		scoreSum += l.Score
		if l.PropertyAge != nil {
			ageSum += float64(*l.PropertyAge)
			ageN++
		}
		if l.MedianIncome != nil {
			incomeSum += *l.MedianIncome
			incomeN++
		}
		if l.OwnerOccupiedPct != nil {
			ownerSum += *l.OwnerOccupiedPct
			ownerN++
		}
		if l.HasStorm {
			stormN++
		}
		if l.HasPermit {
			permitN++
		}
	}

	n := float64(len(members))
	c.AvgScore = round1(scoreSum / n)
	if ageN > 0 {
		c.AvgPropertyAge = round1(ageSum / ageN)
	}
	if incomeN > 0 {
		c.AvgMedianIncome = math.Round(incomeSum / incomeN)
	}
	if ownerN > 0 {
		c.AvgOwnerOccupiedPct = round1(ownerSum / ownerN)
	}
	c.StormExposurePct = round1(100 * float64(stormN) / n)
	c.PermitActivityPct = round1(100 * float64(permitN) / n)
	c.TopReasons = narrate(c)

	return c
}

// sortLeads orders members by descending score with id as a stable tie-break.
func sortLeads(members []scoring.Lead) {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}
		return members[i].ID < members[j].ID
	})
}

// narrate builds short templated reason lines from the cluster aggregates.
func narrate(c Cluster) []string {
	reasons := []string{
		fmt.Sprintf("%d properties averaging a %.1f lead score", c.PropertyCount, c.AvgScore),
	}
	if c.StormExposurePct >= 30 {
		reasons = append(reasons, fmt.Sprintf("%.0f%% of properties show recent storm exposure", c.StormExposurePct))
	}
	if c.PermitActivityPct >= 30 {
		reasons = append(reasons, fmt.Sprintf("%.0f%% of properties show permit activity", c.PermitActivityPct))
	}
	if c.AvgPropertyAge > 0 {
		reasons = append(reasons, fmt.Sprintf("Homes average %.0f years old", c.AvgPropertyAge))
	}
	if c.AvgMedianIncome > 0 {
		reasons = append(reasons, enPrinter.Sprintf("Median income averages $%d", int(c.AvgMedianIncome)))
	}
	if len(reasons) > 4 {
		reasons = reasons[:4]
	}
	return reasons
}

func centroidOf(members []scoring.Lead) geo.Point {
	var lat, lng float64
	for _, l := range members {
		lat += l.Location.Lat
		lng += l.Location.Lng
	}
	n := float64(len(members))
	return geo.Point{Lat: lat / n, Lng: lng / n}
}

func boundsOf(members []scoring.Lead) Bounds {
	b := Bounds{MinLat: math.MaxFloat64, MinLng: math.MaxFloat64, MaxLat: -math.MaxFloat64, MaxLng: -math.MaxFloat64}
	for _, l := range members {
		b.MinLat = math.Min(b.MinLat, l.Location.Lat)
		b.MinLng = math.Min(b.MinLng, l.Location.Lng)
		b.MaxLat = math.Max(b.MaxLat, l.Location.Lat)
		b.MaxLng = math.Max(b.MaxLng, l.Location.Lng)
	}
	return b
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
