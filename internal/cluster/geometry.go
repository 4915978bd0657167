package cluster

import (
	"github.com/twpayne/go-geom"

	gg "github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/scoring"
)

// polygonPadDeg pads cluster bounding polygons by a small margin (~100 m)
// so rendered outlines do not clip edge members.
const polygonPadDeg = 0.001

// Polygon returns the cluster's padded bounding rectangle as a geometry.
func (c Cluster) Polygon() *geom.Polygon {
	minLng := c.Bounds.MinLng - polygonPadDeg
	minLat := c.Bounds.MinLat - polygonPadDeg
	maxLng := c.Bounds.MaxLng + polygonPadDeg
	maxLat := c.Bounds.MaxLat + polygonPadDeg

	coords := []float64{
		minLng, minLat,
		maxLng, minLat,
		maxLng, maxLat,
		minLng, maxLat,
		minLng, minLat,
	}
	return geom.NewPolygonFlat(geom.XY, coords, []int{len(coords)}).SetSRID(4326)
}

// Polygons returns one padded bounding polygon per cluster, in cluster order.
func (r Result) Polygons() []*geom.Polygon {
	out := make([]*geom.Polygon, 0, len(r.Clusters))
	for _, c := range r.Clusters {
		out = append(out, c.Polygon())
	}
	return out
}

// MapPoint is one renderable marker: either a cluster centroid or a member lead.
type MapPoint struct {
	Type      string        `json:"type"` // "centroid" or "lead"
	Location  gg.Point      `json:"location"`
	ClusterID string        `json:"cluster_id,omitempty"`
	Lead      *scoring.Lead `json:"lead,omitempty"`
}

// Points flattens the result into a renderable point list: one centroid
// marker per cluster followed by every member lead.
func (r Result) Points() []MapPoint {
	var out []MapPoint
	for _, c := range r.Clusters {
		out = append(out, MapPoint{Type: "centroid", Location: c.Centroid, ClusterID: c.ID})
		for i := range c.Leads {
			out = append(out, MapPoint{Type: "lead", Location: c.Leads[i].Location, ClusterID: c.ID, Lead: &c.Leads[i]})
		}
	}
	for i := range r.Unclustered {
		out = append(out, MapPoint{Type: "lead", Location: r.Unclustered[i].Location, Lead: &r.Unclustered[i]})
	}
	return out
}
