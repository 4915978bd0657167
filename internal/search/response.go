package search

import (
	"time"

	"github.com/sells-group/leadscout/internal/cluster"
	"github.com/sells-group/leadscout/internal/scoring"
	"github.com/sells-group/leadscout/pkg/permits"
	"github.com/sells-group/leadscout/pkg/weather"
)

// Payload is the cacheable portion of a search response. Two cache hits on
// the same key return byte-identical payloads.
type Payload struct {
	Leads    []scoring.Lead      `json:"leads"`
	Clusters []cluster.Cluster   `json:"clusters,omitempty"`
	Storms   []weather.StormEvent `json:"storms,omitempty"`
	Permits  []permits.Permit    `json:"permits,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Meta carries the per-request envelope around a payload.
type Meta struct {
	RequestID string `json:"request_id"`
	Count     int    `json:"count"`
	FromCache bool   `json:"from_cache"`
	Remaining int    `json:"remaining"`
}

// Response is the full result of one search.
type Response struct {
	Payload Payload `json:"payload"`
	Meta    Meta    `json:"meta"`
}

// Points flattens the response into renderable map markers: cluster
// centroids plus every lead.
func (r *Response) Points() []cluster.MapPoint {
	res := cluster.Result{Clusters: r.Payload.Clusters}
	pts := res.Points()
	seen := make(map[string]bool, len(pts))
	for _, p := range pts {
		if p.Lead != nil {
			seen[p.Lead.ID] = true
		}
	}
	for i := range r.Payload.Leads {
		l := &r.Payload.Leads[i]
		if !seen[l.ID] {
			pts = append(pts, cluster.MapPoint{Type: "lead", Location: l.Location, Lead: l})
		}
	}
	return pts
}
