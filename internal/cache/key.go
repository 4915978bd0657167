// Package cache wraps the persistent store with the spatially-bucketed,
// fail-open search cache.
package cache

import (
	"fmt"
	"math"
	"strings"
)

// KeyVersion tags cache keys so a format change invalidates old rows
// without a sweep.
const KeyVersion = "v1"

const (
	// latLngDecimals rounds coordinates to a ~1.1 km grid: two decimal
	// places of latitude is about 1.1 km.
	latLngDecimals = 2

	// radiusBucket rounds the search radius to the nearest 5 units.
	radiusBucket = 5
)

// Key builds the deterministic cache key for a query. Precision is traded
// for hit rate: two searches in the same ~1 km cell with the same radius
// bucket and industry collide on the same key.
func Key(lat, lng, radiusMiles float64, industry string) string {
	scale := math.Pow10(latLngDecimals)
	bLat := math.Round(lat*scale) / scale
	bLng := math.Round(lng*scale) / scale
	bRadius := int(math.Round(radiusMiles/radiusBucket)) * radiusBucket
	return fmt.Sprintf("%s:%.*f:%.*f:r%d:%s",
		KeyVersion, latLngDecimals, bLat, latLngDecimals, bLng, bRadius,
		strings.ToLower(strings.TrimSpace(industry)),
	)
}
