// Package geo provides the spatial math shared by scoring, clustering, and
// the cache key: haversine distances, degree conversions, and grid bucketing.
package geo

import "math"

// DegreesPerKM is an approximate conversion factor for latitude degrees to
// kilometers. At mid-latitudes, 1 degree of latitude is approximately 111 km.
const DegreesPerKM = 1.0 / 111.0

const (
	earthRadiusMeters = 6_371_000.0
	metersPerMile     = 1609.344
)

// Point is a WGS-84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceMeters returns the haversine distance between two points in meters.
func DistanceMeters(a, b Point) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// DistanceMiles returns the haversine distance between two points in miles.
func DistanceMiles(a, b Point) float64 {
	return DistanceMeters(a, b) / metersPerMile
}

// MilesToMeters converts miles to meters.
func MilesToMeters(mi float64) float64 { return mi * metersPerMile }

// MetersToMiles converts meters to miles.
func MetersToMiles(m float64) float64 { return m / metersPerMile }

// CellID identifies one cell of a square lat/lng grid.
type CellID struct {
	Row int
	Col int
}

// CellFor buckets a point into the square grid whose cells have edges of
// cellKM kilometers. Longitude columns are not corrected for latitude
// convergence; cells narrow slightly toward the poles, which is acceptable
// for neighborhood-scale bucketing.
func CellFor(p Point, cellKM float64) CellID {
	cellDeg := cellKM * DegreesPerKM
	return CellID{
		Row: int(math.Floor(p.Lat / cellDeg)),
		Col: int(math.Floor(p.Lng / cellDeg)),
	}
}

// ValidLat reports whether lat is a usable WGS-84 latitude.
func ValidLat(lat float64) bool { return lat >= -90 && lat <= 90 && !math.IsNaN(lat) }

// ValidLng reports whether lng is a usable WGS-84 longitude.
func ValidLng(lng float64) bool { return lng >= -180 && lng <= 180 && !math.IsNaN(lng) }
