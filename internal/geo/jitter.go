package geo

import (
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/twpayne/go-geom"
)

// JitterPolygon builds an irregular polygon of n vertices around center with
// the given base radius in meters. The vertex radii are perturbed by up to
// ±spread (a fraction of the radius) using a PRNG seeded from the center
// coordinates, so the same storm point always renders the same shape.
func JitterPolygon(center Point, radiusMeters float64, n int, spread float64) *geom.Polygon {
	if n < 3 {
		n = 8
	}
	if spread < 0 || spread >= 1 {
		spread = 0.3
	}

	rng := rand.New(rand.NewPCG(coordSeed(center), 0x9e3779b97f4a7c15))

	radiusDeg := radiusMeters / 1000 * DegreesPerKM
	lngScale := math.Cos(center.Lat * math.Pi / 180)
	if lngScale < 0.01 {
		lngScale = 0.01
	}

	coords := make([]float64, 0, (n+1)*2)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		r := radiusDeg * (1 + spread*(2*rng.Float64()-1))
		lng := center.Lng + r*math.Cos(angle)/lngScale
		lat := center.Lat + r*math.Sin(angle)
		coords = append(coords, lng, lat)
	}
	// Close the ring.
	coords = append(coords, coords[0], coords[1])

	poly := geom.NewPolygonFlat(geom.XY, coords, []int{len(coords)})
	return poly.SetSRID(4326)
}

// coordSeed derives a stable PRNG seed from a coordinate pair rounded to
// ~1 meter precision, so float noise below rendering scale cannot change
// the generated geometry.
func coordSeed(p Point) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	putF64(buf[:8], math.Round(p.Lat*1e5)/1e5)
	putF64(buf[8:], math.Round(p.Lng*1e5)/1e5)
	h.Write(buf[:]) //nolint:errcheck
	return h.Sum64()
}

func putF64(b []byte, f float64) {
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		b[i] = byte(bits >> (8 * i))
	}
}
