package rings

import (
	"math"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/vampireLibrarianMonk/orrg/internal/geodesy"
	"github.com/vampireLibrarianMonk/orrg/internal/models"
)

// DefaultSampleCap bounds the all-pairs nearest-point search. The O(n^2)
// scan over two capped coordinate sets is a deliberate accuracy versus
// cost trade-off, not something to replace with a spatial index.
const DefaultSampleCap = 100

// ClosestPoints finds the approximately nearest pair of boundary
// coordinates between two geometries under geodesic distance. Each
// coordinate set is uniformly down-sampled to sampleCap before the
// exhaustive scan.
func ClosestPoints(a, b geom.Geometry, sampleCap int) (models.GeoPoint, models.GeoPoint, float64, error) {
	if sampleCap <= 0 {
		sampleCap = DefaultSampleCap
	}
	coordsA := strideSample(extractCoords(a), sampleCap)
	coordsB := strideSample(extractCoords(b), sampleCap)
	if len(coordsA) == 0 || len(coordsB) == 0 {
		return models.GeoPoint{}, models.GeoPoint{}, 0, models.ErrEmptyOrigin
	}

	minDist := math.Inf(1)
	var bestA, bestB models.GeoPoint
	for _, xa := range coordsA {
		pa := models.GeoPoint{Latitude: xa.Y, Longitude: xa.X}
		for _, xb := range coordsB {
			pb := models.GeoPoint{Latitude: xb.Y, Longitude: xb.X}
			d, err := geodesy.Distance(pa, pb)
			if err != nil {
				return models.GeoPoint{}, models.GeoPoint{}, 0, err
			}
			if d < minDist {
				minDist = d
				bestA, bestB = pa, pb
			}
		}
	}
	return bestA, bestB, minDist, nil
}

// distanceStats is the one-sided variant used by the reverse-envelope
// pre-check: sampled min and max geodesic distance from a geometry's
// boundary coordinates to a single target.
func distanceStats(g geom.Geometry, target models.GeoPoint, sampleCap int) (minKM, maxKM float64, err error) {
	coords := extractCoords(g)
	if sampleCap > 0 && len(coords) > sampleCap {
		coords = coords[:sampleCap]
	}
	if len(coords) == 0 {
		return 0, 0, models.ErrEmptyOrigin
	}
	minKM = math.Inf(1)
	for _, xy := range coords {
		d, derr := geodesy.Distance(models.GeoPoint{Latitude: xy.Y, Longitude: xy.X}, target)
		if derr != nil {
			return 0, 0, derr
		}
		if d < minKM {
			minKM = d
		}
		if d > maxKM {
			maxKM = d
		}
	}
	return minKM, maxKM, nil
}
