package rings

import (
	"log/slog"
	"math"

	"github.com/peterstace/simplefeatures/geom"
)

// holeCutAreaEpsilon is the planar area delta (squared degrees) below
// which a boolean difference is assumed to have silently no-op'd.
// Empirical; re-derive if the geometry backend changes.
var holeCutAreaEpsilon = 0.01

// SubtractBoundary removes the origin boundary from a ring so only the
// area beyond the border remains. The difference is never allowed to
// erase the whole ring: an empty result reverts to the input, and a
// result whose area is indistinguishable from the input triggers the
// explicit hole reconstruction fallback.
func SubtractBoundary(ring, origin geom.Geometry, logger *slog.Logger) geom.Geometry {
	if origin.IsEmpty() {
		return ring
	}
	originValid := makeValid(origin)

	diff, err := geom.Difference(ring, originValid)
	if err != nil {
		warn(logger, "boundary subtraction failed, keeping full ring", "error", err)
		return ring
	}
	if diff.IsEmpty() {
		warn(logger, "boundary subtraction erased the ring, reverting")
		return ring
	}
	diff = makeValid(diff)

	areaBefore := planarArea(ring)
	areaAfter := planarArea(diff)
	if math.Abs(areaBefore-areaAfter) < holeCutAreaEpsilon && geom.Intersects(ring, originValid) {
		// The boolean engine likely failed to detect the hole. Build it
		// explicitly instead.
		warn(logger, "boundary subtraction was a no-op, reconstructing hole explicitly",
			"area_before", areaBefore, "area_after", areaAfter)
		if rebuilt, ok := explicitHoles(ring, originValid); ok {
			return makeValid(rebuilt)
		}
		return ring
	}
	return diff
}

// explicitHoles rebuilds the ring polygon with the origin's exterior
// ring(s) appended to its hole list, one hole per origin polygon part.
func explicitHoles(ring, origin geom.Geometry) (geom.Geometry, bool) {
	if ring.Type() != geom.TypePolygon {
		return geom.Geometry{}, false
	}
	p := ring.MustAsPolygon()

	rings := make([]geom.LineString, 0, p.NumInteriorRings()+2)
	rings = append(rings, p.ExteriorRing())
	for i := 0; i < p.NumInteriorRings(); i++ {
		rings = append(rings, p.InteriorRingN(i))
	}
	originParts := collectPolygons(origin)
	if len(originParts) == 0 {
		return geom.Geometry{}, false
	}
	for _, part := range originParts {
		rings = append(rings, part.ExteriorRing().Reverse())
	}
	return geom.NewPolygon(rings).AsGeometry(), true
}
