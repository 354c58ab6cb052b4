package rings

import (
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"
)

// FixAntimeridian splits polygonal geometry that crosses the +-180
// meridian into parts with in-range, non-wrapping longitudes, returning
// a MultiPolygon when a split happens. Crossing geometry arrives in one
// of two representations: continuous coordinates that run past +-180
// (circles re-expressed around their center meridian), or wrapped
// coordinates with a longitude jump of more than 180 degrees between
// neighbors. Non-polygonal geometry and geometry clear of the meridian
// pass through untouched.
//
// This must run before emitting any polygonal geometry for external
// consumption and before any boolean op between two geometries that may
// independently cross the meridian.
//
// On degenerate input the original geometry is returned along with the
// error; callers log a warning and carry on with the unfixed geometry.
func FixAntimeridian(g geom.Geometry) (geom.Geometry, error) {
	if g.IsEmpty() {
		return g, nil
	}
	switch g.Type() {
	case geom.TypePolygon, geom.TypeMultiPolygon:
	default:
		return g, nil
	}

	coords := extractCoords(g)
	if len(coords) == 0 {
		return g, nil
	}
	minLon, maxLon := coords[0].X, coords[0].X
	for _, xy := range coords {
		if xy.X < minLon {
			minLon = xy.X
		}
		if xy.X > maxLon {
			maxLon = xy.X
		}
	}
	// Clear of the meridian: leave untouched. This also preserves holes,
	// which a needless split-and-rebuild could drop.
	if minLon > -170 && maxLon < 170 {
		return g, nil
	}
	inRange := minLon >= -180 && maxLon <= 180
	if inRange && maxLon-minLon < 180 {
		return g, nil
	}

	var fixed []geom.Polygon
	for _, p := range collectPolygons(g) {
		parts, err := splitCrossing(p)
		if err != nil {
			return g, err
		}
		fixed = append(fixed, parts...)
	}
	if len(fixed) == 0 {
		return g, fmt.Errorf("antimeridian split produced no parts")
	}
	return asPolygonal(fixed), nil
}

func splitCrossing(p geom.Polygon) ([]geom.Polygon, error) {
	if outOfRange(p) {
		return splitShifted(p)
	}
	if ringWraps(p.ExteriorRing()) {
		return splitWrapped(p)
	}
	return []geom.Polygon{p}, nil
}

func outOfRange(p geom.Polygon) bool {
	for _, xy := range polygonCoords(p) {
		if xy.X > 180 || xy.X < -180 {
			return true
		}
	}
	return false
}

// splitShifted cuts a polygon whose coordinates run continuously past
// +-180. Each out-of-range band is clipped off and translated back by a
// full turn.
func splitShifted(p geom.Polygon) ([]geom.Polygon, error) {
	g := p.AsGeometry()
	bands := []struct {
		minLon, maxLon, shift float64
	}{
		{-540, -180, 360},
		{-180, 180, 0},
		{180, 540, -360},
	}
	var parts []geom.Polygon
	for _, band := range bands {
		clip, err := geom.Intersection(g, hemisphereRect(band.minLon, band.maxLon).AsGeometry())
		if err != nil {
			return nil, fmt.Errorf("meridian clip [%.0f, %.0f]: %w", band.minLon, band.maxLon, err)
		}
		if clip.IsEmpty() {
			continue
		}
		if band.shift != 0 {
			shift := band.shift
			clip = transformCoords(clip, func(xy geom.XY) geom.XY {
				return geom.XY{X: xy.X + shift, Y: xy.Y}
			})
		}
		parts = append(parts, collectPolygons(clip)...)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("meridian clip produced no polygon parts")
	}
	return parts, nil
}

// splitWrapped cuts a polygon in wrapped representation, where the ring
// jumps between longitudes near +180 and -180. The polygon is shifted
// into continuous [0, 360) longitude space, clipped against the eastern
// and western hemispheres, and the eastern part translated back.
func splitWrapped(p geom.Polygon) ([]geom.Polygon, error) {
	shifted := transformPolygon(p, func(xy geom.XY) geom.XY {
		if xy.X < 0 {
			return geom.XY{X: xy.X + 360, Y: xy.Y}
		}
		return xy
	})

	west, err := geom.Intersection(shifted.AsGeometry(), hemisphereRect(0, 180).AsGeometry())
	if err != nil {
		return nil, fmt.Errorf("western clip: %w", err)
	}
	east, err := geom.Intersection(shifted.AsGeometry(), hemisphereRect(180, 360).AsGeometry())
	if err != nil {
		return nil, fmt.Errorf("eastern clip: %w", err)
	}
	east = transformCoords(east, func(xy geom.XY) geom.XY {
		return geom.XY{X: xy.X - 360, Y: xy.Y}
	})

	parts := append(collectPolygons(west), collectPolygons(east)...)
	if len(parts) == 0 {
		return nil, fmt.Errorf("clip produced no polygon parts")
	}
	return parts, nil
}

// ringWraps reports whether a ring is in wrapped representation, with a
// longitude jump of more than 180 degrees between neighbors. Segments
// whose endpoints both sit on the +-180 edge are traversals of that
// edge, not wraps; the world polygon and anything clipped against it
// carry such segments.
func ringWraps(ls geom.LineString) bool {
	pts := sequenceCoords(ls.Coordinates())
	for i := 0; i+1 < len(pts); i++ {
		if onMeridianEdge(pts[i].X) && onMeridianEdge(pts[i+1].X) {
			continue
		}
		if math.Abs(pts[i+1].X-pts[i].X) > 180 {
			return true
		}
	}
	return false
}

func onMeridianEdge(lon float64) bool {
	return math.Abs(math.Abs(lon)-180) < 1e-9
}

func hemisphereRect(minLon, maxLon float64) geom.Polygon {
	return geom.NewPolygon([]geom.LineString{ringFromXYs([]geom.XY{
		{X: minLon, Y: -90},
		{X: maxLon, Y: -90},
		{X: maxLon, Y: 90},
		{X: minLon, Y: 90},
	})})
}
