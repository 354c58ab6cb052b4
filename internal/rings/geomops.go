package rings

import (
	"math"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/vampireLibrarianMonk/orrg/internal/models"
)

// extractCoords collects every coordinate of a geometry: the single
// coordinate for points, all vertices for lines, and exterior plus
// interior ring vertices for polygons. Recurses into collections.
func extractCoords(g geom.Geometry) []geom.XY {
	var coords []geom.XY
	switch g.Type() {
	case geom.TypePoint:
		if xy, ok := g.MustAsPoint().XY(); ok {
			coords = append(coords, xy)
		}
	case geom.TypeLineString:
		coords = append(coords, sequenceCoords(g.MustAsLineString().Coordinates())...)
	case geom.TypePolygon:
		coords = append(coords, polygonCoords(g.MustAsPolygon())...)
	case geom.TypeMultiPoint:
		mp := g.MustAsMultiPoint()
		for i := 0; i < mp.NumPoints(); i++ {
			if xy, ok := mp.PointN(i).XY(); ok {
				coords = append(coords, xy)
			}
		}
	case geom.TypeMultiLineString:
		mls := g.MustAsMultiLineString()
		for i := 0; i < mls.NumLineStrings(); i++ {
			coords = append(coords, sequenceCoords(mls.LineStringN(i).Coordinates())...)
		}
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			coords = append(coords, polygonCoords(mp.PolygonN(i))...)
		}
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			coords = append(coords, extractCoords(gc.GeometryN(i))...)
		}
	}
	return coords
}

func polygonCoords(p geom.Polygon) []geom.XY {
	coords := sequenceCoords(p.ExteriorRing().Coordinates())
	for i := 0; i < p.NumInteriorRings(); i++ {
		coords = append(coords, sequenceCoords(p.InteriorRingN(i).Coordinates())...)
	}
	return coords
}

func sequenceCoords(seq geom.Sequence) []geom.XY {
	coords := make([]geom.XY, 0, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		coords = append(coords, seq.GetXY(i))
	}
	return coords
}

// countVertices returns the total vertex count of a geometry.
func countVertices(g geom.Geometry) int {
	return len(extractCoords(g))
}

// boundsOf computes the geographic bounding box of a geometry by a
// component-wise coordinate scan.
func boundsOf(g geom.Geometry) models.BBox {
	bbox := models.EmptyBBox()
	for _, xy := range extractCoords(g) {
		bbox = bbox.ExtendPoint(xy.X, xy.Y)
	}
	return bbox
}

// ringFromXYs builds a closed LineString from coordinates, closing the
// ring if the first and last points differ.
func ringFromXYs(pts []geom.XY) geom.LineString {
	if len(pts) > 0 && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	floats := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		floats = append(floats, p.X, p.Y)
	}
	return geom.NewLineString(geom.NewSequence(floats, geom.DimXY))
}

// makeValid returns the geometry unchanged if it validates, otherwise
// attempts the zero-width self-union repair. If the repair itself fails
// the original geometry is returned; callers treat that as a recovered
// degeneracy, not an error.
func makeValid(g geom.Geometry) geom.Geometry {
	if g.Validate() == nil {
		return g
	}
	repaired, err := geom.Union(g, g)
	if err != nil || repaired.IsEmpty() {
		return g
	}
	return repaired
}

// planarArea computes the absolute planar area (in squared degrees) of
// polygonal geometry. Non-areal geometry has zero area. Uses the
// shoelace formula directly so the figure matches the hole-cut epsilon
// semantics regardless of library area conventions.
func planarArea(g geom.Geometry) float64 {
	switch g.Type() {
	case geom.TypePolygon:
		return polygonPlanarArea(g.MustAsPolygon())
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		var total float64
		for i := 0; i < mp.NumPolygons(); i++ {
			total += polygonPlanarArea(mp.PolygonN(i))
		}
		return total
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		var total float64
		for i := 0; i < gc.NumGeometries(); i++ {
			total += planarArea(gc.GeometryN(i))
		}
		return total
	default:
		return 0
	}
}

func polygonPlanarArea(p geom.Polygon) float64 {
	area := math.Abs(shoelace(p.ExteriorRing().Coordinates()))
	for i := 0; i < p.NumInteriorRings(); i++ {
		area -= math.Abs(shoelace(p.InteriorRingN(i).Coordinates()))
	}
	if area < 0 {
		return 0
	}
	return area
}

func shoelace(seq geom.Sequence) float64 {
	var sum float64
	n := seq.Length()
	for i := 0; i+1 < n; i++ {
		a := seq.GetXY(i)
		b := seq.GetXY(i + 1)
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// transformCoords rebuilds a geometry with every coordinate mapped
// through fn. Only the kinds the engine produces are supported; other
// kinds are returned unchanged.
func transformCoords(g geom.Geometry, fn func(geom.XY) geom.XY) geom.Geometry {
	switch g.Type() {
	case geom.TypePoint:
		if xy, ok := g.MustAsPoint().XY(); ok {
			return fn(xy).AsPoint().AsGeometry()
		}
		return g
	case geom.TypeLineString:
		return transformLine(g.MustAsLineString(), fn).AsGeometry()
	case geom.TypePolygon:
		return transformPolygon(g.MustAsPolygon(), fn).AsGeometry()
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		polys := make([]geom.Polygon, 0, mp.NumPolygons())
		for i := 0; i < mp.NumPolygons(); i++ {
			polys = append(polys, transformPolygon(mp.PolygonN(i), fn))
		}
		return geom.NewMultiPolygon(polys).AsGeometry()
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		parts := make([]geom.Geometry, 0, gc.NumGeometries())
		for i := 0; i < gc.NumGeometries(); i++ {
			parts = append(parts, transformCoords(gc.GeometryN(i), fn))
		}
		return geom.NewGeometryCollection(parts).AsGeometry()
	default:
		return g
	}
}

func transformLine(ls geom.LineString, fn func(geom.XY) geom.XY) geom.LineString {
	seq := ls.Coordinates()
	floats := make([]float64, 0, seq.Length()*2)
	for i := 0; i < seq.Length(); i++ {
		xy := fn(seq.GetXY(i))
		floats = append(floats, xy.X, xy.Y)
	}
	return geom.NewLineString(geom.NewSequence(floats, geom.DimXY))
}

func transformPolygon(p geom.Polygon, fn func(geom.XY) geom.XY) geom.Polygon {
	rings := make([]geom.LineString, 0, p.NumInteriorRings()+1)
	rings = append(rings, transformLine(p.ExteriorRing(), fn))
	for i := 0; i < p.NumInteriorRings(); i++ {
		rings = append(rings, transformLine(p.InteriorRingN(i), fn))
	}
	return geom.NewPolygon(rings)
}

// collectPolygons flattens any geometry into its polygonal parts.
func collectPolygons(g geom.Geometry) []geom.Polygon {
	var polys []geom.Polygon
	switch g.Type() {
	case geom.TypePolygon:
		polys = append(polys, g.MustAsPolygon())
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			polys = append(polys, mp.PolygonN(i))
		}
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			polys = append(polys, collectPolygons(gc.GeometryN(i))...)
		}
	}
	return polys
}

// asPolygonal wraps polygon parts back into a Polygon or MultiPolygon.
func asPolygonal(polys []geom.Polygon) geom.Geometry {
	switch len(polys) {
	case 0:
		return geom.MultiPolygon{}.AsGeometry()
	case 1:
		return polys[0].AsGeometry()
	default:
		return geom.NewMultiPolygon(polys).AsGeometry()
	}
}

// geometryKind maps a geometry to its layer tag. Exhaustive over the
// kinds the engine emits.
func geometryKind(g geom.Geometry) models.GeometryKind {
	switch g.Type() {
	case geom.TypePoint:
		return models.KindPoint
	case geom.TypeLineString:
		return models.KindLineString
	case geom.TypeMultiPolygon:
		return models.KindMultiPolygon
	default:
		return models.KindPolygon
	}
}

// worldPolygon covers the full WGS84 coordinate plane.
func worldPolygon() geom.Polygon {
	return geom.NewPolygon([]geom.LineString{ringFromXYs([]geom.XY{
		{X: -180, Y: -90},
		{X: -180, Y: 90},
		{X: 180, Y: 90},
		{X: 180, Y: -90},
	})})
}

// unionAll folds a set of geometries into one, skipping parts that fail
// to union rather than aborting the whole merge.
func unionAll(parts []geom.Geometry) (geom.Geometry, error) {
	var acc geom.Geometry
	var firstErr error
	for _, part := range parts {
		if part.IsEmpty() {
			continue
		}
		if acc.IsEmpty() {
			acc = part
			continue
		}
		merged, err := geom.Union(acc, part)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		acc = merged
	}
	if acc.IsEmpty() && firstErr != nil {
		return acc, firstErr
	}
	return acc, nil
}
