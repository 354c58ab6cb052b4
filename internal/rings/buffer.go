package rings

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/vampireLibrarianMonk/orrg/internal/geodesy"
	"github.com/vampireLibrarianMonk/orrg/internal/models"
)

// Above this range the union-of-stadiums approach degrades: the buffer
// covers most of the globe and the local projection is no longer locally
// true. The antipodal exclusion strategy takes over.
const hemisphericThresholdKM = 5500.0

// unionBatchSize keeps cascaded unions numerically stable.
const unionBatchSize = 50

// Buffer builds a geodesic buffer of distanceKM around any geometry.
//
// Point inputs short-circuit to a geodesic circle, which is cheaper and
// avoids projection distortion. Everything else is projected into a
// locally-true azimuthal-equidistant plane centered on the geometry's
// centroid, buffered there with round joins, reprojected, validated and
// antimeridian-fixed. Ranges above the hemispheric threshold use the
// antipodal exclusion strategy instead.
func Buffer(g geom.Geometry, distanceKM float64, res models.Resolution, progress Callback) (geom.Geometry, error) {
	return bufferGeometry(g, distanceKM, res, newTracker(progress), nil)
}

func bufferGeometry(g geom.Geometry, distanceKM float64, res models.Resolution, t *tracker, logger *slog.Logger) (geom.Geometry, error) {
	if g.IsEmpty() {
		return geom.Geometry{}, models.ErrEmptyOrigin
	}
	if distanceKM <= 0 {
		return geom.Geometry{}, fmt.Errorf("%w: got %f", models.ErrNonPositiveRange, distanceKM)
	}

	t.milestone(0.0, "Initializing buffer calculation")

	if g.Type() == geom.TypePoint {
		xy, ok := g.MustAsPoint().XY()
		if !ok {
			return geom.Geometry{}, models.ErrEmptyOrigin
		}
		t.report(0.1, "Creating geodesic circle")
		circle, err := Circle(models.GeoPoint{Latitude: xy.Y, Longitude: xy.X}, distanceKM, res.CirclePoints())
		if err != nil {
			return geom.Geometry{}, err
		}
		t.milestone(1.0, "Complete")
		return circle.AsGeometry(), nil
	}

	if distanceKM > hemisphericThresholdKM {
		return hemisphericBuffer(g, distanceKM, res, t, logger)
	}

	center, err := centroidPoint(g)
	if err != nil {
		return geom.Geometry{}, err
	}
	proj := aeqProjection{center: center}
	t.milestone(0.2, "Projection setup at centroid %s", center)

	boundary := sampledRings(g, res, distanceKM)
	projected, err := proj.forwardRings(boundary)
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("forward projection: %w", err)
	}
	t.milestone(0.3, "Projected %d boundary rings", len(projected))

	radius := distanceKM * 1000.0
	segs := res.BufferSegments()
	parts := make([]geom.Geometry, 0, 64)
	for _, ring := range projected {
		if len(ring) == 1 {
			parts = append(parts, planarCircle(ring[0], radius, 2*segs).AsGeometry())
			continue
		}
		for i := 0; i+1 < len(ring); i++ {
			parts = append(parts, stadium(ring[i], ring[i+1], radius, segs).AsGeometry())
		}
	}
	// Polygonal input contributes its own projected interior so the
	// buffer is solid, not just a fat outline.
	if body, ok := projectedBody(g, proj); ok {
		parts = append(parts, body)
	}

	buffered, err := unionBatched(parts, t, 0.3, 0.5)
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("planar buffer union: %w", err)
	}
	t.milestone(0.5, "Planar buffer merged (%d parts)", len(parts))

	result := transformCoords(buffered, proj.inverse)
	t.milestone(0.7, "Reprojected to geographic coordinates")

	result = makeValid(result)
	t.milestone(0.9, "Validated buffer geometry")

	fixed, err := FixAntimeridian(result)
	if err != nil {
		warn(logger, "antimeridian fix failed, passing geometry through", "error", err)
		fixed = result
	}
	t.milestone(1.0, "Complete")
	return fixed, nil
}

// hemisphericBuffer handles ranges where nearly the whole globe is in
// reach: the out-of-range region is a small cap around the antipode, so
// the buffer is the world polygon minus that exclusion hole. The hole
// radius is capped by the closest boundary point to the antipode, and
// floored at 50 km for numerical stability.
func hemisphericBuffer(g geom.Geometry, distanceKM float64, res models.Resolution, t *tracker, logger *slog.Logger) (geom.Geometry, error) {
	t.milestone(0.1, "Hemispheric buffer (%.0f km), computing antipodal exclusion", distanceKM)

	if distanceKM >= geodesy.HalfCircumferenceKM {
		t.milestone(1.0, "Complete")
		return worldPolygon().AsGeometry(), nil
	}

	center, err := centroidPoint(g)
	if err != nil {
		return geom.Geometry{}, err
	}
	anti := geodesy.Antipode(center)

	coords := strideSample(extractCoords(g), 100)
	minToAntipode := math.Inf(1)
	for _, xy := range coords {
		d, err := geodesy.Distance(models.GeoPoint{Latitude: xy.Y, Longitude: xy.X}, anti)
		if err != nil {
			continue
		}
		if d < minToAntipode {
			minToAntipode = d
		}
	}
	t.milestone(0.3, "Computing out-of-range exclusion zone")

	primary := geodesy.HalfCircumferenceKM - distanceKM
	boundaryLimited := math.Max(0, minToAntipode-distanceKM)
	holeRadius := math.Max(50.0, math.Min(primary, boundaryLimited))
	t.milestone(0.5, "Creating exclusion hole (%.0f km) at antipode", holeRadius)

	hole, err := Circle(anti, holeRadius, res.AntipodalHolePoints())
	if err != nil {
		return geom.Geometry{}, err
	}
	// The hole itself usually crosses the antimeridian; split it first so
	// the subtraction removes both of its in-range parts.
	holeGeom, ferr := FixAntimeridian(hole.AsGeometry())
	if ferr != nil {
		warn(logger, "antimeridian fix failed on exclusion hole", "error", ferr)
		holeGeom = hole.AsGeometry()
	}

	result, err := geom.Difference(worldPolygon().AsGeometry(), holeGeom)
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("antipodal exclusion: %w", err)
	}
	t.milestone(0.7, "Subtracted exclusion from world polygon")

	fixed, ferr := FixAntimeridian(result)
	if ferr != nil {
		warn(logger, "antimeridian fix failed on hemispheric buffer", "error", ferr)
		fixed = result
	}
	fixed = makeValid(fixed)
	t.milestone(1.0, "Complete")
	return fixed, nil
}

// aeqProjection is a local azimuthal-equidistant projection centered on
// one point. Forward maps lon/lat to planar meters where distance from
// the origin is true; inverse maps back via the direct geodesic problem.
type aeqProjection struct {
	center models.GeoPoint
}

func (p aeqProjection) forward(xy geom.XY) (geom.XY, error) {
	distKM, azDeg, err := geodesy.PolarOffset(p.center, models.GeoPoint{Latitude: xy.Y, Longitude: xy.X})
	if err != nil {
		return geom.XY{}, err
	}
	r := distKM * 1000.0
	az := azDeg * math.Pi / 180.0
	return geom.XY{X: r * math.Sin(az), Y: r * math.Cos(az)}, nil
}

func (p aeqProjection) inverse(xy geom.XY) geom.XY {
	r := math.Hypot(xy.X, xy.Y)
	if r == 0 {
		return geom.XY{X: p.center.Longitude, Y: p.center.Latitude}
	}
	azDeg := math.Atan2(xy.X, xy.Y) * 180.0 / math.Pi
	dest, err := geodesy.Destination(p.center, azDeg, r/1000.0)
	if err != nil {
		return xy
	}
	return geom.XY{X: dest.Longitude, Y: dest.Latitude}
}

func (p aeqProjection) forwardRings(rings [][]geom.XY) ([][]geom.XY, error) {
	out := make([][]geom.XY, 0, len(rings))
	for _, ring := range rings {
		projected := make([]geom.XY, 0, len(ring))
		for _, xy := range ring {
			pxy, err := p.forward(xy)
			if err != nil {
				return nil, err
			}
			projected = append(projected, pxy)
		}
		out = append(out, projected)
	}
	return out, nil
}

// projectedBody projects the polygonal interior of the input so it can
// be unioned with the edge stadiums.
func projectedBody(g geom.Geometry, proj aeqProjection) (geom.Geometry, bool) {
	polys := collectPolygons(g)
	if len(polys) == 0 {
		return geom.Geometry{}, false
	}
	projected := make([]geom.Polygon, 0, len(polys))
	for _, p := range polys {
		projected = append(projected, transformPolygon(p, func(xy geom.XY) geom.XY {
			pxy, err := proj.forward(xy)
			if err != nil {
				return xy
			}
			return pxy
		}))
	}
	return makeValid(asPolygonal(projected)), true
}

// sampledRings extracts each boundary ring of the geometry and stride
// samples it down to the resolution's budget. Shorter ranges get denser
// sampling because their stadium circles overlap less.
func sampledRings(g geom.Geometry, res models.Resolution, distanceKM float64) [][]geom.XY {
	budget := int(float64(res.BoundarySamples()) * rangeSampleMultiplier(distanceKM))
	if budget > 1000 {
		budget = 1000
	}
	var out [][]geom.XY
	for _, ring := range boundaryRings(g) {
		out = append(out, strideSample(ring, budget))
	}
	return out
}

func rangeSampleMultiplier(distanceKM float64) float64 {
	switch {
	case distanceKM < 300:
		return 2.5
	case distanceKM < 500:
		return 2.0
	case distanceKM < 1000:
		return 1.5
	case distanceKM < 2000:
		return 1.25
	default:
		return 1.0
	}
}

// boundaryRings returns the coordinate sequences to buffer: exterior and
// interior rings for polygons, the line itself for linestrings, a
// single-coordinate ring per point.
func boundaryRings(g geom.Geometry) [][]geom.XY {
	var out [][]geom.XY
	switch g.Type() {
	case geom.TypePoint:
		if xy, ok := g.MustAsPoint().XY(); ok {
			out = append(out, []geom.XY{xy})
		}
	case geom.TypeLineString:
		out = append(out, sequenceCoords(g.MustAsLineString().Coordinates()))
	case geom.TypePolygon:
		p := g.MustAsPolygon()
		out = append(out, sequenceCoords(p.ExteriorRing().Coordinates()))
		for i := 0; i < p.NumInteriorRings(); i++ {
			out = append(out, sequenceCoords(p.InteriorRingN(i).Coordinates()))
		}
	case geom.TypeMultiPoint:
		mp := g.MustAsMultiPoint()
		for i := 0; i < mp.NumPoints(); i++ {
			if xy, ok := mp.PointN(i).XY(); ok {
				out = append(out, []geom.XY{xy})
			}
		}
	case geom.TypeMultiLineString:
		mls := g.MustAsMultiLineString()
		for i := 0; i < mls.NumLineStrings(); i++ {
			out = append(out, sequenceCoords(mls.LineStringN(i).Coordinates()))
		}
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			out = append(out, boundaryRings(mp.PolygonN(i).AsGeometry())...)
		}
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			out = append(out, boundaryRings(gc.GeometryN(i))...)
		}
	}
	return out
}

// strideSample uniformly down-samples coords to at most budget entries.
func strideSample(coords []geom.XY, budget int) []geom.XY {
	if budget <= 0 || len(coords) <= budget {
		return coords
	}
	step := len(coords) / budget
	if step < 2 {
		step = 2
	}
	out := make([]geom.XY, 0, budget+1)
	for i := 0; i < len(coords); i += step {
		out = append(out, coords[i])
	}
	return out
}

// stadium builds the planar buffer of a single segment: a rectangle with
// semicircular caps of radius r, each cap approximated by segs arcs.
func stadium(p0, p1 geom.XY, r float64, segs int) geom.Polygon {
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		return planarCircle(p0, r, 2*segs)
	}
	if segs < 2 {
		segs = 2
	}
	// Angle of the left-hand normal; both caps sweep half a turn from it.
	a0 := math.Atan2(dx, -dy)
	pts := make([]geom.XY, 0, 2*segs+2)
	for i := 0; i <= segs; i++ {
		ang := a0 - math.Pi*float64(i)/float64(segs)
		pts = append(pts, geom.XY{X: p1.X + r*math.Cos(ang), Y: p1.Y + r*math.Sin(ang)})
	}
	for i := 0; i <= segs; i++ {
		ang := a0 - math.Pi - math.Pi*float64(i)/float64(segs)
		pts = append(pts, geom.XY{X: p0.X + r*math.Cos(ang), Y: p0.Y + r*math.Sin(ang)})
	}
	return geom.NewPolygon([]geom.LineString{ringFromXYs(pts)})
}

func planarCircle(center geom.XY, r float64, n int) geom.Polygon {
	if n < 8 {
		n = 8
	}
	pts := make([]geom.XY, 0, n+1)
	for i := 0; i < n; i++ {
		ang := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, geom.XY{X: center.X + r*math.Cos(ang), Y: center.Y + r*math.Sin(ang)})
	}
	return geom.NewPolygon([]geom.LineString{ringFromXYs(pts)})
}

// unionBatched merges parts in fixed-size batches, then merges the batch
// results. More stable than a single pass, and gives usable progress.
func unionBatched(parts []geom.Geometry, t *tracker, startPct, endPct float64) (geom.Geometry, error) {
	if len(parts) == 0 {
		return geom.Geometry{}, models.ErrEmptyOrigin
	}
	if len(parts) <= unionBatchSize {
		return unionAll(parts)
	}
	var batches []geom.Geometry
	total := (len(parts) + unionBatchSize - 1) / unionBatchSize
	for i := 0; i < len(parts); i += unionBatchSize {
		end := i + unionBatchSize
		if end > len(parts) {
			end = len(parts)
		}
		merged, err := unionAll(parts[i:end])
		if err != nil {
			return geom.Geometry{}, err
		}
		batches = append(batches, merged)
		t.report(startPct+(endPct-startPct)*float64(len(batches))/float64(total),
			"Merging batch %d/%d", len(batches), total)
	}
	return unionAll(batches)
}

// centroidPoint returns the geometry's centroid as a GeoPoint.
func centroidPoint(g geom.Geometry) (models.GeoPoint, error) {
	xy, ok := g.Centroid().XY()
	if !ok {
		return models.GeoPoint{}, models.ErrEmptyOrigin
	}
	return models.GeoPoint{Latitude: xy.Y, Longitude: xy.X}, nil
}

func warn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}
