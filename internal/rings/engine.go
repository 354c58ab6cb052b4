// Package rings implements the geodesic range ring engine: circles,
// donuts, boundary buffers, launch-envelope hole cutting, minimum
// distance search and reverse-envelope resolution on the WGS84
// ellipsoid.
//
// The engine is stateless between calls and fully synchronous; every
// operation runs to completion on the calling goroutine. Concurrent use
// from multiple goroutines is safe because nothing is shared.
package rings

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/vampireLibrarianMonk/orrg/internal/clock"
	"github.com/vampireLibrarianMonk/orrg/internal/geodesy"
	"github.com/vampireLibrarianMonk/orrg/internal/metrics"
	"github.com/vampireLibrarianMonk/orrg/internal/models"
)

// Config carries the engine's optional collaborators. The zero value is
// usable: no logging, real clock, no metrics, default sample cap.
type Config struct {
	Logger    *slog.Logger
	Clock     clock.Clock
	Metrics   *metrics.Metrics
	SampleCap int
}

// Engine computes range ring geometry. Construct with NewEngine.
type Engine struct {
	logger    *slog.Logger
	clock     clock.Clock
	metrics   *metrics.Metrics
	sampleCap int
}

func NewEngine(cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	if cfg.SampleCap <= 0 {
		cfg.SampleCap = DefaultSampleCap
	}
	return &Engine{
		logger:    cfg.Logger,
		clock:     cfg.Clock,
		metrics:   cfg.Metrics,
		sampleCap: cfg.SampleCap,
	}
}

// Origin is the starting geometry for a range ring: either a single
// point or a boundary polygon, never both.
type Origin struct {
	Name     string
	Point    *models.GeoPoint
	Boundary geom.Geometry
}

func (o Origin) validate() error {
	if o.Point == nil && o.Boundary.IsEmpty() {
		return models.ErrEmptyOrigin
	}
	if o.Point != nil {
		return o.Point.Validate()
	}
	switch o.Boundary.Type() {
	case geom.TypePolygon, geom.TypeMultiPolygon:
		return nil
	default:
		return fmt.Errorf("origin boundary must be Polygon or MultiPolygon, got %s", o.Boundary.Type())
	}
}

func (o Origin) center() (models.GeoPoint, error) {
	if o.Point != nil {
		return o.Point.Normalize(), nil
	}
	return centroidPoint(o.Boundary)
}

// POI is a named point of interest for donut ring generation.
type POI struct {
	Name  string
	Point models.GeoPoint
}

// SingleRing builds one range ring around the origin. Point origins get
// a geodesic circle; boundary origins get a buffer with the boundary cut
// out as a hole, so only the area reachable beyond the border remains.
func (e *Engine) SingleRing(origin Origin, spec models.RangeSpec, res models.Resolution, progress Callback) (*models.RangeRingResult, error) {
	t := newTracker(progress)
	start := e.clock.Now()
	t.milestone(0.0, "Starting range ring generation")

	if err := origin.validate(); err != nil {
		return nil, err
	}
	rangeKM, err := spec.Kilometers()
	if err != nil {
		return nil, err
	}
	t.report(0.05, "Range: %.0f km", rangeKM)
	class := models.ClassifyRange(rangeKM)

	center, err := origin.center()
	if err != nil {
		return nil, err
	}

	var ringGeom geom.Geometry
	if origin.Point != nil {
		t.report(0.1, "Creating geodesic circle from point")
		circle, cerr := Circle(center, rangeKM, res.CirclePoints())
		if cerr != nil {
			return nil, cerr
		}
		ringGeom = circle.AsGeometry()
		t.report(0.8, "Circle geometry created")
	} else {
		t.report(0.1, "Buffering origin boundary")
		ringGeom, err = bufferGeometry(origin.Boundary, rangeKM, res, t.subTracker(0.1, 0.7, ""), e.logger)
		if err != nil {
			return nil, fmt.Errorf("buffering %q: %w", origin.Name, err)
		}
		t.report(0.75, "Cutting ring at origin border")
		ringGeom = SubtractBoundary(ringGeom, origin.Boundary, e.logger)
	}

	ringGeom = makeValid(ringGeom)
	ringGeom = e.fixForOutput(ringGeom)

	label := spec.Label
	if label == "" {
		label = fmt.Sprintf("%.0f %s", spec.Value, spec.Unit)
	}
	layer := models.RingLayer{
		Name:     fmt.Sprintf("%.0f km Range (%s)", rangeKM, class),
		Kind:     geometryKind(ringGeom),
		Geometry: ringGeom,
		RangeKM:  rangeKM,
		Label:    label,
		Style:    models.StyleForRange(rangeKM),
	}

	result := &models.RangeRingResult{
		Title:            "Range Ring",
		Subtitle:         origin.Name,
		Layers:           []models.RingLayer{layer},
		Center:           center,
		BBox:             boundsOf(ringGeom),
		VertexCount:      countVertices(ringGeom),
		ProcessingTimeMS: e.elapsedMS(start),
		Resolution:       res,
		GeodesicMethod:   geodesy.Method,
		Classification:   class,
	}
	e.observe("single_ring", start, result.VertexCount)
	t.milestone(1.0, "Complete")
	return result, nil
}

// MultiRing builds nested rings for several range specs around one
// origin. Ranges are sorted descending so layers render widest to
// narrowest and no smaller ring hides under a larger one.
func (e *Engine) MultiRing(origin Origin, specs []models.RangeSpec, res models.Resolution, progress Callback) (*models.RangeRingResult, error) {
	t := newTracker(progress)
	start := e.clock.Now()
	t.milestone(0.0, "Initializing multiple range ring generation")

	if err := origin.validate(); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, errors.New("at least one range spec is required")
	}

	type rangeEntry struct {
		spec models.RangeSpec
		km   float64
	}
	entries := make([]rangeEntry, 0, len(specs))
	for _, spec := range specs {
		km, err := spec.Kilometers()
		if err != nil {
			return nil, err
		}
		entries = append(entries, rangeEntry{spec: spec, km: km})
	}
	t.report(0.08, "Sorting ranges for proper layering")
	sort.Slice(entries, func(i, j int) bool { return entries[i].km > entries[j].km })

	center, err := origin.center()
	if err != nil {
		return nil, err
	}

	var originValid geom.Geometry
	if origin.Point == nil {
		t.report(0.12, "Validating origin geometry")
		originValid = makeValid(origin.Boundary)
	}

	n := len(entries)
	t.report(0.15, "Processing %d range ring(s)", n)

	layers := make([]models.RingLayer, 0, n)
	bbox := models.EmptyBBox()
	vertices := 0

	// Each ring gets an equal slice of the 0.15-0.85 progress band.
	for i, entry := range entries {
		ringStart := 0.15 + float64(i)/float64(n)*0.70
		ringEnd := 0.15 + float64(i+1)/float64(n)*0.70
		span := ringEnd - ringStart
		prefix := fmt.Sprintf("Ring %d/%d", i+1, n)
		t.report(ringStart, "%s: %.0f km", prefix, entry.km)

		var ringGeom geom.Geometry
		if origin.Point != nil {
			circle, cerr := Circle(center, entry.km, res.CirclePoints())
			if cerr != nil {
				return nil, cerr
			}
			ringGeom = circle.AsGeometry()
			t.report(ringStart+span*0.8, "%s: circle created", prefix)
		} else {
			ringGeom, err = bufferGeometry(origin.Boundary, entry.km, res,
				t.subTracker(ringStart+span*0.1, ringStart+span*0.7, prefix), e.logger)
			if err != nil {
				return nil, fmt.Errorf("buffering %q at %.0f km: %w", origin.Name, entry.km, err)
			}
			t.report(ringStart+span*0.75, "%s: subtracting origin from ring", prefix)
			ringGeom = SubtractBoundary(ringGeom, originValid, e.logger)
		}

		ringGeom = makeValid(ringGeom)
		ringGeom = e.fixForOutput(ringGeom)

		label := entry.spec.Label
		if label == "" {
			label = fmt.Sprintf("%.0f km", entry.km)
		}
		layers = append(layers, models.RingLayer{
			Name:     label,
			Kind:     geometryKind(ringGeom),
			Geometry: ringGeom,
			RangeKM:  entry.km,
			Label:    fmt.Sprintf("%.0f %s", entry.spec.Value, entry.spec.Unit),
			Style:    models.StyleForRange(entry.km),
		})
		bbox = bbox.Union(boundsOf(ringGeom))
		vertices += countVertices(ringGeom)
		t.milestone(ringEnd, "%s: complete", prefix)
	}

	t.report(0.86, "Calculating combined bounds")

	result := &models.RangeRingResult{
		Title:            "Multiple Range Rings",
		Subtitle:         origin.Name,
		Layers:           layers,
		Center:           center,
		BBox:             bbox,
		VertexCount:      vertices,
		ProcessingTimeMS: e.elapsedMS(start),
		Resolution:       res,
		GeodesicMethod:   geodesy.Method,
	}
	e.observe("multi_ring", start, vertices)
	t.milestone(1.0, "Complete")
	return result, nil
}

// DonutRings builds min/max donut rings (or plain circles when inner is
// nil) around one or more points of interest.
func (e *Engine) DonutRings(pois []POI, inner *models.RangeSpec, outer models.RangeSpec, res models.Resolution, progress Callback) (*models.RangeRingResult, error) {
	t := newTracker(progress)
	start := e.clock.Now()
	t.milestone(0.0, "Initializing donut ring generation")

	if len(pois) == 0 {
		return nil, models.ErrEmptyOrigin
	}
	outerKM, err := outer.Kilometers()
	if err != nil {
		return nil, err
	}
	innerKM := 0.0
	if inner != nil {
		innerKM, err = inner.Kilometers()
		if err != nil {
			return nil, err
		}
		if innerKM >= outerKM {
			return nil, fmt.Errorf("%w: inner %f km, outer %f km", models.ErrInvalidDonut, innerKM, outerKM)
		}
	}
	class := models.ClassifyRange(outerKM)

	layers := make([]models.RingLayer, 0, len(pois)*2)
	bbox := models.EmptyBBox()
	vertices := 0
	var sumLat, sumLon float64

	for i, poi := range pois {
		if err := poi.Point.Validate(); err != nil {
			return nil, fmt.Errorf("poi %q: %w", poi.Name, err)
		}
		t.report(0.1+0.8*float64(i)/float64(len(pois)), "Building ring for %s", poi.Name)

		ring, derr := Donut(poi.Point, innerKM, outerKM, res.CirclePoints())
		if derr != nil {
			return nil, fmt.Errorf("poi %q: %w", poi.Name, derr)
		}
		ringGeom := e.fixForOutput(makeValid(ring.AsGeometry()))

		name := poi.Name
		if innerKM > 0 {
			name = fmt.Sprintf("%s (%.0f-%.0f km)", poi.Name, innerKM, outerKM)
		} else {
			name = fmt.Sprintf("%s (%.0f km)", poi.Name, outerKM)
		}
		layers = append(layers, models.RingLayer{
			Name:     name,
			Kind:     geometryKind(ringGeom),
			Geometry: ringGeom,
			RangeKM:  outerKM,
			Label:    fmt.Sprintf("%.0f %s", outer.Value, outer.Unit),
			Style:    models.StyleForRange(outerKM),
		})
		marker := geom.XY{X: poi.Point.Longitude, Y: poi.Point.Latitude}.AsPoint().AsGeometry()
		layers = append(layers, models.RingLayer{
			Name:     poi.Name,
			Kind:     models.KindPoint,
			Geometry: marker,
			Label:    poi.Name,
			Style:    models.StyleHint{FillColor: "#000000", StrokeColor: "#FFFFFF", FillOpacity: 1.0, StrokeWidth: 2.0},
		})

		bbox = bbox.Union(boundsOf(ringGeom))
		vertices += countVertices(ringGeom)
		sumLat += poi.Point.Latitude
		sumLon += poi.Point.Longitude
	}

	result := &models.RangeRingResult{
		Title:    "Donut Range Rings",
		Subtitle: fmt.Sprintf("%d POI(s)", len(pois)),
		Layers:   layers,
		Center: models.GeoPoint{
			Latitude:  sumLat / float64(len(pois)),
			Longitude: sumLon / float64(len(pois)),
		},
		BBox:             bbox,
		VertexCount:      vertices,
		ProcessingTimeMS: e.elapsedMS(start),
		Resolution:       res,
		GeodesicMethod:   geodesy.Method,
		Classification:   class,
	}
	e.observe("donut_ring", start, vertices)
	t.milestone(1.0, "Complete")
	return result, nil
}

// MinimumDistance finds the closest point pair between two boundaries
// and returns a result with the geodesic connector line plus the two
// endpoint markers.
func (e *Engine) MinimumDistance(a, b geom.Geometry, nameA, nameB string, progress Callback) (*models.RangeRingResult, *models.MinimumDistanceResult, error) {
	t := newTracker(progress)
	start := e.clock.Now()
	t.milestone(0.0, "Initializing minimum distance calculation")

	t.report(0.15, "Sampling boundary coordinates")
	t.report(0.25, "Computing geodesic distances between all point pairs")
	pa, pb, distKM, err := ClosestPoints(a, b, e.sampleCap)
	if err != nil {
		return nil, nil, err
	}
	t.milestone(0.5, "Minimum distance found: %.1f km", distKM)

	layers := make([]models.RingLayer, 0, 3)

	t.report(0.55, "Creating geodesic line between closest points")
	linePts, err := geodesy.InterpolateLine(pa, pb, 100)
	if err != nil {
		return nil, nil, err
	}
	floats := make([]float64, 0, len(linePts)*2)
	for _, p := range linePts {
		floats = append(floats, p.Longitude, p.Latitude)
	}
	line := geom.NewLineString(geom.NewSequence(floats, geom.DimXY)).AsGeometry()
	layers = append(layers, models.RingLayer{
		Name:     fmt.Sprintf("Minimum Distance: %.1f km", distKM),
		Kind:     models.KindLineString,
		Geometry: line,
		RangeKM:  distKM,
		Label:    fmt.Sprintf("%.1f km", distKM),
		Style:    models.StyleHint{StrokeColor: "#FF0000", StrokeWidth: 3.0},
	})

	for _, m := range []struct {
		name  string
		point models.GeoPoint
		fill  string
	}{
		{fmt.Sprintf("Closest point on %s", nameA), pa, "#3366CC"},
		{fmt.Sprintf("Closest point on %s", nameB), pb, "#CC3366"},
	} {
		layers = append(layers, models.RingLayer{
			Name:     m.name,
			Kind:     models.KindPoint,
			Geometry: geom.XY{X: m.point.Longitude, Y: m.point.Latitude}.AsPoint().AsGeometry(),
			Style:    models.StyleHint{FillColor: m.fill, FillOpacity: 1.0, StrokeWidth: 2.0},
		})
	}
	t.report(0.8, "Point markers created")

	result := &models.RangeRingResult{
		Title:    "Minimum Distance Analysis",
		Subtitle: fmt.Sprintf("%s to %s", nameA, nameB),
		Layers:   layers,
		Center: models.GeoPoint{
			Latitude:  (pa.Latitude + pb.Latitude) / 2,
			Longitude: (pa.Longitude + pb.Longitude) / 2,
		},
		BBox:             boundsOf(a).Union(boundsOf(b)),
		VertexCount:      countVertices(line),
		ProcessingTimeMS: e.elapsedMS(start),
		GeodesicMethod:   geodesy.Method,
	}
	minResult := &models.MinimumDistanceResult{
		NameA:      nameA,
		NameB:      nameB,
		PointA:     pa,
		PointB:     pb,
		DistanceKM: distKM,
	}
	e.observe("minimum_distance", start, result.VertexCount)
	t.milestone(1.0, "Complete")
	return result, minResult, nil
}

// fixForOutput applies the antimeridian fixer before geometry leaves the
// engine, passing degenerate input through with a warning.
func (e *Engine) fixForOutput(g geom.Geometry) geom.Geometry {
	fixed, err := FixAntimeridian(g)
	if err != nil {
		warn(e.logger, "antimeridian fix failed, emitting unfixed geometry", "error", err)
		e.recordRecovery("antimeridian_passthrough")
		return g
	}
	return fixed
}

func (e *Engine) elapsedMS(start time.Time) float64 {
	return float64(e.clock.Now().Sub(start).Nanoseconds()) / 1e6
}

func (e *Engine) observe(op string, start time.Time, vertices int) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveOperation(op, e.clock.Now().Sub(start).Seconds(), vertices)
}

func (e *Engine) recordRecovery(kind string) {
	if e.metrics != nil {
		e.metrics.RecordRecovery(kind)
	}
}
