package rings

import (
	"fmt"
	"log/slog"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/vampireLibrarianMonk/orrg/internal/geodesy"
	"github.com/vampireLibrarianMonk/orrg/internal/models"
)

// reverseSampleCap bounds the boundary distance pre-check. Reverse
// envelopes run against arbitrary input boundaries, so the cap is far
// above DefaultSampleCap to keep the coverage decision stable.
const reverseSampleCap = 2000

// ReverseEnvelopeInput names the two sides of a reverse envelope query:
// the target being threatened and the candidate launch boundary.
type ReverseEnvelopeInput struct {
	Target       models.GeoPoint
	TargetName   string
	Spec         models.RangeSpec
	Boundary     geom.Geometry
	BoundaryName string
}

// ReverseEnvelope answers "from where inside the boundary can a system
// with this range reach the target". The launch region is the
// intersection of the boundary with the reach circle centered on the
// target. Full and zero coverage are detected with a sampled distance
// pre-check before any boolean work.
func (e *Engine) ReverseEnvelope(in ReverseEnvelopeInput, res models.Resolution, progress Callback) (*models.RangeRingResult, error) {
	t := newTracker(progress)
	start := e.clock.Now()
	t.milestone(0.0, "Initializing reverse envelope analysis")

	if err := in.Target.Validate(); err != nil {
		return nil, err
	}
	if in.Boundary.IsEmpty() {
		return nil, models.ErrEmptyOrigin
	}
	rangeKM, err := in.Spec.Kilometers()
	if err != nil {
		return nil, err
	}
	target := in.Target.Normalize()
	class := models.ClassifyRange(rangeKM)

	t.report(0.1, "Creating %.0f km reach circle around target", rangeKM)
	reach, err := Circle(target, rangeKM, res.CirclePoints())
	if err != nil {
		return nil, err
	}
	reachGeom := reach.AsGeometry()

	t.report(0.3, "Sampling boundary distances to target")
	minKM, maxKM, err := distanceStats(in.Boundary, target, reverseSampleCap)
	if err != nil {
		return nil, err
	}
	t.report(0.4, "Boundary distance to target: %.0f-%.0f km", minKM, maxKM)

	var (
		launch   geom.Geometry
		coverage models.Coverage
		note     string
	)
	switch {
	case maxKM <= rangeKM:
		// Every sampled boundary point is within reach; the whole
		// boundary is the launch region.
		coverage = models.CoverageFull
		launch = makeValid(in.Boundary)
		t.milestone(0.7, "Entire %s is within range of %s", in.BoundaryName, in.TargetName)

	case minKM > rangeKM:
		coverage = models.CoverageNone
		t.milestone(0.7, "No part of %s can reach %s (closest %.0f km, range %.0f km)",
			in.BoundaryName, in.TargetName, minKM, rangeKM)

	default:
		coverage = models.CoveragePartial
		t.report(0.5, "Intersecting reach circle with %s", in.BoundaryName)
		launch, note = e.partialLaunchRegion(in.Boundary, reachGeom, e.logger)
		t.milestone(0.7, "Partial coverage of %s", in.BoundaryName)
	}

	layers := make([]models.RingLayer, 0, 3)
	bbox := models.EmptyBBox()
	vertices := 0

	if coverage == models.CoverageNone {
		// Out of range: emit the reach circle as a reference layer so
		// the caller can still render how far short the system falls.
		ref := e.fixForOutput(makeValid(reachGeom))
		layers = append(layers, models.RingLayer{
			Name:     fmt.Sprintf("%.0f km reach (out of range)", rangeKM),
			Kind:     geometryKind(ref),
			Geometry: ref,
			RangeKM:  rangeKM,
			Label:    fmt.Sprintf("%.0f %s", in.Spec.Value, in.Spec.Unit),
			Style:    models.StyleForRange(rangeKM),
			Note:     fmt.Sprintf("closest approach %.0f km exceeds range", minKM),
		})
		bbox = bbox.Union(boundsOf(ref)).Union(boundsOf(in.Boundary))
		vertices += countVertices(ref)
	} else {
		launch = e.fixForOutput(launch)
		layers = append(layers, models.RingLayer{
			Name:     fmt.Sprintf("Launch region in %s", in.BoundaryName),
			Kind:     geometryKind(launch),
			Geometry: launch,
			RangeKM:  rangeKM,
			Label:    fmt.Sprintf("%.0f %s", in.Spec.Value, in.Spec.Unit),
			Style:    models.StyleForRange(rangeKM),
			Note:     note,
		})
		bbox = bbox.Union(boundsOf(launch))
		vertices += countVertices(launch)
	}

	layers = append(layers, models.RingLayer{
		Name:     in.TargetName,
		Kind:     models.KindPoint,
		Geometry: geom.XY{X: target.Longitude, Y: target.Latitude}.AsPoint().AsGeometry(),
		Label:    in.TargetName,
		Style:    models.StyleHint{FillColor: "#000000", StrokeColor: "#FFFFFF", FillOpacity: 1.0, StrokeWidth: 2.0},
	})
	bbox = bbox.ExtendPoint(target.Longitude, target.Latitude)

	result := &models.RangeRingResult{
		Title:            "Reverse Range Envelope",
		Subtitle:         fmt.Sprintf("%s from %s", in.TargetName, in.BoundaryName),
		Layers:           layers,
		Center:           target,
		BBox:             bbox,
		VertexCount:      vertices,
		ProcessingTimeMS: e.elapsedMS(start),
		Resolution:       res,
		GeodesicMethod:   geodesy.Method,
		Classification:   class,
		Coverage:         coverage,
		MinDistanceKM:    minKM,
	}
	e.observe("reverse_envelope", start, vertices)
	t.milestone(1.0, "Complete")
	return result, nil
}

// partialLaunchRegion intersects the boundary with the reach circle.
// Both sides go through the antimeridian fixer first so a circle
// spanning the dateline does not produce a bow-tie intersection. A
// failed or empty intersection falls back to the whole boundary with a
// degraded-accuracy note rather than returning nothing.
func (e *Engine) partialLaunchRegion(boundary, reach geom.Geometry, logger *slog.Logger) (geom.Geometry, string) {
	boundaryFixed, err := FixAntimeridian(makeValid(boundary))
	if err != nil {
		warn(logger, "boundary antimeridian fix failed before intersection", "error", err)
		boundaryFixed = makeValid(boundary)
	}
	reachFixed, err := FixAntimeridian(makeValid(reach))
	if err != nil {
		warn(logger, "reach circle antimeridian fix failed before intersection", "error", err)
		reachFixed = makeValid(reach)
	}

	inter, err := geom.Intersection(boundaryFixed, reachFixed)
	if err != nil {
		warn(logger, "launch region intersection failed, using full boundary", "error", err)
		e.recordRecovery("reverse_intersection_failed")
		return boundaryFixed, "intersection failed; showing full boundary (degraded accuracy)"
	}
	if inter.IsEmpty() {
		warn(logger, "launch region intersection empty despite partial coverage, using full boundary")
		e.recordRecovery("reverse_intersection_empty")
		return boundaryFixed, "intersection empty; showing full boundary (degraded accuracy)"
	}
	return asPolygonal(collectPolygons(makeValid(inter))), ""
}
