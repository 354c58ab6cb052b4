package models

import (
	"github.com/peterstace/simplefeatures/geom"
)

// GeometryKind tags the geometry carried by a RingLayer so consumers can
// dispatch without inspecting the geometry itself.
type GeometryKind int

const (
	KindPoint GeometryKind = iota
	KindLineString
	KindPolygon
	KindMultiPolygon
)

func (k GeometryKind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindLineString:
		return "LineString"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return "Polygon"
	}
}

// StyleHint carries opaque rendering hints. The engine fills these from a
// fixed palette keyed by range classification; consumers may ignore them.
type StyleHint struct {
	FillColor   string
	StrokeColor string
	FillOpacity float64
	StrokeWidth float64
}

// Palette from shortest to longest range.
var rangeColors = [4]string{
	"#3366CC", // blue  - CRBM/SRBM
	"#33CC33", // green - MRBM
	"#FFCC00", // yellow - IRBM
	"#CC0000", // red   - ICBM
}

// StyleForRange returns the default polygon style for a range ring.
func StyleForRange(rangeKM float64) StyleHint {
	var color string
	switch {
	case rangeKM < 1000:
		color = rangeColors[0]
	case rangeKM < 3000:
		color = rangeColors[1]
	case rangeKM < 5500:
		color = rangeColors[2]
	default:
		color = rangeColors[3]
	}
	return StyleHint{
		FillColor:   color,
		StrokeColor: color,
		FillOpacity: 0.2,
		StrokeWidth: 2.0,
	}
}

// RingLayer is one geometry layer of a result. Geometry handed out here
// is already antimeridian-fixed; consumers never deal with meridian or
// ellipsoid edge cases.
type RingLayer struct {
	Name     string
	Kind     GeometryKind
	Geometry geom.Geometry
	RangeKM  float64
	Label    string
	Style    StyleHint
	// Note is set when a degraded-accuracy fallback produced this layer.
	Note string
}

// Coverage classifies a reverse-envelope outcome.
type Coverage int

const (
	CoverageUnknown Coverage = iota
	CoverageFull
	CoveragePartial
	CoverageNone
)

func (c Coverage) String() string {
	switch c {
	case CoverageFull:
		return "full"
	case CoveragePartial:
		return "partial"
	case CoverageNone:
		return "out-of-range"
	default:
		return "unknown"
	}
}

// RangeRingResult is the engine's single output type. It is constructed
// fresh per invocation; the engine holds no state between calls.
type RangeRingResult struct {
	Title    string
	Subtitle string
	Layers   []RingLayer
	Center   GeoPoint
	BBox     BBox

	VertexCount      int
	ProcessingTimeMS float64
	Resolution       Resolution
	GeodesicMethod   string
	Classification   RangeClass

	// Reverse-envelope metadata. MinDistanceKM is meaningful whenever
	// Coverage is CoveragePartial or CoverageNone.
	Coverage      Coverage
	MinDistanceKM float64
}

// MinimumDistanceResult reports the closest point pair between two
// boundaries.
type MinimumDistanceResult struct {
	NameA      string
	NameB      string
	PointA     GeoPoint
	PointB     GeoPoint
	DistanceKM float64
}
