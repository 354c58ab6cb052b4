package rings

import (
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtractBoundaryCutsHole(t *testing.T) {
	ring := squareGeom(-10, -10, 10, 10)
	origin := squareGeom(-2, -2, 2, 2)

	result := SubtractBoundary(ring, origin, nil)
	require.False(t, result.IsEmpty())

	areaBefore := planarArea(ring)
	areaAfter := planarArea(result)
	assert.Less(t, areaAfter, areaBefore)
	assert.InDelta(t, areaBefore-16.0, areaAfter, 0.01)
}

func TestSubtractBoundaryEmptyOriginIsNoop(t *testing.T) {
	ring := squareGeom(-10, -10, 10, 10)
	var empty geom.Geometry

	result := SubtractBoundary(ring, empty, nil)
	assert.True(t, geom.ExactEquals(ring, result))
}

func TestSubtractBoundaryNeverErasesRing(t *testing.T) {
	// Origin fully covers the ring; the difference would be empty, so
	// the cut must revert to the input instead.
	ring := squareGeom(-2, -2, 2, 2)
	origin := squareGeom(-10, -10, 10, 10)

	result := SubtractBoundary(ring, origin, nil)
	require.False(t, result.IsEmpty())
	assert.InDelta(t, planarArea(ring), planarArea(result), 1e-9)
}

func TestSubtractBoundaryDisjointOrigin(t *testing.T) {
	// A disjoint origin makes the difference a no-op by area, but the
	// explicit hole fallback must not fire for geometry that never
	// touched the ring.
	ring := squareGeom(-10, -10, 10, 10)
	origin := squareGeom(50, 50, 60, 60)

	result := SubtractBoundary(ring, origin, nil)
	require.False(t, result.IsEmpty())
	assert.InDelta(t, planarArea(ring), planarArea(result), 1e-9)
}

func TestExplicitHoles(t *testing.T) {
	ring := squareGeom(-10, -10, 10, 10)
	origin := squareGeom(-2, -2, 2, 2)

	rebuilt, ok := explicitHoles(ring, origin)
	require.True(t, ok)

	p := rebuilt.MustAsPolygon()
	assert.Equal(t, 1, p.NumInteriorRings())
	assert.InDelta(t, 400.0-16.0, planarArea(rebuilt), 1e-9)
}

func TestExplicitHolesRejectsNonPolygon(t *testing.T) {
	mp := geom.NewMultiPolygon([]geom.Polygon{
		squareGeom(-10, -10, 10, 10).MustAsPolygon(),
		squareGeom(20, 20, 30, 30).MustAsPolygon(),
	}).AsGeometry()

	_, ok := explicitHoles(mp, squareGeom(-2, -2, 2, 2))
	assert.False(t, ok)
}
