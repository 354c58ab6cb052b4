package rings

import (
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vampireLibrarianMonk/orrg/internal/models"
)

func squareGeom(minLon, minLat, maxLon, maxLat float64) geom.Geometry {
	return geom.NewPolygon([]geom.LineString{ringFromXYs([]geom.XY{
		{X: minLon, Y: minLat},
		{X: maxLon, Y: minLat},
		{X: maxLon, Y: maxLat},
		{X: minLon, Y: maxLat},
	})}).AsGeometry()
}

func assertLongitudesInRange(t *testing.T, g geom.Geometry) {
	t.Helper()
	for _, xy := range extractCoords(g) {
		assert.GreaterOrEqual(t, xy.X, -180.0)
		assert.LessOrEqual(t, xy.X, 180.0)
	}
}

func TestFixAntimeridianLeavesOrdinaryPolygonsAlone(t *testing.T) {
	sq := squareGeom(-10, -10, 10, 10)
	fixed, err := FixAntimeridian(sq)
	require.NoError(t, err)
	assert.True(t, geom.ExactEquals(sq, fixed))
}

func TestFixAntimeridianLeavesNonPolygonalAlone(t *testing.T) {
	pt := geom.XY{X: 179.5, Y: 0}.AsPoint().AsGeometry()
	fixed, err := FixAntimeridian(pt)
	require.NoError(t, err)
	assert.True(t, geom.ExactEquals(pt, fixed))
}

func TestFixAntimeridianSplitsShiftedPolygon(t *testing.T) {
	// Continuous representation running past +180, the shape a circle
	// near the dateline produces.
	sq := squareGeom(175, -5, 185, 5)

	fixed, err := FixAntimeridian(sq)
	require.NoError(t, err)
	assertLongitudesInRange(t, fixed)

	polys := collectPolygons(fixed)
	require.Len(t, polys, 2)

	// One part hugs +180 from the west, the other from the east.
	var west, east bool
	for _, p := range polys {
		b := boundsOf(p.AsGeometry())
		if b.MinLon >= 174.9 && b.MaxLon <= 180.0 {
			west = true
		}
		if b.MinLon >= -180.0 && b.MaxLon <= -174.9 {
			east = true
		}
	}
	assert.True(t, west, "western part missing")
	assert.True(t, east, "eastern part missing")
}

func TestFixAntimeridianSplitsWrappedPolygon(t *testing.T) {
	// Wrapped representation: the ring jumps from +179 to -179.
	wrapped := geom.NewPolygon([]geom.LineString{ringFromXYs([]geom.XY{
		{X: 179, Y: -5},
		{X: -179, Y: -5},
		{X: -179, Y: 5},
		{X: 179, Y: 5},
	})}).AsGeometry()

	fixed, err := FixAntimeridian(wrapped)
	require.NoError(t, err)
	assertLongitudesInRange(t, fixed)
	assert.Len(t, collectPolygons(fixed), 2)
}

func TestFixAntimeridianCircleNearDateline(t *testing.T) {
	circle, err := Circle(models.GeoPoint{Latitude: 10, Longitude: 179.9}, 200, 180)
	require.NoError(t, err)

	fixed, err := FixAntimeridian(circle.AsGeometry())
	require.NoError(t, err)
	assertLongitudesInRange(t, fixed)
	assert.Equal(t, geom.TypeMultiPolygon, fixed.Type())
	assert.Len(t, collectPolygons(fixed), 2)
}

func TestFixAntimeridianKeepsWideInRangeGeometry(t *testing.T) {
	// Spans well over 180 degrees of longitude but never leaves the
	// valid range and never wraps; must pass through unchanged. Dense
	// vertices along the top and bottom edges keep every longitude step
	// small, the way buffered geometry always arrives.
	var pts []geom.XY
	for lon := -179.0; lon <= 179.0; lon += 10 {
		pts = append(pts, geom.XY{X: lon, Y: -60})
	}
	for lon := 179.0; lon >= -179.0; lon -= 10 {
		pts = append(pts, geom.XY{X: lon, Y: 60})
	}
	wide := geom.NewPolygon([]geom.LineString{ringFromXYs(pts)}).AsGeometry()
	fixed, err := FixAntimeridian(wide)
	require.NoError(t, err)
	assert.True(t, geom.ExactEquals(wide, fixed))
}

func TestFixAntimeridianKeepsWorldPolygonWithEdgeBite(t *testing.T) {
	// Subtracting an antipodal exclusion from the world polygon yields a
	// ring that traverses the +-180 edge. The coordinates are already in
	// range, so the geometry must pass through unchanged, bite included.
	world := geom.NewPolygon([]geom.LineString{ringFromXYs([]geom.XY{
		{X: -180, Y: -90},
		{X: 180, Y: -90},
		{X: 180, Y: -4},
		{X: 176, Y: -4},
		{X: 176, Y: 4},
		{X: 180, Y: 4},
		{X: 180, Y: 90},
		{X: -180, Y: 90},
	})}).AsGeometry()

	fixed, err := FixAntimeridian(world)
	require.NoError(t, err)
	assert.True(t, geom.ExactEquals(world, fixed))
	assert.False(t, intersectsPoint(fixed, geom.XY{X: 178, Y: 0}))
	assert.True(t, intersectsPoint(fixed, geom.XY{X: 0, Y: 0}))
}

func TestFixAntimeridianEmptyGeometry(t *testing.T) {
	var empty geom.Geometry
	fixed, err := FixAntimeridian(empty)
	require.NoError(t, err)
	assert.True(t, fixed.IsEmpty())
}
