package rings

import (
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vampireLibrarianMonk/orrg/internal/geodesy"
	"github.com/vampireLibrarianMonk/orrg/internal/models"
)

func TestBufferPointIsCircle(t *testing.T) {
	center := models.GeoPoint{Latitude: 40, Longitude: -100}
	pt := geom.XY{X: center.Longitude, Y: center.Latitude}.AsPoint().AsGeometry()

	buffered, err := Buffer(pt, 500, models.ResolutionNormal, nil)
	require.NoError(t, err)
	require.Equal(t, geom.TypePolygon, buffered.Type())

	// Every vertex sits at the buffer distance from the center.
	for _, xy := range extractCoords(buffered) {
		d, derr := geodesy.Distance(center, models.GeoPoint{Latitude: xy.Y, Longitude: xy.X})
		require.NoError(t, derr)
		assert.InDelta(t, 500.0, d, 1e-6)
	}
}

func TestBufferSquareContainsAndExceedsInput(t *testing.T) {
	sq := squareGeom(0, 40, 2, 42)

	rec := &progressRecorder{}
	buffered, err := Buffer(sq, 200, models.ResolutionLow, rec.callback())
	require.NoError(t, err)
	require.False(t, buffered.IsEmpty())

	// The buffer strictly contains the input square.
	assert.Greater(t, planarArea(buffered), planarArea(sq))
	b := boundsOf(buffered)
	assert.Less(t, b.MinLon, 0.0)
	assert.Greater(t, b.MaxLon, 2.0)
	assert.Less(t, b.MinLat, 40.0)
	assert.Greater(t, b.MaxLat, 42.0)

	// Input vertices stay inside the buffer.
	for _, xy := range extractCoords(sq) {
		assert.True(t, intersectsPoint(buffered, xy), "input vertex %v outside buffer", xy)
	}

	rec.assertMonotonic(t)
	require.NotEmpty(t, rec.fractions)
	assert.Equal(t, 1.0, rec.fractions[len(rec.fractions)-1])
}

func intersectsPoint(g geom.Geometry, xy geom.XY) bool {
	return geom.Intersects(g, xy.AsPoint().AsGeometry())
}

func TestBufferLineString(t *testing.T) {
	line := geom.NewLineString(geom.NewSequence([]float64{
		10, 50, 11, 50.5, 12, 50,
	}, geom.DimXY)).AsGeometry()

	buffered, err := Buffer(line, 100, models.ResolutionLow, nil)
	require.NoError(t, err)
	require.False(t, buffered.IsEmpty())

	// Every line vertex is covered by the buffer.
	for _, xy := range extractCoords(line) {
		assert.True(t, intersectsPoint(buffered, xy))
	}
}

func TestBufferRejectsBadInput(t *testing.T) {
	var empty geom.Geometry
	_, err := Buffer(empty, 100, models.ResolutionNormal, nil)
	assert.ErrorIs(t, err, models.ErrEmptyOrigin)

	_, err = Buffer(squareGeom(0, 0, 1, 1), 0, models.ResolutionNormal, nil)
	assert.ErrorIs(t, err, models.ErrNonPositiveRange)

	_, err = Buffer(squareGeom(0, 0, 1, 1), -5, models.ResolutionNormal, nil)
	assert.ErrorIs(t, err, models.ErrNonPositiveRange)
}

func TestHemisphericBufferExcludesAntipode(t *testing.T) {
	sq := squareGeom(0, 0, 2, 2)

	buffered, err := Buffer(sq, 15000, models.ResolutionLow, nil)
	require.NoError(t, err)
	require.False(t, buffered.IsEmpty())

	// The centroid's antipode is out of range and must not be covered.
	center, err := centroidPoint(sq)
	require.NoError(t, err)
	anti := geodesy.Antipode(center)
	assert.False(t, intersectsPoint(buffered, geom.XY{X: anti.Longitude, Y: anti.Latitude}))

	// The origin itself is covered.
	assert.True(t, intersectsPoint(buffered, geom.XY{X: center.Longitude, Y: center.Latitude}))
}

func TestHemisphericBufferFullGlobe(t *testing.T) {
	sq := squareGeom(0, 0, 2, 2)

	buffered, err := Buffer(sq, geodesy.HalfCircumferenceKM+1, models.ResolutionLow, nil)
	require.NoError(t, err)

	b := boundsOf(buffered)
	assert.InDelta(t, -180.0, b.MinLon, 1e-9)
	assert.InDelta(t, 180.0, b.MaxLon, 1e-9)
	assert.InDelta(t, -90.0, b.MinLat, 1e-9)
	assert.InDelta(t, 90.0, b.MaxLat, 1e-9)
}

func TestStadiumCoversSegment(t *testing.T) {
	p0 := geom.XY{X: 0, Y: 0}
	p1 := geom.XY{X: 10000, Y: 0}

	s := stadium(p0, p1, 1000, 8)
	g := s.AsGeometry()
	require.NoError(t, g.Validate())

	for _, pt := range []geom.XY{
		{X: 0, Y: 0},
		{X: 5000, Y: 0},
		{X: 10000, Y: 0},
		{X: 5000, Y: 900},
		{X: 5000, Y: -900},
		{X: -900, Y: 0},
		{X: 10900, Y: 0},
	} {
		assert.True(t, intersectsPoint(g, pt), "point %v not covered", pt)
	}
	// Beyond the cap radius.
	assert.False(t, intersectsPoint(g, geom.XY{X: 11100, Y: 0}))
	assert.False(t, intersectsPoint(g, geom.XY{X: 5000, Y: 1100}))
}

func TestStadiumDegenerateSegmentIsCircle(t *testing.T) {
	p := geom.XY{X: 100, Y: 100}
	s := stadium(p, p, 500, 8)

	assert.True(t, intersectsPoint(s.AsGeometry(), p))
	assert.False(t, intersectsPoint(s.AsGeometry(), geom.XY{X: 700, Y: 100}))
}

func TestStrideSample(t *testing.T) {
	coords := make([]geom.XY, 1000)
	for i := range coords {
		coords[i] = geom.XY{X: float64(i), Y: 0}
	}

	sampled := strideSample(coords, 100)
	assert.LessOrEqual(t, len(sampled), 101)
	assert.GreaterOrEqual(t, len(sampled), 50)

	// Small inputs pass through untouched.
	small := coords[:10]
	assert.Equal(t, small, strideSample(small, 100))
}

func TestRangeSampleMultiplier(t *testing.T) {
	tests := []struct {
		rangeKM  float64
		expected float64
	}{
		{100, 2.5},
		{400, 2.0},
		{700, 1.5},
		{1500, 1.25},
		{5000, 1.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, rangeSampleMultiplier(tt.rangeKM), "range %.0f", tt.rangeKM)
	}
}
