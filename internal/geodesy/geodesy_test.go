package geodesy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vampireLibrarianMonk/orrg/internal/models"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     models.GeoPoint
		expected float64
		delta    float64
	}{
		{
			name:     "one degree of longitude at the equator",
			a:        models.GeoPoint{Latitude: 0, Longitude: 0},
			b:        models.GeoPoint{Latitude: 0, Longitude: 1},
			expected: 111.319,
			delta:    0.01,
		},
		{
			name:     "one degree of latitude at the equator",
			a:        models.GeoPoint{Latitude: 0, Longitude: 0},
			b:        models.GeoPoint{Latitude: 1, Longitude: 0},
			expected: 110.574,
			delta:    0.01,
		},
		{
			name:     "same point",
			a:        models.GeoPoint{Latitude: 48.8566, Longitude: 2.3522},
			b:        models.GeoPoint{Latitude: 48.8566, Longitude: 2.3522},
			expected: 0,
			delta:    1e-9,
		},
		{
			name:     "across the antimeridian",
			a:        models.GeoPoint{Latitude: 0, Longitude: 179.5},
			b:        models.GeoPoint{Latitude: 0, Longitude: -179.5},
			expected: 111.319,
			delta:    0.01,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Distance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, tt.delta)
		})
	}
}

func TestDistanceInvalidLatitude(t *testing.T) {
	_, err := Distance(models.GeoPoint{Latitude: 91, Longitude: 0}, models.GeoPoint{})
	assert.ErrorIs(t, err, models.ErrInvalidLatitude)
}

func TestDestinationRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		origin   models.GeoPoint
		azimuth  float64
		distance float64
	}{
		{name: "east from mid latitude", origin: models.GeoPoint{Latitude: 40, Longitude: -75}, azimuth: 90, distance: 500},
		{name: "north from equator", origin: models.GeoPoint{Latitude: 0, Longitude: 20}, azimuth: 0, distance: 1200},
		{name: "southwest near the dateline", origin: models.GeoPoint{Latitude: -30, Longitude: 178}, azimuth: 225, distance: 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, err := Destination(tt.origin, tt.azimuth, tt.distance)
			require.NoError(t, err)

			back, err := Distance(tt.origin, dest)
			require.NoError(t, err)
			assert.InDelta(t, tt.distance, back, 1e-6)
		})
	}
}

func TestInterpolateLine(t *testing.T) {
	a := models.GeoPoint{Latitude: 0, Longitude: 0}
	b := models.GeoPoint{Latitude: 0, Longitude: 10}

	pts, err := InterpolateLine(a, b, 10)
	require.NoError(t, err)
	require.Len(t, pts, 11)

	assert.Equal(t, a, pts[0])
	assert.Equal(t, b, pts[10])

	// Along the equator the intermediate points stay on it and advance
	// in roughly equal longitude steps.
	for i, p := range pts {
		assert.InDelta(t, 0.0, p.Latitude, 1e-6, "point %d latitude", i)
		assert.InDelta(t, float64(i), p.Longitude, 0.01, "point %d longitude", i)
	}
}

func TestInterpolateLineMinimumSegments(t *testing.T) {
	a := models.GeoPoint{Latitude: 10, Longitude: 10}
	b := models.GeoPoint{Latitude: 11, Longitude: 11}

	pts, err := InterpolateLine(a, b, 0)
	require.NoError(t, err)
	assert.Len(t, pts, 2)
}

func TestPolarOffset(t *testing.T) {
	origin := models.GeoPoint{Latitude: 0, Longitude: 0}

	distKM, azDeg, err := PolarOffset(origin, models.GeoPoint{Latitude: 0, Longitude: 1})
	require.NoError(t, err)
	assert.InDelta(t, 111.319, distKM, 0.01)
	assert.InDelta(t, 90.0, azDeg, 1e-6)

	distKM, azDeg, err = PolarOffset(origin, models.GeoPoint{Latitude: 1, Longitude: 0})
	require.NoError(t, err)
	assert.InDelta(t, 110.574, distKM, 0.01)
	assert.InDelta(t, 0.0, azDeg, 1e-6)
}

func TestAntipode(t *testing.T) {
	tests := []struct {
		name     string
		input    models.GeoPoint
		expected models.GeoPoint
	}{
		{
			name:     "origin",
			input:    models.GeoPoint{Latitude: 0, Longitude: 0},
			expected: models.GeoPoint{Latitude: 0, Longitude: 180},
		},
		{
			name:     "mid latitude",
			input:    models.GeoPoint{Latitude: 45, Longitude: 170},
			expected: models.GeoPoint{Latitude: -45, Longitude: -10},
		},
		{
			name:     "western hemisphere",
			input:    models.GeoPoint{Latitude: -33, Longitude: -70},
			expected: models.GeoPoint{Latitude: 33, Longitude: 110},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Antipode(tt.input)
			assert.InDelta(t, tt.expected.Latitude, got.Latitude, 1e-9)
			assert.InDelta(t, tt.expected.Longitude, got.Longitude, 1e-9)
		})
	}
}
