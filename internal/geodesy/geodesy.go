// Package geodesy provides ellipsoidal geodesic primitives on WGS84.
// Every distance in and out of this package is in kilometers. The solver
// is Karney's algorithm, which the rest of the engine relies on as its
// numerical backbone.
package geodesy

import (
	"fmt"
	"math"

	"github.com/tidwall/geodesic"

	"github.com/vampireLibrarianMonk/orrg/internal/models"
)

const (
	// EarthRadiusKM is the WGS84 mean radius.
	EarthRadiusKM = 6371.0088

	// HalfCircumferenceKM is the antipodal distance on the mean sphere.
	HalfCircumferenceKM = EarthRadiusKM * math.Pi

	// Method names the geodesic algorithm for result metadata.
	Method = "karney"
)

// Distance solves the inverse geodesic problem between two points and
// returns the distance in kilometers. Fails only on invalid latitude;
// longitudes are wrapped, never rejected.
func Distance(a, b models.GeoPoint) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, fmt.Errorf("point a: %w", err)
	}
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("point b: %w", err)
	}
	a, b = a.Normalize(), b.Normalize()

	var meters float64
	geodesic.WGS84.Inverse(a.Latitude, a.Longitude, b.Latitude, b.Longitude, &meters, nil, nil)
	return meters / 1000.0, nil
}

// Destination solves the direct geodesic problem: the point reached by
// travelling distanceKM from origin along the given azimuth (degrees
// clockwise from north).
func Destination(origin models.GeoPoint, azimuthDeg, distanceKM float64) (models.GeoPoint, error) {
	if err := origin.Validate(); err != nil {
		return models.GeoPoint{}, err
	}
	origin = origin.Normalize()

	var lat, lon float64
	geodesic.WGS84.Direct(origin.Latitude, origin.Longitude, azimuthDeg, distanceKM*1000.0, &lat, &lon, nil)
	return models.GeoPoint{Latitude: lat, Longitude: lon}, nil
}

// InterpolateLine splits the geodesic between a and b into n arcs of
// equal length, returning the n+1 points including both endpoints. The
// direct solver is applied repeatedly along the initial azimuth.
func InterpolateLine(a, b models.GeoPoint, n int) ([]models.GeoPoint, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("point a: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("point b: %w", err)
	}
	if n < 1 {
		n = 1
	}
	a, b = a.Normalize(), b.Normalize()

	var meters, azi1 float64
	geodesic.WGS84.Inverse(a.Latitude, a.Longitude, b.Latitude, b.Longitude, &meters, &azi1, nil)

	points := make([]models.GeoPoint, 0, n+1)
	points = append(points, a)
	for i := 1; i < n; i++ {
		s := meters * float64(i) / float64(n)
		var lat, lon float64
		geodesic.WGS84.Direct(a.Latitude, a.Longitude, azi1, s, &lat, &lon, nil)
		points = append(points, models.GeoPoint{Latitude: lat, Longitude: lon})
	}
	points = append(points, b)
	return points, nil
}

// PolarOffset returns the geodesic distance in kilometers and the
// initial azimuth in degrees from origin to p. This is the forward leg
// of the local azimuthal-equidistant projection used by the buffer
// constructor.
func PolarOffset(origin, p models.GeoPoint) (distanceKM, azimuthDeg float64, err error) {
	if err := origin.Validate(); err != nil {
		return 0, 0, fmt.Errorf("origin: %w", err)
	}
	if err := p.Validate(); err != nil {
		return 0, 0, err
	}
	origin, p = origin.Normalize(), p.Normalize()

	var meters, azi1 float64
	geodesic.WGS84.Inverse(origin.Latitude, origin.Longitude, p.Latitude, p.Longitude, &meters, &azi1, nil)
	return meters / 1000.0, azi1, nil
}

// Antipode returns the diametrically opposite point, with longitude
// normalized to (-180, 180].
func Antipode(p models.GeoPoint) models.GeoPoint {
	return models.GeoPoint{
		Latitude:  -p.Latitude,
		Longitude: models.WrapLongitude(p.Longitude + 180.0),
	}
}
