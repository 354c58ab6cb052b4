package rings

import (
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/vampireLibrarianMonk/orrg/internal/geodesy"
	"github.com/vampireLibrarianMonk/orrg/internal/models"
)

// Circle builds a geodesic circle polygon by sweeping nPoints azimuths
// around the center and solving the direct problem at each. Equal
// azimuth steps do not give equal longitude steps, so a ring near the
// antimeridian can wrap; in that case every longitude is re-expressed
// relative to the center meridian, which keeps the ring simple-closed
// without invoking the general splitter.
func Circle(center models.GeoPoint, radiusKM float64, nPoints int) (geom.Polygon, error) {
	if err := center.Validate(); err != nil {
		return geom.Polygon{}, err
	}
	if radiusKM <= 0 {
		return geom.Polygon{}, fmt.Errorf("%w: got %f", models.ErrNonPositiveRange, radiusKM)
	}
	if nPoints < 3 {
		nPoints = 3
	}
	center = center.Normalize()

	pts := make([]geom.XY, 0, nPoints+1)
	for i := 0; i < nPoints; i++ {
		azimuth := 360.0 / float64(nPoints) * float64(i)
		p, err := geodesy.Destination(center, azimuth, radiusKM)
		if err != nil {
			return geom.Polygon{}, err
		}
		pts = append(pts, geom.XY{X: p.Longitude, Y: p.Latitude})
	}
	pts = append(pts, pts[0])

	if crossesAntimeridian(pts) {
		pts = normalizeAroundMeridian(pts, center.Longitude)
	}
	return geom.NewPolygon([]geom.LineString{ringFromXYs(pts)}), nil
}

// Donut builds a ring polygon with an inner exclusion hole. An inner
// radius of zero (or less) degenerates to a plain circle.
func Donut(center models.GeoPoint, innerKM, outerKM float64, nPoints int) (geom.Polygon, error) {
	outer, err := Circle(center, outerKM, nPoints)
	if err != nil {
		return geom.Polygon{}, err
	}
	if innerKM <= 0 {
		return outer, nil
	}
	if innerKM >= outerKM {
		return geom.Polygon{}, fmt.Errorf("%w: inner %f km, outer %f km", models.ErrInvalidDonut, innerKM, outerKM)
	}
	inner, err := Circle(center, innerKM, nPoints)
	if err != nil {
		return geom.Polygon{}, err
	}
	return geom.NewPolygon([]geom.LineString{
		outer.ExteriorRing(),
		inner.ExteriorRing().Reverse(),
	}), nil
}

// crossesAntimeridian reports whether any consecutive pair of points
// jumps more than 180 degrees in longitude.
func crossesAntimeridian(pts []geom.XY) bool {
	for i := 0; i+1 < len(pts); i++ {
		if math.Abs(pts[i+1].X-pts[i].X) > 180 {
			return true
		}
	}
	return false
}

// normalizeAroundMeridian re-expresses each longitude as a signed offset
// from the reference meridian wrapped into [-180, 180], then adds the
// reference back. Output longitudes may exceed the nominal +-180 range;
// that is intentional, the ring stays continuous.
func normalizeAroundMeridian(pts []geom.XY, refLon float64) []geom.XY {
	out := make([]geom.XY, len(pts))
	for i, p := range pts {
		rel := p.X - refLon
		for rel > 180 {
			rel -= 360
		}
		for rel < -180 {
			rel += 360
		}
		out[i] = geom.XY{X: refLon + rel, Y: p.Y}
	}
	return out
}
