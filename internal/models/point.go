package models

import (
	"fmt"
	"math"
)

// GeoPoint is an immutable WGS84 coordinate pair in decimal degrees.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Validate rejects latitudes outside [-90, 90]. Longitude is never
// rejected; callers should wrap it with Normalize instead.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: got %f", ErrInvalidLatitude, p.Latitude)
	}
	return nil
}

// Normalize returns a copy of the point with longitude wrapped into
// (-180, 180].
func (p GeoPoint) Normalize() GeoPoint {
	return GeoPoint{Latitude: p.Latitude, Longitude: WrapLongitude(p.Longitude)}
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Latitude, p.Longitude)
}

// WrapLongitude wraps a longitude in degrees into (-180, 180]. Values
// already in range are returned bit-for-bit; the modular arithmetic
// would otherwise introduce float noise.
func WrapLongitude(lon float64) float64 {
	if lon > -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon <= 0 {
		lon += 360
	}
	return lon - 180
}

// BBox is a geographic bounding box ordered (minlon, minlat, maxlon, maxlat).
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// EmptyBBox returns a bbox that any Union or ExtendPoint will replace.
func EmptyBBox() BBox {
	return BBox{
		MinLon: math.Inf(1),
		MinLat: math.Inf(1),
		MaxLon: math.Inf(-1),
		MaxLat: math.Inf(-1),
	}
}

// IsEmpty reports whether the bbox has never been extended.
func (b BBox) IsEmpty() bool {
	return b.MinLon > b.MaxLon || b.MinLat > b.MaxLat
}

// Union returns the component-wise min/max of the two boxes.
func (b BBox) Union(other BBox) BBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return BBox{
		MinLon: math.Min(b.MinLon, other.MinLon),
		MinLat: math.Min(b.MinLat, other.MinLat),
		MaxLon: math.Max(b.MaxLon, other.MaxLon),
		MaxLat: math.Max(b.MaxLat, other.MaxLat),
	}
}

// ExtendPoint grows the bbox to include a single coordinate.
func (b BBox) ExtendPoint(lon, lat float64) BBox {
	return b.Union(BBox{MinLon: lon, MinLat: lat, MaxLon: lon, MaxLat: lat})
}

// Contains reports whether the coordinate lies inside the box (inclusive).
func (b BBox) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// WidthLon returns the longitudinal span in degrees.
func (b BBox) WidthLon() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.MaxLon - b.MinLon
}
