// Package catalog loads named boundary polygons from a GeoJSON feature
// collection and resolves them by code, by name, or by point lookup.
// The on-disk format is standard GeoJSON, optionally gzip-compressed
// (Natural Earth country exports work as-is).
package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	geojson "github.com/paulmach/go.geojson"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/tidwall/rtree"

	"github.com/vampireLibrarianMonk/orrg/internal/models"
)

// Boundary is one named polygon from the catalog.
type Boundary struct {
	Name     string
	Code     string
	Geometry geom.Geometry
	Bounds   models.BBox
}

// Catalog indexes boundaries by code, by lowercased name, and spatially.
// It is immutable after Load and safe for concurrent reads.
type Catalog struct {
	byCode map[string]*Boundary
	byName map[string]*Boundary
	index  rtree.RTreeG[*Boundary]
	count  int
}

// Load reads a GeoJSON feature collection from path. A ".gz" suffix
// selects gzip decompression.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, gerr := gzip.NewReader(f)
		if gerr != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", gerr)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	c := &Catalog{
		byCode: make(map[string]*Boundary),
		byName: make(map[string]*Boundary),
	}
	skipped := 0
	for _, feat := range fc.Features {
		b, ok := boundaryFromFeature(feat)
		if !ok {
			skipped++
			continue
		}
		c.add(b)
	}
	if logger != nil {
		logger.Info("boundary catalog loaded",
			"path", path, "boundaries", c.count, "skipped", skipped)
	}
	if c.count == 0 {
		return nil, fmt.Errorf("catalog %q contains no usable polygon features", path)
	}
	return c, nil
}

func (c *Catalog) add(b *Boundary) {
	if b.Code != "" {
		c.byCode[strings.ToUpper(b.Code)] = b
	}
	if b.Name != "" {
		c.byName[strings.ToLower(b.Name)] = b
	}
	c.index.Insert(
		[2]float64{b.Bounds.MinLon, b.Bounds.MinLat},
		[2]float64{b.Bounds.MaxLon, b.Bounds.MaxLat},
		b,
	)
	c.count++
}

// Len returns the number of boundaries in the catalog.
func (c *Catalog) Len() int { return c.count }

// ByCode looks a boundary up by its code (ISO alpha-3 for country
// datasets). Lookup is case-insensitive.
func (c *Catalog) ByCode(code string) (*Boundary, bool) {
	b, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return b, ok
}

// ByName looks a boundary up by its display name, case-insensitively.
func (c *Catalog) ByName(name string) (*Boundary, bool) {
	b, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return b, ok
}

// Resolve tries code first, then name.
func (c *Catalog) Resolve(key string) (*Boundary, bool) {
	if b, ok := c.ByCode(key); ok {
		return b, true
	}
	return c.ByName(key)
}

// Locate finds the boundary containing the point, using the spatial
// index to narrow candidates before the exact containment test.
func (c *Catalog) Locate(p models.GeoPoint) (*Boundary, bool) {
	var found *Boundary
	pt := [2]float64{p.Longitude, p.Latitude}
	c.index.Search(pt, pt, func(_, _ [2]float64, b *Boundary) bool {
		if containsPoint(b.Geometry, p.Longitude, p.Latitude) {
			found = b
			return false
		}
		return true
	})
	return found, found != nil
}

// Names returns all display names, unordered.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for _, b := range c.byName {
		names = append(names, b.Name)
	}
	return names
}

func boundaryFromFeature(feat *geojson.Feature) (*Boundary, bool) {
	if feat.Geometry == nil {
		return nil, false
	}
	var g geom.Geometry
	switch {
	case feat.Geometry.IsPolygon():
		p, ok := polygonFromCoords(feat.Geometry.Polygon)
		if !ok {
			return nil, false
		}
		g = p.AsGeometry()
	case feat.Geometry.IsMultiPolygon():
		polys := make([]geom.Polygon, 0, len(feat.Geometry.MultiPolygon))
		for _, coords := range feat.Geometry.MultiPolygon {
			p, ok := polygonFromCoords(coords)
			if !ok {
				continue
			}
			polys = append(polys, p)
		}
		if len(polys) == 0 {
			return nil, false
		}
		g = geom.NewMultiPolygon(polys).AsGeometry()
	default:
		return nil, false
	}

	b := &Boundary{
		Name:     featureName(feat),
		Code:     featureCode(feat),
		Geometry: g,
		Bounds:   geometryBounds(g),
	}
	if b.Name == "" && b.Code == "" {
		return nil, false
	}
	return b, true
}

func polygonFromCoords(rings [][][]float64) (geom.Polygon, bool) {
	lss := make([]geom.LineString, 0, len(rings))
	for _, ring := range rings {
		if len(ring) < 4 {
			continue
		}
		floats := make([]float64, 0, len(ring)*2)
		for _, pos := range ring {
			if len(pos) < 2 {
				return geom.Polygon{}, false
			}
			floats = append(floats, pos[0], pos[1])
		}
		// GeoJSON rings should already be closed; tolerate ones that are not.
		if floats[0] != floats[len(floats)-2] || floats[1] != floats[len(floats)-1] {
			floats = append(floats, floats[0], floats[1])
		}
		lss = append(lss, geom.NewLineString(geom.NewSequence(floats, geom.DimXY)))
	}
	if len(lss) == 0 {
		return geom.Polygon{}, false
	}
	return geom.NewPolygon(lss), true
}

// featureName reads the display name, trying the property keys Natural
// Earth and common exports use.
func featureName(feat *geojson.Feature) string {
	for _, key := range []string{"name", "NAME", "ADMIN", "admin", "NAME_EN"} {
		if s, err := feat.PropertyString(key); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// featureCode reads the boundary code. Natural Earth uses -99 as a
// missing-value sentinel for some territories.
func featureCode(feat *geojson.Feature) string {
	for _, key := range []string{"iso_a3", "ISO_A3", "ADM0_A3", "code", "id"} {
		if s, err := feat.PropertyString(key); err == nil && s != "" && s != "-99" {
			return s
		}
	}
	return ""
}

func geometryBounds(g geom.Geometry) models.BBox {
	bbox := models.EmptyBBox()
	for _, p := range collectPolygons(g) {
		seq := p.ExteriorRing().Coordinates()
		for i := 0; i < seq.Length(); i++ {
			xy := seq.GetXY(i)
			bbox = bbox.ExtendPoint(xy.X, xy.Y)
		}
	}
	return bbox
}

func collectPolygons(g geom.Geometry) []geom.Polygon {
	switch g.Type() {
	case geom.TypePolygon:
		return []geom.Polygon{g.MustAsPolygon()}
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		polys := make([]geom.Polygon, 0, mp.NumPolygons())
		for i := 0; i < mp.NumPolygons(); i++ {
			polys = append(polys, mp.PolygonN(i))
		}
		return polys
	default:
		return nil
	}
}

// containsPoint is an even-odd ray cast over every ring of the
// polygon's parts. Holes flip containment like any other ring.
func containsPoint(g geom.Geometry, lon, lat float64) bool {
	inside := false
	for _, p := range collectPolygons(g) {
		if ringContains(p.ExteriorRing(), lon, lat) {
			inside = true
			for i := 0; i < p.NumInteriorRings(); i++ {
				if ringContains(p.InteriorRingN(i), lon, lat) {
					inside = false
					break
				}
			}
			if inside {
				return true
			}
		}
	}
	return inside
}

func ringContains(ring geom.LineString, lon, lat float64) bool {
	seq := ring.Coordinates()
	n := seq.Length()
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a := seq.GetXY(i)
		b := seq.GetXY(j)
		if (a.Y > lat) != (b.Y > lat) &&
			lon < (b.X-a.X)*(lat-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
