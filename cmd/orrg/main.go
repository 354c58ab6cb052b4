package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/twpayne/go-polyline"

	"github.com/vampireLibrarianMonk/orrg/internal/app"
	"github.com/vampireLibrarianMonk/orrg/internal/appconf"
	"github.com/vampireLibrarianMonk/orrg/internal/models"
	"github.com/vampireLibrarianMonk/orrg/internal/rings"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type cliOptions struct {
	mode       string
	origin     string
	target     string
	targetName string
	from       string
	to         string
	pois       string
	ranges     string
	minRange   string
	resolution string
	dataPath   string
	format     string
	configPath string
	verbose    bool
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("orrg", flag.ContinueOnError)
	var opts cliOptions
	fs.StringVar(&opts.mode, "mode", "single", "operation: single, multi, donut, mindist, reverse")
	fs.StringVar(&opts.origin, "origin", "", "origin: 'lat,lon' or a catalog code/name (requires -data)")
	fs.StringVar(&opts.target, "target", "", "target point 'lat,lon' (reverse mode)")
	fs.StringVar(&opts.targetName, "target-name", "Target", "display name for the target (reverse mode)")
	fs.StringVar(&opts.from, "from", "", "first boundary code/name (mindist mode)")
	fs.StringVar(&opts.to, "to", "", "second boundary code/name (mindist mode)")
	fs.StringVar(&opts.pois, "pois", "", "semicolon-separated 'name@lat,lon' points (donut mode)")
	fs.StringVar(&opts.ranges, "ranges", "", "comma-separated ranges, e.g. '300km,1000km,1.5nm'")
	fs.StringVar(&opts.minRange, "min-range", "", "inner range for donut mode, e.g. '300km'")
	fs.StringVar(&opts.resolution, "resolution", "", "geometry resolution: low, normal, high")
	fs.StringVar(&opts.dataPath, "data", "", "path to boundary catalog GeoJSON (optionally .gz)")
	fs.StringVar(&opts.format, "format", "geojson", "output format: geojson, polyline")
	fs.StringVar(&opts.configPath, "config", "", "path to JSON config file")
	fs.BoolVar(&opts.verbose, "verbose", false, "enable debug logging and progress output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := appconf.Config{
		Env:        appconf.EnvFlagToEnvironment(os.Getenv("ORRG_ENV")),
		Resolution: "normal",
	}
	if opts.configPath != "" {
		jsonConfig, err := appconf.LoadFromFile(opts.configPath)
		if err != nil {
			return err
		}
		cfg = jsonConfig.ToAppConfig()
	}
	if opts.dataPath != "" {
		cfg.DataPath = opts.dataPath
	}
	if opts.resolution != "" {
		cfg.Resolution = opts.resolution
	}
	if opts.verbose {
		cfg.Verbose = true
	}

	application, err := app.Build(cfg)
	if err != nil {
		return err
	}

	res, err := models.ParseResolution(cfg.Resolution)
	if err != nil {
		return err
	}

	var progress rings.Callback
	if cfg.Verbose {
		progress = func(fraction float64, message string) {
			fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", fraction*100, message)
		}
	}

	result, minResult, err := dispatch(application, opts, res, progress)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		application.Logger.Debug("run complete", "summary", spew.Sdump(newRunSummary(result, minResult)))
	}

	switch strings.ToLower(opts.format) {
	case "geojson":
		return writeGeoJSON(out, result, minResult)
	case "polyline":
		return writePolylines(out, result)
	default:
		return fmt.Errorf("unknown output format %q", opts.format)
	}
}

func dispatch(application *app.Application, opts cliOptions, res models.Resolution, progress rings.Callback) (*models.RangeRingResult, *models.MinimumDistanceResult, error) {
	engine := application.Engine

	switch opts.mode {
	case "single":
		origin, err := resolveOrigin(application, opts.origin)
		if err != nil {
			return nil, nil, err
		}
		spec, err := parseSingleRange(opts.ranges)
		if err != nil {
			return nil, nil, err
		}
		result, err := engine.SingleRing(origin, spec, res, progress)
		return result, nil, err

	case "multi":
		origin, err := resolveOrigin(application, opts.origin)
		if err != nil {
			return nil, nil, err
		}
		specs, err := parseRangeList(opts.ranges)
		if err != nil {
			return nil, nil, err
		}
		result, err := engine.MultiRing(origin, specs, res, progress)
		return result, nil, err

	case "donut":
		pois, err := parsePOIs(opts.pois)
		if err != nil {
			return nil, nil, err
		}
		outer, err := parseSingleRange(opts.ranges)
		if err != nil {
			return nil, nil, err
		}
		var inner *models.RangeSpec
		if opts.minRange != "" {
			spec, perr := models.ParseRangeSpec(opts.minRange)
			if perr != nil {
				return nil, nil, perr
			}
			inner = &spec
		}
		result, err := engine.DonutRings(pois, inner, outer, res, progress)
		return result, nil, err

	case "mindist":
		if application.Catalog == nil {
			return nil, nil, fmt.Errorf("mindist mode requires -data")
		}
		ba, ok := application.Catalog.Resolve(opts.from)
		if !ok {
			return nil, nil, fmt.Errorf("unknown boundary %q", opts.from)
		}
		bb, ok := application.Catalog.Resolve(opts.to)
		if !ok {
			return nil, nil, fmt.Errorf("unknown boundary %q", opts.to)
		}
		return engine.MinimumDistance(ba.Geometry, bb.Geometry, ba.Name, bb.Name, progress)

	case "reverse":
		target, err := parsePoint(opts.target)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing -target: %w", err)
		}
		origin, err := resolveOrigin(application, opts.origin)
		if err != nil {
			return nil, nil, err
		}
		if origin.Boundary.IsEmpty() {
			return nil, nil, fmt.Errorf("reverse mode requires a boundary origin")
		}
		spec, err := parseSingleRange(opts.ranges)
		if err != nil {
			return nil, nil, err
		}
		result, err := engine.ReverseEnvelope(rings.ReverseEnvelopeInput{
			Target:       target,
			TargetName:   opts.targetName,
			Spec:         spec,
			Boundary:     origin.Boundary,
			BoundaryName: origin.Name,
		}, res, progress)
		return result, nil, err

	default:
		return nil, nil, fmt.Errorf("unknown mode %q", opts.mode)
	}
}

// resolveOrigin accepts either a raw 'lat,lon' pair or a catalog key.
func resolveOrigin(application *app.Application, value string) (rings.Origin, error) {
	if value == "" {
		return rings.Origin{}, fmt.Errorf("-origin is required")
	}
	if p, err := parsePoint(value); err == nil {
		return rings.Origin{Name: value, Point: &p}, nil
	}
	if application.Catalog == nil {
		return rings.Origin{}, fmt.Errorf("origin %q is not a coordinate pair and no -data catalog is loaded", value)
	}
	b, ok := application.Catalog.Resolve(value)
	if !ok {
		return rings.Origin{}, fmt.Errorf("unknown boundary %q", value)
	}
	return rings.Origin{Name: b.Name, Boundary: b.Geometry}, nil
}

func parsePoint(s string) (models.GeoPoint, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return models.GeoPoint{}, fmt.Errorf("expected 'lat,lon', got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("invalid longitude %q", parts[1])
	}
	p := models.GeoPoint{Latitude: lat, Longitude: lon}
	if err := p.Validate(); err != nil {
		return models.GeoPoint{}, err
	}
	return p.Normalize(), nil
}

func parseSingleRange(s string) (models.RangeSpec, error) {
	if s == "" {
		return models.RangeSpec{}, fmt.Errorf("-ranges is required")
	}
	if strings.Contains(s, ",") {
		return models.RangeSpec{}, fmt.Errorf("this mode takes exactly one range, got %q", s)
	}
	return models.ParseRangeSpec(s)
}

func parseRangeList(s string) ([]models.RangeSpec, error) {
	if s == "" {
		return nil, fmt.Errorf("-ranges is required")
	}
	parts := strings.Split(s, ",")
	specs := make([]models.RangeSpec, 0, len(parts))
	for _, part := range parts {
		spec, err := models.ParseRangeSpec(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// parsePOIs parses 'name@lat,lon' entries separated by semicolons.
func parsePOIs(s string) ([]rings.POI, error) {
	if s == "" {
		return nil, fmt.Errorf("-pois is required for donut mode")
	}
	entries := strings.Split(s, ";")
	pois := make([]rings.POI, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name := fmt.Sprintf("POI %d", len(pois)+1)
		coords := entry
		if at := strings.Index(entry, "@"); at >= 0 {
			name = strings.TrimSpace(entry[:at])
			coords = entry[at+1:]
		}
		p, err := parsePoint(coords)
		if err != nil {
			return nil, fmt.Errorf("poi %q: %w", entry, err)
		}
		pois = append(pois, rings.POI{Name: name, Point: p})
	}
	if len(pois) == 0 {
		return nil, fmt.Errorf("-pois contained no points")
	}
	return pois, nil
}

// runSummary is the metadata dumped to the debug log after a verbose run.
// Geometry is left out; the layers can run to thousands of vertices.
type runSummary struct {
	Title          string
	Layers         int
	VertexCount    int
	ProcessingMS   float64
	Classification string
	Coverage       string
	MinDistanceKM  float64
}

func newRunSummary(result *models.RangeRingResult, minResult *models.MinimumDistanceResult) runSummary {
	s := runSummary{
		Title:          result.Title,
		Layers:         len(result.Layers),
		VertexCount:    result.VertexCount,
		ProcessingMS:   result.ProcessingTimeMS,
		Classification: string(result.Classification),
	}
	if result.Coverage != models.CoverageUnknown {
		s.Coverage = result.Coverage.String()
	}
	if minResult != nil {
		s.MinDistanceKM = minResult.DistanceKM
	}
	return s
}

// GeoJSONFeature represents a GeoJSON feature with associated properties.
type GeoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   geom.Geometry          `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// GeoJSONFeatureCollection is the top-level output document.
type GeoJSONFeatureCollection struct {
	Type       string                 `json:"type"`
	Features   []GeoJSONFeature       `json:"features"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

func writeGeoJSON(out io.Writer, result *models.RangeRingResult, minResult *models.MinimumDistanceResult) error {
	features := make([]GeoJSONFeature, 0, len(result.Layers))
	for _, layer := range result.Layers {
		props := map[string]interface{}{
			"name":  layer.Name,
			"label": layer.Label,
		}
		if layer.RangeKM > 0 {
			props["range_km"] = layer.RangeKM
		}
		if layer.Note != "" {
			props["note"] = layer.Note
		}
		if layer.Style.FillColor != "" {
			props["fill"] = layer.Style.FillColor
		}
		if layer.Style.StrokeColor != "" {
			props["stroke"] = layer.Style.StrokeColor
		}
		features = append(features, GeoJSONFeature{
			Type:       "Feature",
			Geometry:   layer.Geometry,
			Properties: props,
		})
	}

	collectionProps := map[string]interface{}{
		"title":              result.Title,
		"subtitle":           result.Subtitle,
		"vertex_count":       result.VertexCount,
		"processing_time_ms": result.ProcessingTimeMS,
		"geodesic_method":    result.GeodesicMethod,
	}
	if result.Classification != "" {
		collectionProps["classification"] = string(result.Classification)
	}
	if result.Coverage != models.CoverageUnknown {
		collectionProps["coverage"] = result.Coverage.String()
	}
	if minResult != nil {
		collectionProps["min_distance_km"] = minResult.DistanceKM
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(GeoJSONFeatureCollection{
		Type:       "FeatureCollection",
		Features:   features,
		Properties: collectionProps,
	})
}

// writePolylines emits one Google encoded polyline per layer ring, the
// layer name and the encoded string separated by a tab.
func writePolylines(out io.Writer, result *models.RangeRingResult) error {
	for _, layer := range result.Layers {
		for _, ring := range layerRings(layer.Geometry) {
			coords := make([][]float64, 0, len(ring))
			for _, xy := range ring {
				coords = append(coords, []float64{xy.Y, xy.X})
			}
			encoded := polyline.EncodeCoords(coords)
			if _, err := fmt.Fprintf(out, "%s\t%s\n", layer.Name, encoded); err != nil {
				return err
			}
		}
	}
	return nil
}

func layerRings(g geom.Geometry) [][]geom.XY {
	var rings [][]geom.XY
	appendSeq := func(seq geom.Sequence) {
		ring := make([]geom.XY, 0, seq.Length())
		for i := 0; i < seq.Length(); i++ {
			ring = append(ring, seq.GetXY(i))
		}
		if len(ring) > 0 {
			rings = append(rings, ring)
		}
	}
	switch g.Type() {
	case geom.TypePoint:
		if xy, ok := g.MustAsPoint().XY(); ok {
			rings = append(rings, []geom.XY{xy})
		}
	case geom.TypeLineString:
		appendSeq(g.MustAsLineString().Coordinates())
	case geom.TypePolygon:
		p := g.MustAsPolygon()
		appendSeq(p.ExteriorRing().Coordinates())
		for i := 0; i < p.NumInteriorRings(); i++ {
			appendSeq(p.InteriorRingN(i).Coordinates())
		}
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			p := mp.PolygonN(i)
			appendSeq(p.ExteriorRing().Coordinates())
			for j := 0; j < p.NumInteriorRings(); j++ {
				appendSeq(p.InteriorRingN(j).Coordinates())
			}
		}
	}
	return rings
}
