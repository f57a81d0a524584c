package geodata

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/logging"
	"github.com/danielpemor/DashWeb/internal/metrics"
	"github.com/paulmach/orb"
)

// DefaultSimplifyTolerance is the load-time simplification tolerance in degrees.
const DefaultSimplifyTolerance = 0.001

var (
	ErrUnreadableGeometry = errors.New("unreadable geometry source")
	ErrUnsupportedFormat  = errors.New("unsupported geometry format")
)

// Options controls a geometry load.
type Options struct {
	// Entity keeps only the features of one state when set.
	Entity *int64
	// DefaultCRS applies when the source does not declare one. Empty means WGS84.
	DefaultCRS string
	// SimplifyTolerance in degrees. Zero disables simplification.
	SimplifyTolerance float64
}

// idAliases maps source attribute names onto canonical identifier columns.
var idAliases = map[string]string{
	"ENTIDAD":          electoral.ColEntity,
	"ID_ENTIDAD":       electoral.ColEntity,
	"SECCION":          electoral.ColPrecinct,
	"MUNICIPIO":        electoral.ColMunicipality,
	"DISTRITO_F":       electoral.ColFederalDistrict,
	"DISTRITO_FEDERAL": electoral.ColFederalDistrict,
	"DISTRITO_L":       electoral.ColLocalDistrict,
	"DISTRITO_LOCAL":   electoral.ColLocalDistrict,
}

type rawFeature struct {
	attrs map[string]string
	geom  orb.Geometry
}

type source struct {
	columns  []string
	features []rawFeature
	crs      string
}

func read(path string) (*source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return readShapefile(path)
	case ".geojson", ".json":
		return readGeoJSON(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load reads precinct polygons into a collection with canonical identifier columns,
// geometries in WGS84, repaired and simplified.
func Load(path string, opts Options) (*electoral.Collection, error) {
	start := time.Now()
	src, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableGeometry, path, err)
	}

	crs := src.crs
	if crs == "" {
		crs = opts.DefaultCRS
	}
	if crs == "" {
		crs = WGS84
	}
	reproj, err := newReprojector(crs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableGeometry, path, err)
	}
	defer reproj.Close()

	out := &electoral.Collection{}
	idSeen := map[string]bool{}
	for _, col := range src.columns {
		if canon, ok := idAliases[col]; ok {
			idSeen[canon] = true
			continue
		}
		out.LabelColumns = append(out.LabelColumns, col)
	}
	for _, col := range electoral.IDColumns {
		if idSeen[col] {
			out.IDColumns = append(out.IDColumns, col)
		}
	}

	var nullShapes, badGeoms, unrepaired int
	for _, f := range src.features {
		rec := electoral.NewRecord()
		for _, col := range out.IDColumns {
			rec.IDs[col] = electoral.NullInt{}
		}
		for name, val := range f.attrs {
			if canon, ok := idAliases[name]; ok {
				rec.IDs[canon] = electoral.ParseID(val)
			} else {
				rec.Labels[name] = val
			}
		}
		for _, col := range out.LabelColumns {
			if _, ok := rec.Labels[col]; !ok {
				rec.Labels[col] = ""
			}
		}
		if opts.Entity != nil {
			id := rec.ID(electoral.ColEntity)
			if !id.Valid || id.Value != *opts.Entity {
				continue
			}
		}
		if !polygonal(f.geom) {
			nullShapes++
			continue
		}

		g := f.geom
		if reproj != nil {
			if g, err = reproj.Geometry(g); err != nil {
				badGeoms++
				continue
			}
		}
		geom, err := ToGEOS(g)
		if err != nil {
			badGeoms++
			continue
		}
		geom, step, err := Repair(geom)
		metrics.GeometryRepairsTotal.WithLabelValues(step).Inc()
		if err != nil {
			unrepaired++
		}
		if opts.SimplifyTolerance > 0 {
			if s, err := Simplify(geom, opts.SimplifyTolerance); err == nil {
				geom = s
			}
		}
		rec.Geometry = geom
		out.Records = append(out.Records, rec)
	}

	logging.LogSkipped("geodata", "features without polygon geometry", nullShapes)
	logging.LogSkipped("geodata", "features with unreadable geometry", badGeoms)
	if unrepaired > 0 {
		logging.LogWarning("geodata", fmt.Sprintf("%d geometries kept invalid after repair", unrepaired))
	}
	metrics.LoadDurationMs.WithLabelValues("geometry").Observe(float64(time.Since(start).Milliseconds()))
	logging.LogLoad("geodata", path, out.Len(), time.Since(start))
	return out, nil
}

func polygonal(g orb.Geometry) bool {
	switch t := g.(type) {
	case orb.Polygon:
		return len(t) > 0
	case orb.MultiPolygon:
		return len(t) > 0
	}
	return false
}

// Columns lists the canonical attribute names of a geometry source.
func Columns(path string) ([]string, error) {
	var cols []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		fields, err := shapeFields(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableGeometry, path, err)
		}
		cols = fields
	default:
		src, err := read(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableGeometry, path, err)
		}
		cols = src.columns
	}
	for i, c := range cols {
		if canon, ok := idAliases[c]; ok {
			cols[i] = canon
		}
	}
	return cols, nil
}

// AvailableLevels lists the aggregation levels the geometry source can group by.
func AvailableLevels(path string) ([]electoral.Level, error) {
	cols, err := Columns(path)
	if err != nil {
		return nil, err
	}
	have := map[string]bool{}
	for _, c := range cols {
		have[c] = true
	}
	var out []electoral.Level
	for _, l := range electoral.Levels {
		if have[l.Column()] {
			out = append(out, l)
		}
	}
	return out, nil
}
