package geodata

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-geos"
)

// ToGEOS converts an orb geometry into a GEOS geometry of the default context.
func ToGEOS(g orb.Geometry) (*geos.Geom, error) {
	b, err := wkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode wkb: %w", err)
	}
	return geos.NewGeomFromWKB(b)
}

// ToOrb converts a GEOS geometry into an orb geometry.
func ToOrb(g *geos.Geom) (out orb.Geometry, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("geos: %v", r)
		}
	}()
	return wkb.Unmarshal(g.ToWKB())
}

// FeatureCollection builds a GeoJSON collection from parallel geometry and property slices.
// Feature ids are the positions in the slices. A missing geometry encodes as an empty MultiPolygon.
func FeatureCollection(geoms []*geos.Geom, props []map[string]any) (*geojson.FeatureCollection, error) {
	if len(geoms) != len(props) {
		return nil, fmt.Errorf("geometry/property length mismatch: %d != %d", len(geoms), len(props))
	}
	fc := geojson.NewFeatureCollection()
	for i, g := range geoms {
		var og orb.Geometry = orb.MultiPolygon{}
		if g != nil {
			converted, err := ToOrb(g)
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			og = converted
		}
		f := geojson.NewFeature(og)
		f.ID = i
		f.Properties = geojson.Properties(props[i])
		fc.Append(f)
	}
	return fc, nil
}
