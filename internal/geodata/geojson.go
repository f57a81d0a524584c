package geodata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/paulmach/orb/geojson"
)

type crsMember struct {
	CRS *struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

func readGeoJSON(path string) (*source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	src := &source{}
	var member crsMember
	if err := json.Unmarshal(data, &member); err == nil && member.CRS != nil {
		src.crs = member.CRS.Properties.Name
	}

	seen := map[string]bool{}
	for _, f := range fc.Features {
		keys := make([]string, 0, len(f.Properties))
		for k := range f.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		attrs := make(map[string]string, len(keys))
		for _, k := range keys {
			name := electoral.NormalizeColumn(k)
			attrs[name] = propertyString(f.Properties[k])
			if !seen[name] {
				seen[name] = true
				src.columns = append(src.columns, name)
			}
		}
		src.features = append(src.features, rawFeature{attrs: attrs, geom: f.Geometry})
	}
	return src, nil
}

func propertyString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
