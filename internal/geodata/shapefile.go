package geodata

import (
	"unicode/utf8"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/text/encoding/charmap"
)

func readShapefile(path string) (*source, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = electoral.NormalizeColumn(decodeAttribute(f.String()))
	}

	src := &source{columns: names, crs: readPrj(path)}
	for reader.Next() {
		n, shape := reader.Shape()
		attrs := make(map[string]string, len(names))
		for k, name := range names {
			attrs[name] = decodeAttribute(reader.ReadAttribute(n, k))
		}
		src.features = append(src.features, rawFeature{attrs: attrs, geom: shapeGeometry(shape)})
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return src, nil
}

// shapeFields lists the normalized attribute names without reading any shape.
func shapeFields(path string) ([]string, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	var out []string
	for _, f := range reader.Fields() {
		out = append(out, electoral.NormalizeColumn(decodeAttribute(f.String())))
	}
	return out, nil
}

// decodeAttribute reads DBF text as UTF-8, falling back to ISO-8859-1.
func decodeAttribute(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	if out, err := charmap.ISO8859_1.NewDecoder().String(s); err == nil {
		return out
	}
	return s
}

func shapeGeometry(shape shp.Shape) orb.Geometry {
	switch s := shape.(type) {
	case *shp.Polygon:
		return assembleRings(s.Parts, s.Points)
	case *shp.PolygonZ:
		return assembleRings(s.Parts, s.Points)
	case *shp.PolygonM:
		return assembleRings(s.Parts, s.Points)
	}
	return nil
}

// assembleRings turns shapefile parts into polygons. Clockwise rings are shells and
// counter-clockwise rings are holes of the first shell containing them.
func assembleRings(parts []int32, points []shp.Point) orb.Geometry {
	var rings []orb.Ring
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || start >= end {
			continue
		}
		ring := make(orb.Ring, 0, end-start+1)
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}
		if len(ring) >= 4 {
			rings = append(rings, ring)
		}
	}
	if len(rings) == 0 {
		return nil
	}

	var shells orb.MultiPolygon
	var holes []orb.Ring
	for _, r := range rings {
		if r.Orientation() == orb.CW {
			shells = append(shells, orb.Polygon{r})
		} else {
			holes = append(holes, r)
		}
	}
	if len(shells) == 0 {
		// orientation not honoured by the writer
		for _, r := range holes {
			shells = append(shells, orb.Polygon{r})
		}
		holes = nil
	}
	for _, h := range holes {
		placed := false
		for i := range shells {
			if planar.RingContains(shells[i][0], h[0]) {
				shells[i] = append(shells[i], h)
				placed = true
				break
			}
		}
		if !placed {
			shells = append(shells, orb.Polygon{h})
		}
	}
	if len(shells) == 1 {
		return shells[0]
	}
	return shells
}
