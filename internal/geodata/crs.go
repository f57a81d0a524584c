package geodata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/twpayne/go-proj/v10"
)

// WGS84 is the canonical CRS of every loaded geometry.
const WGS84 = "EPSG:4326"

// IsWGS84 reports whether a CRS definition already is geographic WGS84 in lon/lat order.
func IsWGS84(def string) bool {
	d := strings.ToUpper(strings.TrimSpace(def))
	if d == "" {
		return false
	}
	switch d {
	case "EPSG:4326", "OGC:CRS84", "CRS:84", "WGS84", "URN:OGC:DEF:CRS:OGC:1.3:CRS84", "URN:OGC:DEF:CRS:EPSG::4326":
		return true
	}
	if strings.Contains(d, "PROJCS") || strings.Contains(d, "PROJCRS") {
		return false
	}
	return (strings.Contains(d, "GEOGCS") || strings.Contains(d, "GEOGCRS")) &&
		(strings.Contains(d, "WGS_1984") || strings.Contains(d, "WGS 84") || strings.Contains(d, "WGS84"))
}

// readPrj returns the WKT next to a shapefile, "" when there is none.
func readPrj(shpPath string) string {
	base := strings.TrimSuffix(shpPath, filepath.Ext(shpPath))
	for _, ext := range []string{".prj", ".PRJ"} {
		if b, err := os.ReadFile(base + ext); err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	return ""
}

// reprojector converts coordinates from a source CRS to WGS84 lon/lat.
type reprojector struct {
	pj *proj.PJ
}

// newReprojector returns nil when source already is WGS84.
func newReprojector(source string) (*reprojector, error) {
	if IsWGS84(source) {
		return nil, nil
	}
	pj, err := proj.NewCRSToCRS(source, WGS84, nil)
	if err != nil {
		return nil, fmt.Errorf("crs %q: %w", source, err)
	}
	norm, err := pj.NormalizeForVisualization()
	pj.Destroy()
	if err != nil {
		return nil, fmt.Errorf("normalize crs %q: %w", source, err)
	}
	return &reprojector{pj: norm}, nil
}

func (r *reprojector) Geometry(g orb.Geometry) (orb.Geometry, error) {
	var firstErr error
	out := project.Geometry(orb.Clone(g), func(p orb.Point) orb.Point {
		c, err := r.pj.Forward(proj.NewCoord(p[0], p[1], 0, 0))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return p
		}
		return orb.Point{c.X(), c.Y()}
	})
	return out, firstErr
}

func (r *reprojector) Close() {
	if r != nil && r.pj != nil {
		r.pj.Destroy()
	}
}
