package aggregate

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-geos"
)

// Strategy names the step that produced a unit's geometry.
type Strategy string

const (
	StrategyGapClosed Strategy = "gap_closed"
	StrategyUnion     Strategy = "union"
	StrategyFirst     Strategy = "first_member"
	StrategyEmpty     Strategy = "empty"
)

// GapClosing parameterizes the grow, union, shrink dissolve. Distances are in degrees.
type GapClosing struct {
	Grow      float64
	Shrink    float64
	Tolerance float64
	QuadSegs  int
}

// DefaultGapClosing closes slivers narrower than twice Grow between neighbouring precincts.
var DefaultGapClosing = GapClosing{Grow: 0.0008, Shrink: 0.0006, Tolerance: 0.002, QuadSegs: 16}

var errNoMembers = errors.New("no readable member geometry")

// guarded runs op on the worker context and returns a valid result as WKB.
// An invalid result is repaired with a zero-width buffer of quadSegs segments.
func guarded(op func() *geos.Geom, quadSegs int) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("geos: %v", r)
		}
	}()
	g := op()
	if g == nil || g.IsEmpty() {
		return nil, errNoMembers
	}
	if !g.IsValid() {
		g = g.Buffer(0, quadSegs)
		if g.IsEmpty() || !g.IsValid() {
			return nil, errors.New("result invalid after repair")
		}
	}
	return g.ToWKB(), nil
}

func parseMembers(c *geos.Context, members [][]byte, quadSegs int) []*geos.Geom {
	out := make([]*geos.Geom, 0, len(members))
	for _, b := range members {
		g, err := c.NewGeomFromWKB(b)
		if err != nil || g.IsEmpty() {
			continue
		}
		if !g.IsValid() {
			g = g.Buffer(0, quadSegs)
		}
		out = append(out, g)
	}
	return out
}

func (gc GapClosing) closeGaps(c *geos.Context, members [][]byte) *geos.Geom {
	parts := parseMembers(c, members, gc.QuadSegs)
	if len(parts) == 0 {
		return nil
	}
	grown := make([]*geos.Geom, len(parts))
	for i, g := range parts {
		grown[i] = g.Buffer(gc.Grow, gc.QuadSegs)
	}
	merged := c.NewCollection(geos.TypeIDGeometryCollection, grown).UnaryUnion()
	return merged.Buffer(-gc.Shrink, gc.QuadSegs).TopologyPreserveSimplify(gc.Tolerance)
}

func (gc GapClosing) union(c *geos.Context, members [][]byte) *geos.Geom {
	parts := parseMembers(c, members, gc.QuadSegs)
	if len(parts) == 0 {
		return nil
	}
	return c.NewCollection(geos.TypeIDGeometryCollection, parts).UnaryUnion()
}

// dissolve merges member geometries (WKB) into one. It never fails: gap closing falls back
// to a plain union, then to the first member. The returned error describes the fallbacks taken.
func (gc GapClosing) dissolve(c *geos.Context, members [][]byte) ([]byte, Strategy, error) {
	if len(members) == 0 {
		return nil, StrategyEmpty, nil
	}
	out, gapErr := guarded(func() *geos.Geom { return gc.closeGaps(c, members) }, gc.QuadSegs)
	if gapErr == nil {
		return out, StrategyGapClosed, nil
	}
	out, unionErr := guarded(func() *geos.Geom { return gc.union(c, members) }, gc.QuadSegs)
	if unionErr == nil {
		return out, StrategyUnion, fmt.Errorf("gap closing: %w", gapErr)
	}
	return members[0], StrategyFirst, fmt.Errorf("gap closing: %v; union: %w", gapErr, unionErr)
}
