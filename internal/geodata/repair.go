package geodata

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-geos"
)

// Repair steps, in the order they are tried.
const (
	StepValid     = "valid"
	StepBuffer    = "buffer"
	StepMakeValid = "make_valid"
	StepRaw       = "raw"
)

var (
	ErrEmptyGeometry = errors.New("geometry is empty")
	ErrUnrepairable  = errors.New("geometry could not be repaired")
)

// Guard runs a GEOS operation and turns a GEOS panic or an empty result into an error.
func Guard(op func() *geos.Geom) (g *geos.Geom, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("geos: %v", r)
		}
	}()
	g = op()
	if g == nil || g.IsEmpty() {
		return nil, ErrEmptyGeometry
	}
	return g, nil
}

// Valid reports whether g is a non-empty valid geometry. GEOS panics count as invalid.
func Valid(g *geos.Geom) (ok bool) {
	if g == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return !g.IsEmpty() && g.IsValid()
}

// Reason describes why g is invalid.
func Reason(g *geos.Geom) (reason string) {
	defer func() {
		if r := recover(); r != nil {
			reason = fmt.Sprint(r)
		}
	}()
	return g.IsValidReason()
}

// Repair returns g when valid, else the first valid result of a zero-width buffer or MakeValid.
// When both fail, g itself is returned along with ErrUnrepairable and StepRaw.
func Repair(g *geos.Geom) (*geos.Geom, string, error) {
	if g == nil {
		return nil, StepRaw, ErrEmptyGeometry
	}
	if Valid(g) {
		return g, StepValid, nil
	}
	if out, err := Guard(func() *geos.Geom { return g.Buffer(0, 16) }); err == nil && Valid(out) {
		return out, StepBuffer, nil
	}
	if out, err := Guard(func() *geos.Geom {
		return g.MakeValidWithParams(geos.MakeValidLinework, geos.MakeValidDiscardCollapsed)
	}); err == nil && Valid(out) {
		return out, StepMakeValid, nil
	}
	return g, StepRaw, fmt.Errorf("%w: %s", ErrUnrepairable, Reason(g))
}

// Simplify applies a topology-preserving simplification, repairing the result if needed.
func Simplify(g *geos.Geom, tolerance float64) (*geos.Geom, error) {
	out, err := Guard(func() *geos.Geom { return g.TopologyPreserveSimplify(tolerance) })
	if err != nil {
		return nil, err
	}
	if !Valid(out) {
		repaired, _, err := Repair(out)
		if err != nil {
			return nil, err
		}
		out = repaired
	}
	return out, nil
}
