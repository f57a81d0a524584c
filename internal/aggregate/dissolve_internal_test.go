package aggregate

import (
	"testing"

	"github.com/twpayne/go-geos"
)

func TestDissolveFallsBackToFirstMember(t *testing.T) {
	junk := []byte("not wkb")
	out, strategy, err := DefaultGapClosing.dissolve(geos.NewContext(), [][]byte{junk})
	if strategy != StrategyFirst {
		t.Fatalf("strategy = %s, want %s", strategy, StrategyFirst)
	}
	if err == nil {
		t.Errorf("expected the fallback to be reported")
	}
	if string(out) != string(junk) {
		t.Errorf("first member not returned")
	}
}

func TestDissolveEmpty(t *testing.T) {
	out, strategy, err := DefaultGapClosing.dissolve(geos.NewContext(), nil)
	if out != nil || strategy != StrategyEmpty || err != nil {
		t.Errorf("dissolve(nil) = %v, %s, %v", out, strategy, err)
	}
}

func TestDissolveRepairsInvalidMember(t *testing.T) {
	bowtie, err := geos.NewGeomFromWKT("POLYGON ((0 0, 0.01 0.01, 0.01 0, 0 0.01, 0 0))")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, strategy, err := DefaultGapClosing.dissolve(geos.NewContext(), [][]byte{bowtie.ToWKB()})
	if err != nil || strategy != StrategyGapClosed {
		t.Fatalf("dissolve = %s, %v", strategy, err)
	}
	g, err := geos.NewGeomFromWKB(out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !g.IsValid() {
		t.Errorf("result invalid: %s", g.IsValidReason())
	}
}

func TestGuardedRepairsWithGivenSegments(t *testing.T) {
	out, err := guarded(func() *geos.Geom {
		g, err := geos.NewGeomFromWKT("POLYGON ((0 0, 0.01 0.01, 0.01 0, 0 0.01, 0 0))")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		return g
	}, 2)
	if err != nil {
		t.Fatalf("guarded: %v", err)
	}
	g, err := geos.NewGeomFromWKB(out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !g.IsValid() {
		t.Errorf("repaired result invalid: %s", g.IsValidReason())
	}
}

func TestCombineEmptySum(t *testing.T) {
	if got := combine(nil, "PAN_2024", Sum); got != 0 {
		t.Errorf("sum of nothing = %v, want 0", got)
	}
}
