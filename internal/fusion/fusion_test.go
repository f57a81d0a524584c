package fusion_test

import (
	"errors"
	"math"
	"testing"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/fusion"
)

func geoRecord(entity, precinct, municipality int64) *electoral.Record {
	r := electoral.NewRecord()
	r.IDs[electoral.ColEntity] = electoral.Int(entity)
	r.IDs[electoral.ColPrecinct] = electoral.Int(precinct)
	r.IDs[electoral.ColMunicipality] = electoral.Int(municipality)
	return r
}

func tabRecord(entity, precinct int64, numbers map[string]float64) *electoral.Record {
	r := electoral.NewRecord()
	r.IDs[electoral.ColEntity] = electoral.Int(entity)
	r.IDs[electoral.ColPrecinct] = electoral.Int(precinct)
	for k, v := range numbers {
		r.Numbers[k] = v
	}
	return r
}

func fixtures() (*electoral.Collection, *electoral.Collection) {
	geo := &electoral.Collection{
		IDColumns: []string{electoral.ColEntity, electoral.ColPrecinct, electoral.ColMunicipality},
		Records: []*electoral.Record{
			geoRecord(9, 1, 3),
			geoRecord(9, 2, 3),
			geoRecord(9, 3, 4),
		},
	}
	tab := &electoral.Collection{
		IDColumns:     []string{electoral.ColEntity, electoral.ColPrecinct},
		NumberColumns: []string{"PAN_2024", "MORENA_2024", electoral.ColMunicipality},
		Records: []*electoral.Record{
			tabRecord(9, 1, map[string]float64{"PAN_2024": 100, "MORENA_2024": 50, electoral.ColMunicipality: 77}),
			tabRecord(9, 2, map[string]float64{"PAN_2024": 20, "MORENA_2024": 120, electoral.ColMunicipality: 77}),
			tabRecord(9, 2, map[string]float64{"PAN_2024": 999, "MORENA_2024": 0, electoral.ColMunicipality: 77}),
			tabRecord(15, 1, map[string]float64{"PAN_2024": 5}),
		},
	}
	return geo, tab
}

func TestJoinKeepsEveryGeometry(t *testing.T) {
	geo, tab := fixtures()
	out, err := fusion.Join(geo, tab)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if out.Len() != geo.Len() {
		t.Fatalf("got %d records, want %d", out.Len(), geo.Len())
	}
	if got := out.Records[0].Number("PAN_2024"); got != 100 {
		t.Errorf("matched PAN_2024 = %v, want 100", got)
	}
	if got := out.Records[1].Number("PAN_2024"); got != 20 {
		t.Errorf("duplicate tabular key should use first row, got %v", got)
	}
	if got := out.Records[2].Number("PAN_2024"); !math.IsNaN(got) {
		t.Errorf("unmatched PAN_2024 = %v, want NaN", got)
	}
	if got := out.Records[2].Label(electoral.ColCoalitionWinner); got != electoral.NoData {
		t.Errorf("unmatched coalition winner = %q, want %q", got, electoral.NoData)
	}
	if got := out.Records[1].Label(electoral.ColCoalitionWinner); got != electoral.ColRuling {
		t.Errorf("coalition winner = %q, want %q", got, electoral.ColRuling)
	}
}

func TestJoinRenamesCollisions(t *testing.T) {
	geo, tab := fixtures()
	out, err := fusion.Join(geo, tab)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	renamed := electoral.ColMunicipality + fusion.CollisionSuffix
	if !out.HasNumber(renamed) {
		t.Fatalf("expected %s in %v", renamed, out.NumberColumns)
	}
	r := out.Records[0]
	if got := r.ID(electoral.ColMunicipality); got.Value != 3 {
		t.Errorf("geometry id overwritten: %+v", got)
	}
	if got := r.Number(renamed); got != 77 {
		t.Errorf("%s = %v, want 77", renamed, got)
	}
}

func TestJoinDoesNotMutateInputs(t *testing.T) {
	geo, tab := fixtures()
	if _, err := fusion.Join(geo, tab); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, ok := geo.Records[0].Numbers["PAN_2024"]; ok {
		t.Errorf("geometry record was modified in place")
	}
}

func TestJoinNoCommonKeys(t *testing.T) {
	geo := &electoral.Collection{IDColumns: []string{electoral.ColMunicipality}}
	tab := &electoral.Collection{IDColumns: []string{electoral.ColEntity, electoral.ColPrecinct}}
	if _, err := fusion.Join(geo, tab); !errors.Is(err, fusion.ErrNoCommonKeys) {
		t.Fatalf("expected ErrNoCommonKeys, got %v", err)
	}
}

func TestJoinOnPrecinctOnly(t *testing.T) {
	geoRec := electoral.NewRecord()
	geoRec.IDs[electoral.ColPrecinct] = electoral.Int(2)
	geo := &electoral.Collection{IDColumns: []string{electoral.ColPrecinct}, Records: []*electoral.Record{geoRec}}
	_, tab := fixtures()

	out, err := fusion.Join(geo, tab)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got := out.Records[0].ID(electoral.ColEntity); !got.Valid || got.Value != 9 {
		t.Errorf("non-key tabular id should be carried over, got %+v", got)
	}
	if got := out.Records[0].Number("MORENA_2024"); got != 120 {
		t.Errorf("MORENA_2024 = %v, want 120", got)
	}
}

func TestDedupIdempotent(t *testing.T) {
	c := &electoral.Collection{
		IDColumns: []string{electoral.ColEntity, electoral.ColPrecinct},
		Records: []*electoral.Record{
			tabRecord(9, 1, map[string]float64{"PAN_2024": 1}),
			tabRecord(9, 1, map[string]float64{"PAN_2024": 2}),
			tabRecord(9, 2, nil),
			tabRecord(15, 1, nil),
		},
	}
	once := fusion.Dedup(c)
	twice := fusion.Dedup(once)
	if once.Len() != 3 || twice.Len() != 3 {
		t.Fatalf("dedup lengths = %d, %d; want 3, 3", once.Len(), twice.Len())
	}
	if got := once.Records[0].Number("PAN_2024"); got != 1 {
		t.Errorf("dedup kept %v, want first occurrence", got)
	}
	for i := range once.Records {
		if once.Records[i] != twice.Records[i] {
			t.Errorf("record %d differs after second dedup", i)
		}
	}
}
