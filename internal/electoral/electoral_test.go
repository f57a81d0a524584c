package electoral_test

import (
	"errors"
	"math"
	"testing"

	"github.com/danielpemor/DashWeb/internal/electoral"
)

func record(numbers map[string]float64) *electoral.Record {
	r := electoral.NewRecord()
	for k, v := range numbers {
		r.Numbers[k] = v
	}
	return r
}

func TestApplyCoalitions(t *testing.T) {
	c := &electoral.Collection{
		NumberColumns: []string{"PAN_2024", "PRI_2024", "MORENA_2024", "PT_2024", "MC_2024"},
		Records: []*electoral.Record{
			record(map[string]float64{"PAN_2024": 100, "PRI_2024": 80, "MORENA_2024": 170, "PT_2024": math.NaN(), "MC_2024": 5}),
			record(map[string]float64{"PAN_2024": 0, "PRI_2024": 0, "MORENA_2024": 0, "PT_2024": 0, "MC_2024": 0}),
			record(map[string]float64{"MC_2024": 10}),
		},
	}
	electoral.ApplyCoalitions(c)

	first := c.Records[0]
	if got := first.Number(electoral.ColOpposition); got != 180 {
		t.Errorf("opposition = %v, want 180", got)
	}
	if got := first.Number(electoral.ColRuling); got != 170 {
		t.Errorf("ruling = %v, want 170 (missing addend counts as 0)", got)
	}
	if got := first.Label(electoral.ColCoalitionWinner); got != electoral.ColOpposition {
		t.Errorf("winner = %q, want %q", got, electoral.ColOpposition)
	}
	if got := c.Records[1].Label(electoral.ColCoalitionWinner); got != electoral.NoData {
		t.Errorf("all-zero winner = %q, want %q", got, electoral.NoData)
	}
	if got := c.Records[2].Label(electoral.ColCoalitionWinner); got != electoral.ColMC {
		t.Errorf("mc-only winner = %q, want %q", got, electoral.ColMC)
	}
	if !c.HasNumber(electoral.ColMC) || !c.HasLabel(electoral.ColCoalitionWinner) {
		t.Fatalf("coalition columns missing from schema: %v %v", c.NumberColumns, c.LabelColumns)
	}
}

func TestApplyCoalitionsOverwritesStaleTotals(t *testing.T) {
	r := record(map[string]float64{"PAN_2024": 10, "MORENA_2024": 30, electoral.ColOpposition: 999})
	r.Labels[electoral.ColCoalitionWinner] = electoral.ColOpposition
	c := &electoral.Collection{
		NumberColumns: []string{"PAN_2024", "MORENA_2024", electoral.ColOpposition},
		LabelColumns:  []string{electoral.ColCoalitionWinner},
		Records:       []*electoral.Record{r},
	}
	electoral.ApplyCoalitions(c)
	if got := r.Number(electoral.ColOpposition); got != 10 {
		t.Errorf("opposition = %v, want 10", got)
	}
	if got := r.Label(electoral.ColCoalitionWinner); got != electoral.ColRuling {
		t.Errorf("winner = %q, want %q", got, electoral.ColRuling)
	}
}

func TestCoalitionWinnerTieGoesToEarliest(t *testing.T) {
	got := electoral.CoalitionWinner(map[string]float64{
		electoral.ColOpposition: 50,
		electoral.ColRuling:     50,
		electoral.ColMC:         50,
	})
	if got != electoral.ColOpposition {
		t.Errorf("tie winner = %q, want %q", got, electoral.ColOpposition)
	}
}

func TestPredominantParty(t *testing.T) {
	r := record(map[string]float64{"PAN_2024": 30, "MORENA_2024": 30, "MC_2024": 10})
	if got := electoral.PredominantParty(r); got.Name != "PAN" || got.Votes != 30 {
		t.Errorf("predominant = %+v, want PAN 30", got)
	}
	empty := record(map[string]float64{"PAN_2024": 0})
	if got := electoral.PredominantParty(empty); got.Name != electoral.NoVotes {
		t.Errorf("predominant = %q, want %q", got.Name, electoral.NoVotes)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want electoral.Level
	}{
		{"", electoral.LevelPrecinct},
		{"seccion", electoral.LevelPrecinct},
		{"municipality", electoral.LevelMunicipality},
		{"DISTRITO_FEDERAL", electoral.LevelFederalDistrict},
		{"local-district", electoral.LevelLocalDistrict},
	}
	for _, tt := range tests {
		got, err := electoral.ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := electoral.ParseLevel("county"); !errors.Is(err, electoral.ErrUnknownLevel) {
		t.Errorf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestNormalizeColumn(t *testing.T) {
	tests := map[string]string{
		"\ufeffid_entidad":    "ID_ENTIDAD",
		" Participación_PCT ": "PARTICIPACION_PCT",
		"SECCIÓN":             "SECCION",
	}
	for in, want := range tests {
		if got := electoral.NormalizeColumn(in); got != want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseID(t *testing.T) {
	if got := electoral.ParseID("012"); !got.Valid || got.Value != 12 {
		t.Errorf("ParseID(012) = %+v", got)
	}
	if got := electoral.ParseID("7.0"); !got.Valid || got.Value != 7 {
		t.Errorf("ParseID(7.0) = %+v", got)
	}
	for _, bad := range []string{"", "abc", "7.5"} {
		if got := electoral.ParseID(bad); got.Valid {
			t.Errorf("ParseID(%q) should be missing, got %+v", bad, got)
		}
	}
}

func TestFilterEntityAndEntities(t *testing.T) {
	mk := func(entity int64) *electoral.Record {
		r := electoral.NewRecord()
		r.IDs[electoral.ColEntity] = electoral.Int(entity)
		return r
	}
	c := &electoral.Collection{
		IDColumns: []string{electoral.ColEntity},
		Records:   []*electoral.Record{mk(9), mk(1), mk(9), electoral.NewRecord()},
	}
	if got := c.FilterEntity(9).Len(); got != 2 {
		t.Errorf("FilterEntity(9) = %d records, want 2", got)
	}
	got := c.Entities()
	if len(got) != 2 || got[0] != 1 || got[1] != 9 {
		t.Errorf("Entities = %v, want [1 9]", got)
	}
}

func TestStateCatalog(t *testing.T) {
	if n := len(electoral.States()); n != 32 {
		t.Fatalf("catalog has %d states, want 32", n)
	}
	if got := electoral.StateName(9); got != "Ciudad de México" {
		t.Errorf("StateName(9) = %q", got)
	}
	if got := electoral.StateName(99); got != "N/A" {
		t.Errorf("StateName(99) = %q", got)
	}
}
