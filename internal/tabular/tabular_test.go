package tabular_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/tabular"
	"github.com/xuri/excelize/v2"
)

const resultsCSV = "\ufeffid_entidad,SECCION,PAN_2024,PRI_2024,MORENA_2024,PARTICIPACIÓN_PCT,LISTA_NOMINAL_2024,TIPO_SECCION_ESTRATEGICA,GANADOR_2024\n" +
	"9,1,\"1,200\",80,-,45.5%,2000,NORMAL,PAN\n" +
	"9,2,abc,,170,120,1500,MOVILIZABLE,MORENA\n" +
	"x,3,1,1,1,50,100,NORMAL,PAN\n" +
	"15,1,10,20,30,-5,300,CONSOLIDADA,MORENA\n"

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resultados.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	c, err := tabular.Load(writeCSV(t, resultsCSV), tabular.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("got %d records, want 3 (bad key row skipped)", c.Len())
	}

	first := c.Records[0]
	if got := first.Number("PAN_2024"); got != 1200 {
		t.Errorf("PAN_2024 = %v, want 1200", got)
	}
	if got := first.Number("MORENA_2024"); got != 0 {
		t.Errorf("bare dash = %v, want 0", got)
	}
	if got := first.Number("PARTICIPACION_PCT"); got != 45.5 {
		t.Errorf("PARTICIPACION_PCT = %v, want 45.5", got)
	}
	if got := first.Label("TIPO_SECCION_ESTRATEGICA"); got != "NORMAL" {
		t.Errorf("TIPO_SECCION_ESTRATEGICA = %q", got)
	}
	if got := first.Label("GANADOR_2024"); got != "PAN" {
		t.Errorf("GANADOR_2024 = %q", got)
	}

	second := c.Records[1]
	if got := second.Number("PAN_2024"); !math.IsNaN(got) {
		t.Errorf("malformed cell = %v, want NaN", got)
	}
	if got := second.Number("PRI_2024"); !math.IsNaN(got) {
		t.Errorf("empty cell = %v, want NaN", got)
	}
	if got := second.Number("PARTICIPACION_PCT"); got != 100 {
		t.Errorf("participation clamp = %v, want 100", got)
	}
	if got := c.Records[2].Number("PARTICIPACION_PCT"); got != 0 {
		t.Errorf("negative participation clamp = %v, want 0", got)
	}

	if c.HasNumber("TIPO_SECCION_ESTRATEGICA") || c.HasNumber(electoral.ColEntity) {
		t.Errorf("label or key parsed as number: %v", c.NumberColumns)
	}
	if got := first.Number(electoral.ColOpposition); got != 1280 {
		t.Errorf("opposition = %v, want 1280", got)
	}
	if got := second.Label(electoral.ColCoalitionWinner); got != electoral.ColRuling {
		t.Errorf("coalition winner = %q, want %q", got, electoral.ColRuling)
	}
}

func TestLoadEntityFilter(t *testing.T) {
	entity := int64(15)
	c, err := tabular.Load(writeCSV(t, resultsCSV), tabular.Options{Entity: &entity})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 1 || c.Records[0].ID(electoral.ColEntity).Value != 15 {
		t.Fatalf("unexpected records after filter: %d", c.Len())
	}
}

func TestLoadMissingKeys(t *testing.T) {
	path := writeCSV(t, "ID_ENTIDAD,PAN_2024\n9,10\n")
	_, err := tabular.Load(path, tabular.Options{})
	if !errors.Is(err, tabular.ErrMissingKeyColumns) {
		t.Fatalf("expected ErrMissingKeyColumns, got %v", err)
	}
}

func TestLoadSemicolonDelimiter(t *testing.T) {
	path := writeCSV(t, "ID_ENTIDAD;SECCION;PAN_2024\n9;1;10\n")
	c, err := tabular.Load(path, tabular.Options{Comma: ';'})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 1 || c.Records[0].Number("PAN_2024") != 10 {
		t.Fatalf("unexpected result: %+v", c.Records)
	}
}

func TestAvailableEntities(t *testing.T) {
	got, err := tabular.AvailableEntities(writeCSV(t, resultsCSV))
	if err != nil {
		t.Fatalf("AvailableEntities: %v", err)
	}
	if len(got) != 2 || got[0] != 9 || got[1] != 15 {
		t.Errorf("entities = %v, want [9 15]", got)
	}
}

func TestColumns(t *testing.T) {
	cols, err := tabular.Columns(writeCSV(t, resultsCSV))
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if cols[0] != electoral.ColEntity || cols[5] != "PARTICIPACION_PCT" {
		t.Errorf("columns not normalized: %v", cols)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{" 1,234.5 ", 1234.5},
		{"33%", 33},
		{"-", 0},
		{"-4", -4},
	}
	for _, tt := range tests {
		if got := tabular.ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "n/a", "12abc"} {
		if got := tabular.ParseNumber(bad); !math.IsNaN(got) {
			t.Errorf("ParseNumber(%q) = %v, want NaN", bad, got)
		}
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resultados.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"ID_ENTIDAD", "SECCION", "PAN_2024", "MORENA_2024", "TENDENCIA_HISTORICA_PAN"},
		{9, 1, 100, 170, "CRECIMIENTO"},
		{9, 2, 80, 0, "DECLIVE"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	f.Close()

	c, err := tabular.Load(path, tabular.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("got %d records, want 2", c.Len())
	}
	if got := c.Sum("PAN_2024"); got != 180 {
		t.Errorf("PAN_2024 sum = %v, want 180", got)
	}
	if got := c.Records[1].Label("TENDENCIA_HISTORICA_PAN"); got != "DECLIVE" {
		t.Errorf("trend label = %q", got)
	}
}
