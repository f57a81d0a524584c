package visualizer

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/goccy/go-yaml"
)

// Special map metrics.
const (
	MetricPartyWinner = "PARTY_WINNER"
	MetricStrategic   = "TIPO_SECCION_ESTRATEGICA"
	trendPrefix       = "TENDENCIA_HISTORICA_"
)

// partyMetricPrefixes are per-party metric families, named PREFIX + party.
var partyMetricPrefixes = []string{
	"RETENCION_", "CRECIMIENTO_AJUSTADO_", "SHARE_2024_", "SHARE_2018_",
	"CAMBIO_SHARE_", "VOTOS_GANADOS_", "VOTOS_PERDIDOS_", "VOLATILIDAD_HISTORICA_",
}

var competitivenessMetrics = []string{
	"MARGEN_VICTORIA_2024", "COMPETITIVIDAD", "VOTOS_PARA_VOLTEAR",
	"PRIORIDAD_MOVILIZACION", "VOLATILIDAD_TOTAL", "NEP_2024", "HHI_2024",
}

var baseMetrics = []string{
	"LISTA_NOMINAL_2024", "TOTAL_VOTOS_2024", "LISTA_NOMINAL_2018",
	"TOTAL_VOTOS_2018", "LISTA_NOMINAL_2012", "TOTAL_VOTOS_2012",
	"VOTOS_NULOS_2024",
}

// Metric is one selectable map metric.
type Metric struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type description struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type descriptions struct {
	Metrics        map[string]description `yaml:"metrics"`
	PartyTemplates map[string]description `yaml:"party_templates"`
}

//go:embed metrics.yaml
var metricsYAML []byte

var metricDescriptions = mustDescriptions(metricsYAML)

func mustDescriptions(data []byte) descriptions {
	var d descriptions
	if err := yaml.Unmarshal(data, &d); err != nil {
		panic(fmt.Sprintf("visualizer: embedded metric descriptions: %v", err))
	}
	return d
}

// candidateMetrics lists every known metric in menu order.
func candidateMetrics() []string {
	out := []string{electoral.ColParticipation, electoral.ColAbstention}
	for _, y := range electoral.Years {
		for _, p := range electoral.BaseParties {
			out = append(out, electoral.PartyColumn(p, y))
		}
	}
	for _, p := range electoral.BaseParties {
		for _, prefix := range partyMetricPrefixes {
			out = append(out, prefix+p)
		}
	}
	out = append(out, competitivenessMetrics...)
	out = append(out, baseMetrics...)
	out = append(out, MetricStrategic)
	for _, p := range electoral.BaseParties {
		out = append(out, trendPrefix+p)
	}
	for _, c := range electoral.Coalitions {
		out = append(out, electoral.PartyColumn(c, electoral.CurrentYear))
	}
	return out
}

// AvailableMetrics filters the known metrics by the tabular columns present.
// With no column information every known metric is offered. The party winner map is always last.
func AvailableMetrics(columns []string) []Metric {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[electoral.NormalizeColumn(c)] = true
	}
	var out []Metric
	for _, id := range candidateMetrics() {
		if len(columns) == 0 || present[id] {
			out = append(out, describe(id))
		}
	}
	return append(out, describe(MetricPartyWinner))
}

func describe(id string) Metric {
	if d, ok := metricDescriptions.Metrics[id]; ok {
		return Metric{ID: id, Name: d.Name, Description: d.Description}
	}
	for prefix, d := range metricDescriptions.PartyTemplates {
		if party, ok := strings.CutPrefix(id, prefix); ok {
			return Metric{
				ID:          id,
				Name:        strings.ReplaceAll(d.Name, "{party}", party),
				Description: strings.ReplaceAll(d.Description, "{party}", party),
			}
		}
	}
	return Metric{ID: id, Name: id}
}
