package visualizer

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/sanitize"
	"gonum.org/v1/gonum/stat"
)

// MetricKind is how a metric is drawn.
type MetricKind string

const (
	KindWinner     MetricKind = "winner"
	KindCategory   MetricKind = "category"
	KindContinuous MetricKind = "continuous"
)

// Properties added to the features of a metric view.
const (
	PropWinnerParty = "PARTIDO_PREDOMINANTE"
	PropWinnerVotes = "VOTOS_GANADOR"
	PropWinnerPct   = "PORCENTAJE_GANADOR"
	PropPartyTotal  = "TOTAL_VOTOS"
	PropShare       = "PORCENTAJE"
)

// winnerAliases select the party winner map.
var winnerAliases = map[string]bool{MetricPartyWinner: true, "POR PARTIDOS": true, "POR_PARTIDOS": true}

var strategicOrder = []string{
	"CRITICA_CONSOLIDAR", "DEFENSIVA_RIESGO", "OPORTUNIDAD_EXPANSION",
	"MOVILIZABLE", "NORMAL", "CONSOLIDADA", "BAJA_PRIORIDAD",
}

var trendOrder = []string{
	"CRECIMIENTO_SOSTENIDO", "EXPANSION_RAPIDA", "CRECIMIENTO",
	"RECUPERACION", "VOLATIL", "DECLIVE", "DECLIVE_SOSTENIDO",
	"DECLIVE_RAPIDO", "AUGE_Y_CAIDA",
}

// absoluteMetrics are count-like metrics; a metric matches when it contains one of them.
var absoluteMetrics = []string{
	"LISTA_NOMINAL_2024", "LISTA_NOMINAL_2018", "LISTA_NOMINAL_2012",
	"TOTAL_VOTOS_2024", "TOTAL_VOTOS_2018", "TOTAL_VOTOS_2012",
	"VOTOS_PARA_VOLTEAR", "MARGEN_VICTORIA_2024",
	"VOTOS_GANADOS_", "VOTOS_PERDIDOS_",
	"VOLATILIDAD_HISTORICA_", "VOLATILIDAD_TOTAL",
	"NEP_2024", "HHI_2024",
	"PRIORIDAD_MOVILIZACION", "COMPETITIVIDAD",
	"CANDIDATO_NO_REGISTRADO_2024", "VOTOS_NULOS_2024",
}

// MetricView is a view prepared for one map metric.
type MetricView struct {
	Metric   string          `json:"metric"`
	Status   Status          `json:"status"`
	Kind     MetricKind      `json:"kind,omitempty"`
	Level    electoral.Level `json:"level"`
	Warnings []string        `json:"warnings,omitempty"`
	// Column is the feature property holding the drawn value.
	Column     string     `json:"column,omitempty"`
	Range      [2]float64 `json:"range"`
	Diverging  bool       `json:"diverging,omitempty"`
	Percent    bool       `json:"percent,omitempty"`
	Categories []string   `json:"categories,omitempty"`

	Features []sanitize.Feature `json:"-"`
}

// BuildMetricView derives the map of metric from a computed view. The features of v are
// annotated in place.
func BuildMetricView(v *View, metric string) *MetricView {
	mv := &MetricView{Metric: metric, Status: v.Status, Level: v.Level, Warnings: v.Warnings}
	if v.Status != StatusOK {
		return mv
	}
	units := v.Units
	mv.Features = v.Features

	switch {
	case winnerAliases[strings.ToUpper(strings.TrimSpace(metric))]:
		winnerMap(mv, units)
	case metric == MetricStrategic && units.HasLabel(metric):
		categoryMap(mv, units, metric, strategicOrder)
	case strings.Contains(metric, "TENDENCIA_HISTORICA") && units.HasLabel(metric):
		categoryMap(mv, units, metric, trendOrder)
	case !units.HasColumn(metric):
		mv.Status = StatusMetricNotFound
	default:
		continuousMap(mv, units, metric)
	}
	return mv
}

func winnerMap(mv *MetricView, units *electoral.Collection) {
	cols := currentPartyColumns(units)
	if len(cols) == 0 {
		mv.Status = StatusMetricNotFound
		return
	}
	mv.Kind, mv.Column = KindWinner, PropWinnerParty

	seen := map[string]bool{}
	for i, r := range units.Records {
		var total float64
		for _, col := range cols {
			total += r.Value(col)
		}
		w := electoral.Ranked{Name: electoral.NoVotes}
		if total > 0 {
			w = electoral.PredominantParty(r)
		}
		pct := 0.0
		if total > 0 {
			pct = w.Votes / total * 100
		}
		p := mv.Features[i].Properties
		p[PropWinnerParty] = w.Name
		p[PropWinnerVotes] = w.Votes
		p[PropWinnerPct] = pct
		p[PropPartyTotal] = total
		seen[w.Name] = true
	}
	for _, party := range electoral.BaseParties {
		if seen[party] {
			mv.Categories = append(mv.Categories, party)
		}
	}
}

func categoryMap(mv *MetricView, units *electoral.Collection, metric string, order []string) {
	mv.Kind, mv.Column = KindCategory, metric
	seen := map[string]bool{}
	for _, r := range units.Records {
		seen[r.Label(metric)] = true
	}
	for _, c := range order {
		if seen[c] {
			mv.Categories = append(mv.Categories, c)
		}
	}
}

func isPercentMetric(metric string) bool {
	for _, s := range []string{"PARTICIPACION", "ABSTENCION", "PCT", "SHARE", "RETENCION", "CRECIMIENTO_AJUSTADO", "CAMBIO_SHARE"} {
		if strings.Contains(metric, s) {
			return true
		}
	}
	return false
}

func isAbsoluteMetric(metric string) bool {
	for _, s := range absoluteMetrics {
		if strings.Contains(metric, s) {
			return true
		}
	}
	return false
}

// metricYear is the election year a metric refers to, the current one by default.
func metricYear(metric string) int {
	for _, y := range electoral.Years {
		if strings.HasSuffix(metric, "_"+strconv.Itoa(y)) {
			return y
		}
	}
	return electoral.CurrentYear
}

func continuousMap(mv *MetricView, units *electoral.Collection, metric string) {
	mv.Kind, mv.Column = KindContinuous, metric
	values := make([]float64, units.Len())
	for i, r := range units.Records {
		values[i] = r.Number(metric)
	}

	switch {
	case isPercentMetric(metric):
		mv.Percent = true
		lo, hi := bounds(values)
		if lo < 0 {
			m := math.Max(math.Abs(lo), math.Abs(hi))
			clip(values, -m, m)
			mv.Range, mv.Diverging = [2]float64{-m, m}, true
		} else {
			clip(values, 0, 100)
			mv.Range = [2]float64{0, 100}
		}
	case isAbsoluteMetric(metric):
		for i, v := range values {
			if v == 0 {
				values[i] = math.NaN()
			}
		}
		mv.Range = [2]float64{0, quantile95(values)}
	default:
		totalCol := electoral.TotalVotesColumn(metricYear(metric))
		if !units.HasNumber(totalCol) {
			for i, v := range values {
				if math.IsNaN(v) {
					values[i] = 0
				}
			}
			mv.Range = [2]float64{0, quantile95(values)}
			break
		}
		mv.Column, mv.Percent = PropShare, true
		for i, r := range units.Records {
			total := r.Number(totalCol)
			switch {
			case !(total > 0):
				values[i] = math.NaN()
			case values[i] == 0:
				values[i] = math.NaN()
			default:
				values[i] = values[i] / total * 100
			}
		}
		mv.Range = [2]float64{0, quantile95(values)}
	}

	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			mv.Features[i].Properties[mv.Column] = nil
		} else {
			mv.Features[i].Properties[mv.Column] = v
		}
	}
}

// bounds returns the smallest and largest present values, NaN when there are none.
func bounds(values []float64) (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi
}

func clip(values []float64, lo, hi float64) {
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		values[i] = math.Min(math.Max(v, lo), hi)
	}
}

// quantile95 is the 95th percentile of the present values, 0 when there are none.
func quantile95(values []float64) float64 {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return 0
	}
	sort.Float64s(xs)
	return stat.Quantile(0.95, stat.LinInterp, xs, nil)
}
