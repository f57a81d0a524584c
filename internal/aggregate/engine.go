package aggregate

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/logging"
	"github.com/danielpemor/DashWeb/internal/metrics"
	"github.com/twpayne/go-geos"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Engine merges precinct records into administrative units.
type Engine struct {
	rules   *compiledRules
	gap     GapClosing
	workers int
}

type Option func(*Engine)

// WithWorkers bounds the number of groups dissolved concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithGapClosing(gc GapClosing) Option {
	return func(e *Engine) { e.gap = gc }
}

func NewEngine(rules Rules, opts ...Option) (*Engine, error) {
	compiled, err := rules.compile()
	if err != nil {
		return nil, err
	}
	e := &Engine{rules: compiled, gap: DefaultGapClosing, workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Result is an aggregated view of the data.
type Result struct {
	Units     *electoral.Collection
	Requested electoral.Level
	// Level is the level actually produced; it differs from Requested after a degraded request.
	Level     electoral.Level
	Warnings  []string
	Fallbacks int
}

type groupKey struct {
	entity int64
	unit   int64
}

type group struct {
	key     groupKey
	records []*electoral.Record
}

func (g group) label(level electoral.Level) string {
	return fmt.Sprintf("%s=%d entity=%d", level, g.key.unit, g.key.entity)
}

// Aggregate produces the units of level, restricted to region when it is set.
// The precinct level, and any level whose column is absent, return the (filtered) records as they are.
func (e *Engine) Aggregate(ctx context.Context, data *electoral.Collection, level electoral.Level, region *int64) (*Result, error) {
	start := time.Now()
	if region != nil {
		data = data.FilterEntity(*region)
	}
	res := &Result{Requested: level, Level: level}
	if !level.Aggregated() {
		res.Units = data
		return res, nil
	}

	col := level.Column()
	if !data.HasID(col) {
		msg := fmt.Sprintf("level %s is not available in the geometry source, showing %s", level, electoral.LevelPrecinct)
		logging.LogWarning("aggregate", msg)
		res.Level = electoral.LevelPrecinct
		res.Warnings = append(res.Warnings, msg)
		res.Units = data
		return res, nil
	}

	byEntity := data.HasID(electoral.ColEntity)
	groups, dropped := groupRecords(data, col, byEntity)
	logging.LogSkipped("aggregate", "records without a "+col+" key", dropped)

	geoms, strategies, err := e.dissolveAll(ctx, level, groups)
	if err != nil {
		return nil, err
	}

	policy := e.rules.policy(data.NumberColumns)
	carried := policy.Carried()
	units := &electoral.Collection{}
	if byEntity {
		units.NumberColumns = append(units.NumberColumns, electoral.ColEntity)
	}
	units.NumberColumns = append(units.NumberColumns, col)
	units.NumberColumns = append(units.NumberColumns, carried...)

	for i, g := range groups {
		r := electoral.NewRecord()
		if byEntity {
			r.Numbers[electoral.ColEntity] = float64(g.key.entity)
		}
		r.Numbers[col] = float64(g.key.unit)
		for _, c := range carried {
			r.Numbers[c] = combine(g.records, c, policy.Behavior(c))
		}
		r.Geometry = geoms[i]
		units.Records = append(units.Records, r)

		metrics.DissolveTotal.WithLabelValues(string(strategies[i])).Inc()
		if strategies[i] != StrategyGapClosed {
			res.Fallbacks++
		}
	}
	electoral.ApplyCoalitions(units)

	res.Units = units
	metrics.AggregationDurationMs.WithLabelValues(string(level)).Observe(float64(time.Since(start).Milliseconds()))
	logging.LogTransform("aggregate", data.Len(), units.Len(), time.Since(start))
	return res, nil
}

func groupRecords(data *electoral.Collection, col string, byEntity bool) ([]group, int) {
	index := map[groupKey]int{}
	var groups []group
	dropped := 0
	for _, r := range data.Records {
		unit := r.ID(col)
		entity := r.ID(electoral.ColEntity)
		if !unit.Valid || (byEntity && !entity.Valid) {
			dropped++
			continue
		}
		k := groupKey{unit: unit.Value}
		if byEntity {
			k.entity = entity.Value
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{key: k})
		}
		groups[i].records = append(groups[i].records, r)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].key.entity != groups[j].key.entity {
			return groups[i].key.entity < groups[j].key.entity
		}
		return groups[i].key.unit < groups[j].key.unit
	})
	return groups, dropped
}

// combine sums or averages col over records, skipping missing values.
// A mean over no values is NaN; a panic yields 0.
func combine(records []*electoral.Record, col string, b Behavior) (v float64) {
	defer func() {
		if recover() != nil {
			v = 0
		}
	}()
	xs := make([]float64, 0, len(records))
	for _, r := range records {
		if x := r.Number(col); !math.IsNaN(x) {
			xs = append(xs, x)
		}
	}
	switch b {
	case Sum:
		return floats.Sum(xs)
	case Mean:
		if len(xs) == 0 {
			return math.NaN()
		}
		return stat.Mean(xs, nil)
	}
	return math.NaN()
}

func toWKB(g *geos.Geom) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("geos: %v", r)
		}
	}()
	return g.ToWKB(), nil
}

func firstGeometry(records []*electoral.Record) *geos.Geom {
	for _, r := range records {
		if r.Geometry != nil {
			return r.Geometry
		}
	}
	return nil
}

// dissolveAll merges every group's geometry. Groups run concurrently, each worker owning a
// GEOS context; geometries cross contexts as WKB. Only context cancellation is returned as an error.
func (e *Engine) dissolveAll(ctx context.Context, level electoral.Level, groups []group) ([]*geos.Geom, []Strategy, error) {
	inputs := make([][][]byte, len(groups))
	for i, g := range groups {
		for _, r := range g.records {
			if r.Geometry == nil {
				continue
			}
			if b, err := toWKB(r.Geometry); err == nil {
				inputs[i] = append(inputs[i], b)
			}
		}
	}

	workers := e.workers
	if workers > len(groups) {
		workers = len(groups)
	}
	pool := make(chan *geos.Context, workers)
	for i := 0; i < workers; i++ {
		pool <- geos.NewContext()
	}

	outputs := make([][]byte, len(groups))
	strategies := make([]Strategy, len(groups))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(workers, 1))
	for i := range groups {
		eg.Go(func() (err error) {
			if err := egctx.Err(); err != nil {
				return err
			}
			c := <-pool
			defer func() { pool <- c }()
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("dissolve %s: %v", groups[i].label(level), r)
				}
			}()
			out, strategy, derr := e.gap.dissolve(c, inputs[i])
			if derr != nil {
				logging.LogFallback("aggregate", groups[i].label(level), string(strategy), derr)
			}
			outputs[i], strategies[i] = out, strategy
			return nil
		})
	}

	geoms := make([]*geos.Geom, len(groups))
	if err := eg.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		logging.LogFallback("aggregate", "dissolve stage", string(StrategyFirst), err)
		for i, g := range groups {
			geoms[i], strategies[i] = firstGeometry(g.records), StrategyFirst
		}
		return geoms, strategies, nil
	}

	for i, g := range groups {
		if outputs[i] == nil {
			geoms[i] = firstGeometry(g.records)
			continue
		}
		out, err := geos.NewGeomFromWKB(outputs[i])
		if err != nil {
			logging.LogFallback("aggregate", g.label(level), string(StrategyFirst), err)
			geoms[i], strategies[i] = firstGeometry(g.records), StrategyFirst
			continue
		}
		geoms[i] = out
	}
	return geoms, strategies, nil
}
