// Package visualizer is the query façade over the fused electoral data: map views,
// statistics, metric maps and chart series.
package visualizer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/danielpemor/DashWeb/internal/aggregate"
	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/geodata"
	"github.com/danielpemor/DashWeb/internal/logging"
	"github.com/danielpemor/DashWeb/internal/sanitize"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-geos"
)

// Status is the outcome of a request that still produced a renderable result.
type Status string

const (
	StatusOK             Status = "ok"
	StatusEmpty          Status = "empty"
	StatusMetricNotFound Status = "metric_not_found"
)

// View is the aggregated collection of one level and region.
type View struct {
	Requested electoral.Level
	Level     electoral.Level
	Region    *int64
	Units     *electoral.Collection
	Features  []sanitize.Feature
	Warnings  []string
	Status    Status
}

// FeatureCollection encodes the view as GeoJSON.
func (v *View) FeatureCollection() (*geojson.FeatureCollection, error) {
	return encodeFeatures(v.Features)
}

func encodeFeatures(features []sanitize.Feature) (*geojson.FeatureCollection, error) {
	geoms := make([]*geos.Geom, len(features))
	props := make([]map[string]any, len(features))
	for i, f := range features {
		geoms[i], props[i] = f.Geometry, f.Properties
	}
	return geodata.FeatureCollection(geoms, props)
}

// FeatureCollection encodes the metric view as GeoJSON.
func (mv *MetricView) FeatureCollection() (*geojson.FeatureCollection, error) {
	return encodeFeatures(mv.Features)
}

// Service answers one request at a time.
type Service struct {
	mu      sync.Mutex
	source  Source
	catalog Catalog
	engine  *aggregate.Engine
}

func NewService(source Source, catalog Catalog, engine *aggregate.Engine) *Service {
	return &Service{source: source, catalog: catalog, engine: engine}
}

// View aggregates the data of region to level. Missing data yields an empty view, not an error.
func (s *Service) View(ctx context.Context, level electoral.Level, region *int64) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(ctx, level, region)
}

func (s *Service) view(ctx context.Context, level electoral.Level, region *int64) (*View, error) {
	v := &View{Requested: level, Level: level, Region: region, Status: StatusEmpty}
	data, err := s.source.Data(ctx, region)
	if errors.Is(err, ErrRegionRequired) {
		v.Warnings = append(v.Warnings, err.Error())
		return v, nil
	}
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Aggregate(ctx, data, level, region)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", level, err)
	}
	v.Level, v.Units = res.Level, res.Units
	v.Warnings = append(v.Warnings, res.Warnings...)
	if res.Fallbacks > 0 {
		logging.LogWarning("visualizer", fmt.Sprintf("%d units of %s used a fallback geometry", res.Fallbacks, level))
	}
	if res.Units.Len() == 0 {
		return v, nil
	}
	v.Status = StatusOK
	if res.Level.Aggregated() {
		v.Features = sanitize.Features(res.Units)
	} else {
		v.Features = sanitize.Raw(res.Units)
	}
	return v, nil
}

// Statistics summarizes the view of level and region.
func (s *Service) Statistics(ctx context.Context, level electoral.Level, region *int64, focus string) (*Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.view(ctx, level, region)
	if err != nil {
		return nil, err
	}
	st := ComputeStatistics(v.Units, focus)
	st.Level, st.Warnings = v.Level, v.Warnings
	return st, nil
}

// MetricView prepares the map of metric for level and region.
func (s *Service) MetricView(ctx context.Context, metric string, level electoral.Level, region *int64) (*MetricView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.view(ctx, level, region)
	if err != nil {
		return nil, err
	}
	return BuildMetricView(v, metric), nil
}

func (s *Service) PartyChart(ctx context.Context, level electoral.Level, region *int64) (*PartyChart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.view(ctx, level, region)
	if err != nil {
		return nil, err
	}
	chart := ComputePartyChart(v.Units)
	chart.Level, chart.Warnings = v.Level, v.Warnings
	return chart, nil
}

func (s *Service) ParticipationChart(ctx context.Context, level electoral.Level, region *int64) (*ParticipationChart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.view(ctx, level, region)
	if err != nil {
		return nil, err
	}
	chart := ComputeParticipationChart(v.Units)
	chart.Level, chart.Warnings = v.Level, v.Warnings
	return chart, nil
}

// States lists the catalog states, flagging those present in the tabular source.
// When the source cannot be inspected every state is offered.
func (s *Service) States() []electoral.State {
	all := electoral.States()
	ids, err := s.catalog.AvailableEntities()
	if err != nil {
		logging.LogFallback("visualizer", "available states", "full catalog", err)
		for i := range all {
			all[i].Loaded = true
		}
		return all
	}
	present := make(map[int64]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	for i := range all {
		all[i].Loaded = present[all[i].ID]
	}
	return all
}

// Levels lists the levels the geometry source supports, always starting with the precinct level.
func (s *Service) Levels() []electoral.Level {
	levels, err := s.catalog.AvailableLevels()
	if err != nil || len(levels) == 0 {
		if err != nil {
			logging.LogFallback("visualizer", "available levels", string(electoral.LevelPrecinct), err)
		}
		return []electoral.Level{electoral.LevelPrecinct}
	}
	return levels
}

// Metrics lists the selectable map metrics.
func (s *Service) Metrics() []Metric {
	cols, err := s.catalog.Columns()
	if err != nil {
		logging.LogFallback("visualizer", "metric columns", "full metric list", err)
		cols = nil
	}
	return AvailableMetrics(cols)
}
