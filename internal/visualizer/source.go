package visualizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielpemor/DashWeb/internal/cache"
	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/fusion"
	"github.com/danielpemor/DashWeb/internal/geodata"
	"github.com/danielpemor/DashWeb/internal/logging"
	"github.com/danielpemor/DashWeb/internal/tabular"
)

// DefaultCacheSize is the number of regions a LazySource keeps resident.
const DefaultCacheSize = 3

var ErrRegionRequired = errors.New("a state must be selected when data is loaded per state")

// Loader produces the fused precinct collection, optionally for one state.
type Loader interface {
	Load(ctx context.Context, region *int64) (*electoral.Collection, error)
}

// Catalog describes the sources without loading them.
type Catalog interface {
	AvailableEntities() ([]int64, error)
	AvailableLevels() ([]electoral.Level, error)
	Columns() ([]string, error)
}

// Files loads and fuses a tabular file with a geometry file.
type Files struct {
	TabularPath       string
	GeometryPath      string
	DefaultCRS        string
	SimplifyTolerance float64
}

func (f Files) Load(ctx context.Context, region *int64) (*electoral.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	tab, err := tabular.Load(f.TabularPath, tabular.Options{Entity: region})
	if err != nil {
		return nil, fmt.Errorf("load tabular source: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	geo, err := geodata.Load(f.GeometryPath, geodata.Options{
		Entity:            region,
		DefaultCRS:        f.DefaultCRS,
		SimplifyTolerance: f.SimplifyTolerance,
	})
	if err != nil {
		return nil, fmt.Errorf("load geometry source: %w", err)
	}
	fused, err := fusion.Join(geo, tab)
	if err != nil {
		return nil, fmt.Errorf("fuse sources: %w", err)
	}
	subject := "all states"
	if region != nil {
		subject = fmt.Sprintf("state %d (%s)", *region, electoral.StateName(*region))
	}
	logging.LogLoad("visualizer", subject, fused.Len(), time.Since(start))
	return fused, nil
}

func (f Files) AvailableEntities() ([]int64, error) {
	return tabular.AvailableEntities(f.TabularPath)
}

func (f Files) AvailableLevels() ([]electoral.Level, error) {
	return geodata.AvailableLevels(f.GeometryPath)
}

func (f Files) Columns() ([]string, error) {
	return tabular.Columns(f.TabularPath)
}

// Source hands the façade the precinct collection of a request.
type Source interface {
	Data(ctx context.Context, region *int64) (*electoral.Collection, error)
}

// EagerSource holds the whole fused dataset loaded at start.
type EagerSource struct {
	data *electoral.Collection
}

func NewEagerSource(ctx context.Context, loader Loader) (*EagerSource, error) {
	data, err := loader.Load(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &EagerSource{data: data}, nil
}

func (s *EagerSource) Data(_ context.Context, region *int64) (*electoral.Collection, error) {
	if region == nil {
		return s.data, nil
	}
	return s.data.FilterEntity(*region), nil
}

// LazySource loads one state per request and keeps the most recently inserted states resident.
type LazySource struct {
	loader Loader
	states *cache.FIFO[int64, *electoral.Collection]
}

func NewLazySource(loader Loader, size int) *LazySource {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &LazySource{loader: loader, states: cache.NewFIFO[int64, *electoral.Collection](size)}
}

func (s *LazySource) Data(ctx context.Context, region *int64) (*electoral.Collection, error) {
	if region == nil {
		return nil, ErrRegionRequired
	}
	return s.states.GetOrLoad(*region, func(id int64) (*electoral.Collection, error) {
		return s.loader.Load(ctx, &id)
	})
}

// Resident lists the cached states, oldest first.
func (s *LazySource) Resident() []int64 {
	return s.states.Keys()
}
