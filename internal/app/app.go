// Package app wires the configured sources, aggregation engine and query façade.
package app

import (
	"context"
	"fmt"

	"github.com/danielpemor/DashWeb/internal/aggregate"
	"github.com/danielpemor/DashWeb/internal/config"
	"github.com/danielpemor/DashWeb/internal/visualizer"
)

// Build returns the query façade for cfg. Eager mode reads and fuses every state before returning.
func Build(ctx context.Context, cfg config.Config) (*visualizer.Service, error) {
	rules, err := aggregate.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load aggregation rules: %w", err)
	}
	engine, err := aggregate.NewEngine(rules, aggregate.WithWorkers(cfg.DissolveWorkers))
	if err != nil {
		return nil, fmt.Errorf("compile aggregation rules: %w", err)
	}

	files := visualizer.Files{
		TabularPath:       cfg.TabularPath,
		GeometryPath:      cfg.GeometryPath,
		DefaultCRS:        cfg.SourceCRS,
		SimplifyTolerance: cfg.Simplify,
	}

	var source visualizer.Source
	switch cfg.LoadMode {
	case config.LoadEager:
		eager, err := visualizer.NewEagerSource(ctx, files)
		if err != nil {
			return nil, err
		}
		source = eager
	default:
		source = visualizer.NewLazySource(files, cfg.CacheSize)
	}
	return visualizer.NewService(source, files, engine), nil
}
