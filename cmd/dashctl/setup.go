package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielpemor/DashWeb/internal/app"
	"github.com/danielpemor/DashWeb/internal/config"
	"github.com/danielpemor/DashWeb/internal/visualizer"
	"github.com/spf13/cobra"
)

// loadConfig reads the environment and applies the source path flags.
// Commands always run lazily: each one touches a handful of states.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.LoadFromEnv()
	if v, _ := cmd.Flags().GetString("csv"); v != "" {
		cfg.TabularPath = v
	}
	if v, _ := cmd.Flags().GetString("shp"); v != "" {
		cfg.GeometryPath = v
	}
	cfg.LoadMode = config.LoadLazy
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func service(ctx context.Context, cmd *cobra.Command) (*visualizer.Service, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	svc, err := app.Build(ctx, cfg)
	return svc, cfg, err
}

// parseStates accepts a comma separated list of state ids or "all".
func parseStates(s string, all func() []int64) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return all(), nil
	}
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid state %q", part)
		}
		out = append(out, id)
	}
	return out, nil
}

func loadedStates(svc *visualizer.Service) []int64 {
	var ids []int64
	for _, st := range svc.States() {
		if st.Loaded {
			ids = append(ids, st.ID)
		}
	}
	return ids
}
