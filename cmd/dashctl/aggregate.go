package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func aggregateCmd() *cobra.Command {
	var level, out string
	var state int64

	cmd := &cobra.Command{
		Use:     "aggregate",
		Short:   "Aggregate one state to a level and write GeoJSON",
		Example: `  dashctl aggregate --state 9 --level MUNICIPIO -o cdmx_municipios.geojson`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := electoral.ParseLevel(level)
			if err != nil {
				return err
			}
			svc, _, err := service(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			start := time.Now()
			v, err := svc.View(cmd.Context(), lvl, &state)
			if err != nil {
				return err
			}
			fc, err := v.FeatureCollection()
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := json.NewEncoder(w).Encode(fc); err != nil {
				return fmt.Errorf("write geojson: %w", err)
			}

			for _, warn := range v.Warnings {
				fmt.Fprintf(os.Stderr, "%s %s\n", color.New(color.FgYellow).Sprint("warning:"), warn)
			}
			fmt.Fprintf(os.Stderr, "%s %d %s units of state %d (%s) in %s\n",
				color.New(color.FgGreen).Sprint(strings.ToUpper(string(v.Status))),
				len(fc.Features), v.Level, state, electoral.StateName(state), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&level, "level", "l", string(electoral.LevelMunicipality), "aggregation level")
	cmd.Flags().Int64VarP(&state, "state", "s", 0, "state id (required)")
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file, - for stdout")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}
