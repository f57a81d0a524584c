package main

import (
	"fmt"
	"strings"

	"github.com/danielpemor/DashWeb/internal/db"
	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/snapshot"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func publishCmd() *cobra.Command {
	var release, levels, states, schema string

	cmd := &cobra.Command{
		Use:     "publish",
		Short:   "Compute views and store them as a named release in DATABASE_URL",
		Example: `  dashctl publish --release 2024-final --levels MUNICIPIO,DISTRITO_F --states 9,15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if release == "" {
				return fmt.Errorf("--release is required")
			}
			svc, cfg, err := service(ctx, cmd)
			if err != nil {
				return err
			}

			var lvls []electoral.Level
			for _, part := range strings.Split(levels, ",") {
				if strings.TrimSpace(part) == "" {
					continue
				}
				l, err := electoral.ParseLevel(part)
				if err != nil {
					return err
				}
				lvls = append(lvls, l)
			}
			ids, err := parseStates(states, func() []int64 { return loadedStates(svc) })
			if err != nil {
				return err
			}

			d, err := db.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close(d)
			store := snapshot.NewStore(d, schema)
			if err := store.Migrate(ctx); err != nil {
				return err
			}

			var published, failed int
			for _, id := range ids {
				for _, lvl := range lvls {
					state := id
					v, err := svc.View(ctx, lvl, &state)
					if err == nil {
						_, err = store.Publish(ctx, release, v)
					}
					if err != nil {
						failed++
						fmt.Printf("  %s %2d %-16s %v\n", color.New(color.FgRed).Sprint("✗"), id, lvl, err)
						continue
					}
					published++
					fmt.Printf("  %s %2d %-16s %s\n", color.New(color.FgGreen).Sprint("✓"), id, lvl, v.Status)
				}
			}
			fmt.Printf("\nPublished %d views to release %q (%d failed)\n", published, release, failed)
			if failed > 0 {
				return fmt.Errorf("%d views failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&release, "release", "", "release name")
	cmd.Flags().StringVar(&levels, "levels", string(electoral.LevelMunicipality), "comma separated levels")
	cmd.Flags().StringVar(&states, "states", "all", "comma separated state ids, or all")
	cmd.Flags().StringVar(&schema, "schema", "dashweb", "Postgres schema")
	return cmd
}
