package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/visualizer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var level, focus string
	var state int64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the vote summary of one state",
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := electoral.ParseLevel(level)
			if err != nil {
				return err
			}
			svc, _, err := service(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			st, err := svc.Statistics(cmd.Context(), lvl, &state, focus)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			printStats(state, st)
			return nil
		},
	}
	cmd.Flags().StringVarP(&level, "level", "l", string(electoral.LevelPrecinct), "aggregation level")
	cmd.Flags().Int64VarP(&state, "state", "s", 0, "state id (required)")
	cmd.Flags().StringVar(&focus, "metric", "", "current-year party column to total, e.g. PAN_2024")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

func printStats(state int64, st *visualizer.Statistics) {
	bold := color.New(color.Bold)
	bold.Printf("%s (%d) - %s\n", electoral.StateName(state), state, st.Level)
	if st.Status != visualizer.StatusOK {
		fmt.Printf("  %s\n", color.New(color.FgYellow).Sprint("no data"))
		for _, w := range st.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		return
	}
	fmt.Printf("  Units:          %d\n", st.Units)
	fmt.Printf("  Votes:          %.0f of %.0f registered\n", st.TotalVotes, st.TotalRegistered)
	fmt.Printf("  Participation:  %.2f%%\n", st.ParticipationMean)
	if st.PartyWinner != "" {
		fmt.Printf("  Party winner:   %s %.0f (runner-up %s, margin %.2f%%)\n",
			color.New(color.FgGreen).Sprint(st.PartyWinner), st.PartyWinnerVotes, st.PartyRunnerUp, st.PartyMarginPct)
	}
	fmt.Printf("  Coalition:      %s %.0f (runner-up %s, margin %.2f%%)\n",
		color.New(color.FgGreen).Sprint(st.CoalitionWinner), st.CoalitionWinnerVotes, st.CoalitionRunnerUp, st.CoalitionMarginPct)
	if st.FocusParty != nil && st.FocusVotes != nil {
		fmt.Printf("  %-15s %.0f\n", *st.FocusParty+":", *st.FocusVotes)
	}
}
