package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func levelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List the aggregation levels and states the sources support",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := service(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			fmt.Println("Levels:")
			for _, l := range svc.Levels() {
				fmt.Printf("  %s\n", l)
			}
			fmt.Println()
			fmt.Println("States:")
			for _, st := range svc.States() {
				mark := color.New(color.FgYellow).Sprint("-")
				if st.Loaded {
					mark = color.New(color.FgGreen).Sprint("✓")
				}
				fmt.Printf("  %s %2d %s\n", mark, st.ID, st.Name)
			}
			return nil
		},
	}
}
