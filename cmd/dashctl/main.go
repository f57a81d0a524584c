package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load(".env.local")

	rootCmd := &cobra.Command{
		Use:   "dashctl",
		Short: "dashctl - run the precinct aggregation pipeline from the shell",
		Long: `dashctl runs the aggregation pipeline outside the HTTP server.
Sources come from CSV_PATH and SHP_PATH unless overridden by flags.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("csv", "", "tabular results file (default $CSV_PATH)")
	rootCmd.PersistentFlags().String("shp", "", "precinct geometry file (default $SHP_PATH)")

	rootCmd.AddCommand(levelsCmd())
	rootCmd.AddCommand(aggregateCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(publishCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
