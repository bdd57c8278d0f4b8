package commands

// Root command for Cobra CLI
// Registers the chart and publish subcommands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "energy-trends",
	Short: "Renewable generation trends - fetches EIA annual generation data and renders a line chart",
	Long: `energy-trends fetches annual electricity-generation statistics for renewable
sources from the EIA v2 API, reshapes them into a time series, and renders a
multi-series line chart as a PNG.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(publishCmd)
}
