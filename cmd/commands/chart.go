package commands

// Command to run the chart pipeline once: fetch, reshape, render to PNG.

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"energy-trends/internal/config"
	"energy-trends/internal/features/report"
	"energy-trends/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Fetch generation data and render the chart locally",
	Long:  `Run the full pipeline once and write the line chart to the configured output path.`,
	RunE:  runChart,
}

func runChart(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	path, err := report.Run(ctx, cfg)
	if err != nil {
		log.LogError("Pipeline failed", zap.Error(err))
		return err
	}

	log.LogSuccess("Chart written", zap.String("path", path))
	return nil
}
