package report

// Orchestrates the pipeline: fetch -> normalize -> reshape -> render.
// Strictly forward, one pass; any stage error aborts the run and no chart
// file is produced.

import (
	"context"

	"energy-trends/internal/clients_api/eia"
	"energy-trends/internal/config"
	"energy-trends/internal/features/charts"
	"energy-trends/internal/features/generation"
	"energy-trends/internal/infra/log"

	"go.uber.org/zap"
)

// Run executes one full pipeline pass and returns the path of the rendered
// chart.
func Run(ctx context.Context, cfg *config.Config) (string, error) {
	client := eia.NewClient(cfg.EIA)

	resp, err := client.GetGeneration(ctx, eia.GenerationQuery{
		Frequency: cfg.EIA.Frequency,
		StartYear: cfg.EIA.StartYear,
		EndYear:   cfg.EIA.EndYear,
		FuelTypes: cfg.EIA.FuelTypes,
	})
	if err != nil {
		return "", err
	}

	flat, stats, err := generation.Normalize(resp)
	if err != nil {
		return "", err
	}
	log.LogInfo("Flat table built",
		zap.Int("rows", len(flat)),
		zap.Int("excluded", stats.Excluded),
		zap.Int("missing_values", stats.MissingValues))

	wide := generation.Pivot(flat, generation.PreferredOrder)
	wide.ForwardFillInterior()
	log.LogInfo("Wide table built",
		zap.Int("periods", len(wide.Periods)),
		zap.Int("series", len(wide.Series)))

	err = charts.RenderLineChart(wide, charts.Options{
		OutputPath:  cfg.Chart.OutputPath,
		Title:       cfg.Chart.Title,
		XAxisLabel:  "Year",
		YAxisLabel:  "Generation (Thousand Megawatthours)",
		LegendTitle: "Energy Source",
		Width:       cfg.Chart.Width,
		Height:      cfg.Chart.Height,
	})
	if err != nil {
		return "", err
	}

	return cfg.Chart.OutputPath, nil
}
