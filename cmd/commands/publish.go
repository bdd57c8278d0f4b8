package commands

// Command to render the chart and deliver it to a Telegram chat.

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"energy-trends/internal/config"
	"energy-trends/internal/features/report"
	"energy-trends/internal/infra/log"
	"energy-trends/internal/notify"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Render the chart and send it to Telegram",
	Long:  `Run the full pipeline once, write the line chart, and upload it to the configured Telegram chat.`,
	RunE:  runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Fail on incomplete Telegram config before spending an API request.
	notifier, err := notify.NewTelegramNotifier(cfg.Telegram)
	if err != nil {
		return err
	}

	path, err := report.Run(ctx, cfg)
	if err != nil {
		log.LogError("Pipeline failed", zap.Error(err))
		return err
	}

	caption := fmt.Sprintf("<b>%s</b>\n%d–%d", cfg.Chart.Title, cfg.EIA.StartYear, cfg.EIA.EndYear)
	if err := notifier.SendChart(path, caption); err != nil {
		log.LogError("Chart delivery failed", zap.Error(err))
		return err
	}

	return nil
}
