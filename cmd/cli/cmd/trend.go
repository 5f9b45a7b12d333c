// Package cmd - trend command
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"forecast-accuracy/core/engine"
	"forecast-accuracy/core/output"
	"forecast-accuracy/core/types"
)

var (
	trendMonth  string
	trendInput  string
	trendSource string
	trendWindow int
	trendTopN   int
	trendOutput string
)

// trendCmd represents the trend command
var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Run a rolling-window accuracy trend report",
	Long: `Compute accuracy metrics independently for each month of a rolling
window ending at the anchor month, with top-N product ranking on the
latest month.

Example:
  forecast-accuracy trend --input year.json --month 2026-01 --window 12 --top-n 10`,
	RunE: runTrend,
}

func init() {
	trendCmd.Flags().StringVar(&trendMonth, "month", "", "anchor month in YYYY-MM (defaults to previous month)")
	trendCmd.Flags().StringVarP(&trendInput, "input", "i", "", "row bundle JSON file (required)")
	trendCmd.Flags().StringVar(&trendSource, "forecast-source", string(types.SourceMarketingForecast), "forecast source to evaluate")
	trendCmd.Flags().IntVar(&trendWindow, "window", 0, "window size in months (default from config)")
	trendCmd.Flags().IntVar(&trendTopN, "top-n", 0, "product ranking cutoff (default from config)")
	trendCmd.Flags().StringVarP(&trendOutput, "output", "o", "", "output JSON path (default stdout)")
	_ = trendCmd.MarkFlagRequired("input")
}

func runTrend(cmd *cobra.Command, args []string) error {
	month, err := resolveMonth(trendMonth)
	if err != nil {
		return err
	}
	if trendWindow > 0 {
		cfg.Trend.WindowMonths = trendWindow
	}
	if trendTopN > 0 {
		cfg.Trend.TopN = trendTopN
	}

	catalog, sources, err := loadBundle(trendInput)
	if err != nil {
		return err
	}
	result, err := engine.Run(cfg, &engine.RunRequest{
		Month:          month,
		ForecastSource: types.SourceKind(trendSource),
		CatalogRows:    catalog,
		SourceRows:     sources,
		WindowMonths:   cfg.Trend.WindowMonths,
		Label:          "trend",
	})
	if err != nil {
		return err
	}

	formatter := output.NewJSONFormatter()
	if err := writeOutput(trendOutput, func(f *os.File) error {
		return formatter.Render(f, result)
	}); err != nil {
		return err
	}
	return gateExit(result)
}
