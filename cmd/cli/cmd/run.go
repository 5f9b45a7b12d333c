// Package cmd - run command
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"forecast-accuracy/core/engine"
	"forecast-accuracy/core/output"
	"forecast-accuracy/core/types"
	"forecast-accuracy/internal/logging"
)

var (
	runMonth     string
	runInput     string
	runBaseline  string
	runSource    string
	runDQMode    string
	runOutput    string
	runDQLog     string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single-month accuracy report",
	Long: `Compute accuracy metrics for one report month from a row bundle.

With --baseline, a second bundle is run independently and the two metric
sets are diffed for dual-run signoff.

Examples:
  forecast-accuracy run --input jan.json --month 2026-01
  forecast-accuracy run --input db.json --baseline legacy.json --dq-mode warn`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runMonth, "month", "", "report month in YYYY-MM (defaults to previous month)")
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "row bundle JSON file (required)")
	runCmd.Flags().StringVar(&runBaseline, "baseline", "", "baseline row bundle for dual-run comparison")
	runCmd.Flags().StringVar(&runSource, "forecast-source", string(types.SourceMarketingForecast), "forecast source to evaluate (marketing_forecast, stats_forecast)")
	runCmd.Flags().StringVar(&runDQMode, "dq-mode", "", "override configured dq mode (off, warn, fail)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output JSON path (default stdout)")
	runCmd.Flags().StringVar(&runDQLog, "dq-log", "", "optional path for the DQ audit log")
	_ = runCmd.MarkFlagRequired("input")
}

func runRun(cmd *cobra.Command, args []string) error {
	month, err := resolveMonth(runMonth)
	if err != nil {
		return err
	}
	if runDQMode != "" {
		cfg.DQ.Mode = runDQMode
	}

	catalog, sources, err := loadBundle(runInput)
	if err != nil {
		return err
	}
	request := &engine.RunRequest{
		Month:          month,
		ForecastSource: types.SourceKind(runSource),
		CatalogRows:    catalog,
		SourceRows:     sources,
		Label:          "source",
	}

	formatter := output.NewJSONFormatter()

	if runBaseline != "" {
		baselineCatalog, baselineSources, err := loadBundle(runBaseline)
		if err != nil {
			return err
		}
		dual, err := engine.DualRun(cfg, request, &engine.RunRequest{
			Month:          month,
			ForecastSource: types.SourceKind(runSource),
			CatalogRows:    baselineCatalog,
			SourceRows:     baselineSources,
			Label:          "baseline",
		})
		if err != nil {
			return err
		}
		if err := writeDQLog(formatter, dual.Source); err != nil {
			return err
		}
		if err := writeOutput(runOutput, func(f *os.File) error {
			return formatter.RenderComparison(f, dual)
		}); err != nil {
			return err
		}
		if dual.MaterialVariances() > 0 {
			logging.Sugar.Warnf("dual run has %d material variances", dual.MaterialVariances())
		}
		return gateExit(dual.Source)
	}

	result, err := engine.Run(cfg, request)
	if err != nil {
		return err
	}
	if err := writeDQLog(formatter, result); err != nil {
		return err
	}
	if err := writeOutput(runOutput, func(f *os.File) error {
		return formatter.Render(f, result)
	}); err != nil {
		return err
	}
	return gateExit(result)
}

func writeDQLog(formatter *output.JSONFormatter, result *engine.RunResult) error {
	if runDQLog == "" {
		return nil
	}
	return writeOutput(runDQLog, func(f *os.File) error {
		return formatter.RenderDQ(f, result.DQ)
	})
}

// gateExit turns a blocked gate into a non-zero exit without discarding
// the already-written artifacts.
func gateExit(result *engine.RunResult) error {
	if !result.Publishable {
		return fmt.Errorf("critical DQ checks failed (%d); run is not publishable", result.DQ.CriticalFailed)
	}
	return nil
}
