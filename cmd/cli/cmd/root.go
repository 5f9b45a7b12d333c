// Package cmd provides the CLI commands for forecast-accuracy.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"forecast-accuracy/internal/config"
	"forecast-accuracy/internal/logging"
)

var (
	cfgFile string
	verbose bool

	// cfg is the loaded configuration, shared by subcommands
	cfg = config.Default()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "forecast-accuracy",
	Short: "Compute forecast accuracy metrics with dual-run reconciliation and DQ gating",
	Long: `forecast-accuracy reconciles marketing forecasts, statistical-model
forecasts, and actual bookings against a product catalog, computes
accuracy metrics per aggregation grain, and gates the run on a
data-quality rule suite.

Inputs are bundles of already-extracted rows; reading spreadsheets or
databases is upstream tooling's job.

Examples:
  forecast-accuracy run --input jan.json --month 2026-01
  forecast-accuracy run --input db.json --baseline legacy.json --month 2026-01
  forecast-accuracy trend --input year.json --month 2026-01 --window 12`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (.hcl or .json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		var err error
		if strings.HasSuffix(cfgFile, ".hcl") {
			cfg, err = config.LoadHCL(cfgFile)
		} else {
			cfg, err = config.Load(cfgFile)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("forecast-accuracy version 0.1.0")
	},
}
