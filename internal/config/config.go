// Package config provides configuration management.
// Engines receive configuration by value at invocation; nothing in the
// core reads configuration ambiently.
package config

import (
	"encoding/json"
	"os"

	"github.com/shopspring/decimal"

	"forecast-accuracy/internal/errors"
	"forecast-accuracy/internal/logging"
)

// Data-quality enforcement modes. "fail" marks the run unpublishable on a
// critical failure, "warn" records and surfaces failures without blocking,
// "off" still runs every check for audit but never alters the gate.
const (
	DQModeOff  = "off"
	DQModeWarn = "warn"
	DQModeFail = "fail"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Normalization contains business normalization tables
	Normalization NormalizationConfig `json:"normalization"`

	// Tolerances contains dual-run comparison tolerances
	Tolerances ToleranceConfig `json:"tolerances"`

	// DQ contains data-quality gate settings
	DQ DQConfig `json:"data_quality"`

	// Trend contains rolling-window settings
	Trend TrendConfig `json:"trend"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// NormalizationConfig contains the business normalization tables.
// These are explicit immutable inputs to the normalizer, not ambient
// lookups, so tests can supply synthetic tables.
type NormalizationConfig struct {
	// BusinessUnitRewrites maps raw BU labels (upper-cased) to canonical
	// codes. Unmapped labels pass through unchanged and are flagged for
	// DQ review.
	BusinessUnitRewrites map[string]string `json:"business_unit_rewrites"`

	// CaseworkBusinessUnit is the canonical BU code subject to the
	// location-based casework split
	CaseworkBusinessUnit string `json:"casework_business_unit"`

	// CaseworkLocations maps location codes (upper-cased) to derived
	// sub-entity labels under the casework business unit
	CaseworkLocations map[string]string `json:"casework_locations"`

	// Geography is the single fixed geography label for this report.
	// There is no geographic splitting; rows carrying a different label
	// are excluded and counted.
	Geography string `json:"geography"`
}

// ToleranceConfig contains the dual-run comparison tolerance pair
type ToleranceConfig struct {
	// Absolute is the absolute tolerance in value units
	Absolute float64 `json:"absolute"`

	// Relative is the relative tolerance as a fraction of the baseline
	Relative float64 `json:"relative"`
}

// AbsoluteDecimal returns the absolute tolerance as a decimal
func (t ToleranceConfig) AbsoluteDecimal() decimal.Decimal {
	return decimal.NewFromFloat(t.Absolute)
}

// RelativeDecimal returns the relative tolerance as a decimal
func (t ToleranceConfig) RelativeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(t.Relative)
}

// DQConfig contains data-quality settings
type DQConfig struct {
	// Mode is the enforcement mode (off, warn, fail)
	Mode string `json:"mode"`

	// MinRowsPerSource is the row-count floor per source
	MinRowsPerSource int `json:"min_rows_per_source"`

	// MaxCoverageGaps is the allowed count of forecast-vs-actual
	// coverage gaps at the product grain
	MaxCoverageGaps int `json:"max_coverage_gaps"`
}

// TrendConfig contains rolling-window settings
type TrendConfig struct {
	// WindowMonths is the rolling window size
	WindowMonths int `json:"window_months"`

	// TopN is the product ranking cutoff
	TopN int `json:"top_n"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Normalization: NormalizationConfig{
			BusinessUnitRewrites: map[string]string{
				"DIVISION": "D200",
			},
			CaseworkBusinessUnit: "D200",
			CaseworkLocations: map[string]string{
				"LOC1020": "ARTISAN CASEWORK",
				"LOC1080": "SYNTHESIS CASEWORK",
			},
			Geography: "AMERICAS",
		},
		Tolerances: ToleranceConfig{
			Absolute: 0.01,
			Relative: 0.005,
		},
		DQ: DQConfig{
			Mode:             DQModeFail,
			MinRowsPerSource: 1,
			MaxCoverageGaps:  25,
		},
		Trend: TrendConfig{
			WindowMonths: 12,
			TopN:         10,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a JSON file, layered over defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration before any row processing begins.
// Invalid settings are fatal at engine-invocation time.
func (c *Config) Validate() error {
	if c.Tolerances.Absolute < 0 {
		return errors.Configf("absolute tolerance must be >= 0, got %v", c.Tolerances.Absolute)
	}
	if c.Tolerances.Relative < 0 {
		return errors.Configf("relative tolerance must be >= 0, got %v", c.Tolerances.Relative)
	}
	switch c.DQ.Mode {
	case DQModeOff, DQModeWarn, DQModeFail:
	default:
		return errors.Configf("unrecognized dq_mode %q", c.DQ.Mode)
	}
	if c.DQ.MinRowsPerSource < 0 {
		return errors.Configf("min_rows_per_source must be >= 0, got %d", c.DQ.MinRowsPerSource)
	}
	if c.DQ.MaxCoverageGaps < 0 {
		return errors.Configf("max_coverage_gaps must be >= 0, got %d", c.DQ.MaxCoverageGaps)
	}
	if c.Trend.WindowMonths < 1 {
		return errors.Configf("window_months must be >= 1, got %d", c.Trend.WindowMonths)
	}
	if c.Trend.TopN < 1 {
		return errors.Configf("top_n must be >= 1, got %d", c.Trend.TopN)
	}
	if c.Normalization.Geography == "" {
		return errors.Config("geography label must not be empty")
	}
	return nil
}
