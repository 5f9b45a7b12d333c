// Package config - HCL configuration loading
package config

import (
	"github.com/hashicorp/hcl/v2/hclsimple"

	"forecast-accuracy/internal/errors"
)

// hclFile mirrors Config for HCL decoding. Every block is optional;
// omitted blocks keep their defaults.
type hclFile struct {
	Version       *string           `hcl:"version,optional"`
	Normalization *hclNormalization `hcl:"normalization,block"`
	Tolerances    *hclTolerances    `hcl:"tolerances,block"`
	DQ            *hclDQ            `hcl:"data_quality,block"`
	Trend         *hclTrend         `hcl:"trend,block"`
}

type hclNormalization struct {
	BusinessUnitRewrites map[string]string `hcl:"business_unit_rewrites,optional"`
	CaseworkBusinessUnit *string           `hcl:"casework_business_unit,optional"`
	CaseworkLocations    map[string]string `hcl:"casework_locations,optional"`
	Geography            *string           `hcl:"geography,optional"`
}

type hclTolerances struct {
	Absolute *float64 `hcl:"absolute,optional"`
	Relative *float64 `hcl:"relative,optional"`
}

type hclDQ struct {
	Mode             *string `hcl:"mode,optional"`
	MinRowsPerSource *int    `hcl:"min_rows_per_source,optional"`
	MaxCoverageGaps  *int    `hcl:"max_coverage_gaps,optional"`
}

type hclTrend struct {
	WindowMonths *int `hcl:"window_months,optional"`
	TopN         *int `hcl:"top_n,optional"`
}

// LoadHCL loads configuration from an HCL file, layered over defaults
func LoadHCL(path string) (*Config, error) {
	var file hclFile
	if err := hclsimple.DecodeFile(path, nil, &file); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "decoding HCL config", err)
	}

	config := Default()
	if file.Version != nil {
		config.Version = *file.Version
	}
	if n := file.Normalization; n != nil {
		if n.BusinessUnitRewrites != nil {
			config.Normalization.BusinessUnitRewrites = n.BusinessUnitRewrites
		}
		if n.CaseworkBusinessUnit != nil {
			config.Normalization.CaseworkBusinessUnit = *n.CaseworkBusinessUnit
		}
		if n.CaseworkLocations != nil {
			config.Normalization.CaseworkLocations = n.CaseworkLocations
		}
		if n.Geography != nil {
			config.Normalization.Geography = *n.Geography
		}
	}
	if t := file.Tolerances; t != nil {
		if t.Absolute != nil {
			config.Tolerances.Absolute = *t.Absolute
		}
		if t.Relative != nil {
			config.Tolerances.Relative = *t.Relative
		}
	}
	if d := file.DQ; d != nil {
		if d.Mode != nil {
			config.DQ.Mode = *d.Mode
		}
		if d.MinRowsPerSource != nil {
			config.DQ.MinRowsPerSource = *d.MinRowsPerSource
		}
		if d.MaxCoverageGaps != nil {
			config.DQ.MaxCoverageGaps = *d.MaxCoverageGaps
		}
	}
	if t := file.Trend; t != nil {
		if t.WindowMonths != nil {
			config.Trend.WindowMonths = *t.WindowMonths
		}
		if t.TopN != nil {
			config.Trend.TopN = *t.TopN
		}
	}

	return config, nil
}
