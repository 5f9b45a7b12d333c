// Package compare diffs two independently produced metric sets and
// classifies variance. Used to sign off the migrated pipeline against the
// legacy one: both runs cover the same (grain, grain_key, month) universe
// and must agree within configured tolerances.
package compare

import (
	"time"

	"github.com/shopspring/decimal"

	"forecast-accuracy/core/determinism"
	"forecast-accuracy/core/types"
	"forecast-accuracy/internal/config"
	"forecast-accuracy/internal/errors"
)

// Classification is the variance class of one comparison row
type Classification string

const (
	// ClassMatch means the delta is within the absolute tolerance
	ClassMatch Classification = "match"

	// ClassAcceptedVariance means the relative delta is within the
	// relative tolerance
	ClassAcceptedVariance Classification = "accepted_variance"

	// ClassMaterialVariance means both tolerances are exceeded, or the
	// key is a coverage gap between the two sets
	ClassMaterialVariance Classification = "material_variance"
)

// ComparisonResult is one row of a dual-run diff
type ComparisonResult struct {
	Grain    types.Grain `json:"grain"`
	GrainKey string      `json:"grain_key"`
	Month    time.Time   `json:"month"`

	// SourceValue is the value from the set under evaluation
	SourceValue decimal.Decimal `json:"source_value"`

	// BaselineValue is the value from the reference set
	BaselineValue decimal.Decimal `json:"baseline_value"`

	// Delta is source - baseline
	Delta decimal.Decimal `json:"delta"`

	// DeltaPct is delta/baseline, undefined when the baseline is zero
	DeltaPct types.Ratio `json:"delta_pct"`

	// Classification is the assigned variance class
	Classification Classification `json:"classification"`

	// InSource and InBaseline mark coverage. A key present in only one
	// set is always a material variance regardless of tolerance.
	InSource   bool `json:"in_source"`
	InBaseline bool `json:"in_baseline"`
}

// ValueSelector picks the numeric field under comparison from a metric
type ValueSelector func(types.MetricResult) decimal.Decimal

// SelectForecast compares forecast values (the migrated quantity)
func SelectForecast(m types.MetricResult) decimal.Decimal { return m.ForecastValue }

// SelectActual compares actual values
func SelectActual(m types.MetricResult) decimal.Decimal { return m.ActualValue }

// Comparator classifies deltas between two metric sets
type Comparator struct {
	absTol   decimal.Decimal
	relTol   decimal.Decimal
	selector ValueSelector
}

// New creates a Comparator with the configured tolerance pair.
// Negative tolerances are a configuration fault.
func New(tolerances config.ToleranceConfig) (*Comparator, error) {
	if tolerances.Absolute < 0 || tolerances.Relative < 0 {
		return nil, errors.Configf("tolerances must be >= 0, got absolute=%v relative=%v",
			tolerances.Absolute, tolerances.Relative)
	}
	return &Comparator{
		absTol:   tolerances.AbsoluteDecimal(),
		relTol:   tolerances.RelativeDecimal(),
		selector: SelectForecast,
	}, nil
}

// WithSelector overrides the compared field
func (c *Comparator) WithSelector(selector ValueSelector) *Comparator {
	c.selector = selector
	return c
}

// Compare produces one ComparisonResult per key present in either set,
// sorted by (grain, grain_key, month). Comparing a set against itself
// yields classification = match with zero delta for every key.
func (c *Comparator) Compare(source, baseline []types.MetricResult) []ComparisonResult {
	sourceByKey := indexByKey(source)
	baselineByKey := indexByKey(baseline)

	keys := make(map[types.MetricKey]bool, len(sourceByKey)+len(baselineByKey))
	for k := range sourceByKey {
		keys[k] = true
	}
	for k := range baselineByKey {
		keys[k] = true
	}

	results := make([]ComparisonResult, 0, len(keys))
	for key := range keys {
		srcMetric, inSource := sourceByKey[key]
		baseMetric, inBaseline := baselineByKey[key]

		var srcValue, baseValue decimal.Decimal
		var month time.Time
		if inSource {
			srcValue = c.selector(srcMetric)
			month = srcMetric.Month
		}
		if inBaseline {
			baseValue = c.selector(baseMetric)
			month = baseMetric.Month
		}

		delta := srcValue.Sub(baseValue)
		row := ComparisonResult{
			Grain:         key.Grain,
			GrainKey:      key.GrainKey,
			Month:         month,
			SourceValue:   srcValue,
			BaselineValue: baseValue,
			Delta:         delta,
			DeltaPct:      types.SafeRatio(delta, baseValue),
			InSource:      inSource,
			InBaseline:    inBaseline,
		}
		row.Classification = c.classify(row)
		results = append(results, row)
	}

	determinism.SortSlice(results, func(a, b ComparisonResult) bool {
		return a.key().Less(b.key())
	})
	return results
}

func (r ComparisonResult) key() types.MetricKey {
	return types.MetricKey{Grain: r.Grain, GrainKey: r.GrainKey, Month: types.MonthKey(r.Month)}
}

// classify applies the tolerance policy. The absolute and relative checks
// are alternatives: both must be exceeded for a material variance, so the
// more permissive one wins. A coverage gap is never an accepted variance.
func (c *Comparator) classify(row ComparisonResult) Classification {
	if row.InSource != row.InBaseline {
		return ClassMaterialVariance
	}
	if row.Delta.Abs().Cmp(c.absTol) <= 0 {
		return ClassMatch
	}
	if row.DeltaPct.Valid && row.DeltaPct.Value.Abs().Cmp(c.relTol) <= 0 {
		return ClassAcceptedVariance
	}
	return ClassMaterialVariance
}

func indexByKey(metrics []types.MetricResult) map[types.MetricKey]types.MetricResult {
	indexed := make(map[types.MetricKey]types.MetricResult, len(metrics))
	for _, m := range metrics {
		indexed[m.Key()] = m
	}
	return indexed
}
