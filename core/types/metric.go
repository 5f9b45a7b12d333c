// Package types - Accuracy metric results
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricResult holds accuracy metrics for one grain-key value in one month.
// Exactly one MetricResult exists per (grain, grain_key, month).
type MetricResult struct {
	// Grain is the aggregation level
	Grain Grain `json:"grain"`

	// GrainKey identifies the bucket (TotalKey at the total grain)
	GrainKey string `json:"grain_key"`

	// Month is the calendar month-start date
	Month time.Time `json:"month"`

	// ForecastValue is the summed forecast for the bucket
	ForecastValue decimal.Decimal `json:"forecast_value"`

	// ActualValue is the summed actuals for the bucket
	ActualValue decimal.Decimal `json:"actual_value"`

	// AbsoluteError is |forecast - actual|
	AbsoluteError decimal.Decimal `json:"absolute_error"`

	// AccuracyPct is 1 - absolute_error/actual_value, undefined when the
	// actual is zero. Unbounded below; capping is a display concern.
	AccuracyPct Ratio `json:"accuracy_pct"`

	// WAPE is absolute_error/actual_value, same undefined rule
	WAPE Ratio `json:"wape"`

	// HasForecast marks forecast-side coverage. A bucket present only in
	// actuals still produces a result with ForecastValue zero; this flag
	// keeps that distinguishable from a true zero forecast.
	HasForecast bool `json:"has_forecast"`

	// HasActuals marks actuals-side coverage
	HasActuals bool `json:"has_actuals"`
}

// CoverageGap reports whether exactly one side of the bucket is populated
func (m MetricResult) CoverageGap() bool {
	return m.HasForecast != m.HasActuals
}

// MetricKey is the identity of a metric result within a run
type MetricKey struct {
	Grain    Grain
	GrainKey string
	Month    string
}

// Key returns the result's identity key
func (m MetricResult) Key() MetricKey {
	return MetricKey{Grain: m.Grain, GrainKey: m.GrainKey, Month: MonthKey(m.Month)}
}

// Less orders metric keys by (grain, grain_key, month) for deterministic,
// diffable output across repeated runs on identical input.
func (k MetricKey) Less(other MetricKey) bool {
	if k.Grain != other.Grain {
		return k.Grain < other.Grain
	}
	if k.GrainKey != other.GrainKey {
		return k.GrainKey < other.GrainKey
	}
	return k.Month < other.Month
}
