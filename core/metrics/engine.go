// Package metrics aggregates canonical facts into accuracy metrics per
// grain, for a single month and for a rolling window.
package metrics

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"forecast-accuracy/core/determinism"
	"forecast-accuracy/core/types"
	"forecast-accuracy/internal/errors"
	"forecast-accuracy/internal/logging"
)

// Engine computes accuracy metrics for one selectable forecast source
// against actuals. It is a pure function over its inputs: each call
// consumes immutable facts and produces a new result collection.
type Engine struct {
	forecast types.SourceKind
	log      *zap.Logger
}

// New creates an Engine evaluating the given forecast source.
func New(forecastSource types.SourceKind) (*Engine, error) {
	if !forecastSource.IsForecast() {
		return nil, errors.Configf("forecast source must be a forecast kind, got %q", forecastSource)
	}
	return &Engine{
		forecast: forecastSource,
		log:      logging.With(zap.String("component", "metrics"), zap.String("forecast_source", forecastSource.String())),
	}, nil
}

// ForecastSource returns the forecast source this engine evaluates
func (e *Engine) ForecastSource() types.SourceKind {
	return e.forecast
}

// bucket accumulates one grain-key group
type bucket struct {
	forecast    decimal.Decimal
	actual      decimal.Decimal
	hasForecast bool
	hasActuals  bool
}

// Compute produces one MetricResult per grain key for the given month.
// A key present on only one side still yields a result with the missing
// side defaulted to zero and its coverage flag cleared.
// Duplicate fact keys are a contract violation and fail fast.
func (e *Engine) Compute(facts []types.FactRecord, month time.Time, grain types.Grain) ([]types.MetricResult, error) {
	if !grain.Valid() {
		return nil, errors.Configf("unrecognized grain %q", grain)
	}
	if err := checkDuplicates(facts); err != nil {
		return nil, err
	}

	monthKey := types.MonthKey(month)
	buckets := make(map[string]*bucket)
	for _, f := range facts {
		if types.MonthKey(f.Month) != monthKey {
			continue
		}
		if f.SourceKind != e.forecast && f.SourceKind != types.SourceActuals {
			continue
		}
		key := grain.KeyOf(f)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		if f.SourceKind == e.forecast {
			b.forecast = b.forecast.Add(f.Value)
			b.hasForecast = true
		} else {
			b.actual = b.actual.Add(f.Value)
			b.hasActuals = true
		}
	}

	results := make([]types.MetricResult, 0, len(buckets))
	determinism.RangeMapSorted(buckets, func(key string, b *bucket) bool {
		results = append(results, newMetricResult(grain, key, types.MonthStart(month), b))
		return true
	})
	return results, nil
}

// ComputeAll computes metrics for every grain for the given month, in
// report grain order.
func (e *Engine) ComputeAll(facts []types.FactRecord, month time.Time) (map[types.Grain][]types.MetricResult, error) {
	out := make(map[types.Grain][]types.MetricResult, len(types.AllGrains()))
	for _, grain := range types.AllGrains() {
		results, err := e.Compute(facts, month, grain)
		if err != nil {
			return nil, err
		}
		out[grain] = results
	}
	return out, nil
}

// Rolling computes metrics independently for each of the window months
// ending at and including the anchor month. No cross-month smoothing:
// each month's metrics are self-contained.
func (e *Engine) Rolling(facts []types.FactRecord, anchor time.Time, window int, grain types.Grain) ([]types.MetricResult, error) {
	if window < 1 {
		return nil, errors.Configf("rolling window must be >= 1, got %d", window)
	}
	var results []types.MetricResult
	for _, month := range types.MonthsEnding(anchor, window) {
		monthly, err := e.Compute(facts, month, grain)
		if err != nil {
			return nil, err
		}
		results = append(results, monthly...)
	}
	e.log.Debug("rolling metrics computed",
		zap.String("anchor", types.MonthKey(anchor)),
		zap.Int("window", window),
		zap.Int("results", len(results)))
	return results, nil
}

// newMetricResult derives the accuracy fields for one bucket.
// accuracy_pct is never computed against a zero actual: the undefined
// sentinel is reported instead.
func newMetricResult(grain types.Grain, key string, month time.Time, b *bucket) types.MetricResult {
	absErr := b.forecast.Sub(b.actual).Abs()
	result := types.MetricResult{
		Grain:         grain,
		GrainKey:      key,
		Month:         month,
		ForecastValue: b.forecast,
		ActualValue:   b.actual,
		AbsoluteError: absErr,
		AccuracyPct:   types.UndefinedRatio(),
		WAPE:          types.UndefinedRatio(),
		HasForecast:   b.hasForecast,
		HasActuals:    b.hasActuals,
	}
	if !b.actual.IsZero() {
		wape := absErr.Div(b.actual)
		result.WAPE = types.DefinedRatio(wape)
		result.AccuracyPct = types.DefinedRatio(decimal.NewFromInt(1).Sub(wape))
	}
	return result
}

// checkDuplicates fails fast when the de-duplicated input contract is
// violated.
func checkDuplicates(facts []types.FactRecord) error {
	seen := make(map[types.FactKey]bool, len(facts))
	for _, f := range facts {
		key := f.Key()
		if seen[key] {
			return errors.Newf(errors.TypeInput, "duplicate fact record for key %s", key)
		}
		seen[key] = true
	}
	return nil
}
