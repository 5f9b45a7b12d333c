// Package trend provides the rolling-window metric view and stable top-N
// product ranking over the latest month of a window.
package trend

import (
	"time"

	"github.com/shopspring/decimal"

	"forecast-accuracy/core/determinism"
	"forecast-accuracy/core/metrics"
	"forecast-accuracy/core/types"
	"forecast-accuracy/internal/errors"
)

// RankedProduct is one product in the top-N ranking
type RankedProduct struct {
	// Rank starts at 1
	Rank int `json:"rank"`

	// ProductCode is the ranked grain key
	ProductCode string `json:"product_code"`

	// RankedBy is the value the ranking used: actuals, or the forecast
	// when the product has no actuals in the latest month
	RankedBy decimal.Decimal `json:"ranked_by"`

	// Metric is the product's metric for the latest month
	Metric types.MetricResult `json:"metric"`
}

// Window computes product-grain metrics for each month of the rolling
// window ending at the anchor month.
func Window(engine *metrics.Engine, facts []types.FactRecord, anchor time.Time, window int) ([]types.MetricResult, error) {
	return engine.Rolling(facts, anchor, window, types.GrainProduct)
}

// TopN ranks products by actual value in the latest month of the window,
// descending, and selects the top n. Products without actuals rank by
// forecast value. Ties break on ascending product code, so the output is
// identical for any permutation of the input. Fewer than n products is
// not an error; all available are returned, ranked.
func TopN(window []types.MetricResult, latest time.Time, n int) ([]RankedProduct, error) {
	if n < 1 {
		return nil, errors.Configf("top-N must be >= 1, got %d", n)
	}

	latestKey := types.MonthKey(latest)
	var candidates []RankedProduct
	for _, m := range window {
		if m.Grain != types.GrainProduct || types.MonthKey(m.Month) != latestKey {
			continue
		}
		rankedBy := m.ActualValue
		if !m.HasActuals {
			rankedBy = m.ForecastValue
		}
		candidates = append(candidates, RankedProduct{
			ProductCode: m.GrainKey,
			RankedBy:    rankedBy,
			Metric:      m,
		})
	}

	determinism.SortSlice(candidates, func(a, b RankedProduct) bool {
		if cmp := a.RankedBy.Cmp(b.RankedBy); cmp != 0 {
			return cmp > 0
		}
		return a.ProductCode < b.ProductCode
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates, nil
}

// Select filters a window down to the months of ranked products, keeping
// every month of the window for each top product. This is the series the
// trend report plots per product.
func Select(window []types.MetricResult, ranked []RankedProduct) []types.MetricResult {
	keep := make(map[string]bool, len(ranked))
	for _, r := range ranked {
		keep[r.ProductCode] = true
	}
	var out []types.MetricResult
	for _, m := range window {
		if m.Grain == types.GrainProduct && keep[m.GrainKey] {
			out = append(out, m)
		}
	}
	determinism.SortSlice(out, func(a, b types.MetricResult) bool {
		return a.Key().Less(b.Key())
	})
	return out
}
