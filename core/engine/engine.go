// Package engine orchestrates a full accuracy run: normalization, metric
// computation, trend ranking, data-quality gating, and optional dual-run
// comparison. The engine computes everything before the gate renders its
// verdict; a failed gate marks the bundle unpublishable, it never aborts
// the computation.
package engine

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"forecast-accuracy/core/compare"
	"forecast-accuracy/core/dq"
	"forecast-accuracy/core/metrics"
	"forecast-accuracy/core/normalize"
	"forecast-accuracy/core/trend"
	"forecast-accuracy/core/types"
	"forecast-accuracy/internal/config"
	"forecast-accuracy/internal/errors"
	"forecast-accuracy/internal/logging"
)

// RunRequest describes one accuracy run over already-extracted raw rows.
// All values are plain configuration passed in by the external
// orchestrator; the engine performs no I/O.
type RunRequest struct {
	// Month is the report month (anchor month in rolling mode)
	Month time.Time

	// ForecastSource selects which forecast is evaluated against actuals
	ForecastSource types.SourceKind

	// CatalogRows are raw product catalog rows, optional
	CatalogRows []types.RawRow

	// SourceRows holds raw rows per fact source
	SourceRows map[types.SourceKind][]types.RawRow

	// WindowMonths enables rolling mode when > 1; zero means single month
	WindowMonths int

	// Label names the run's input path for diagnostics (e.g. "legacy",
	// "migrated")
	Label string
}

// RunResult is the gated result bundle consumed by external renderers
type RunResult struct {
	RunID          string                                 `json:"run_id"`
	Label          string                                 `json:"label,omitempty"`
	Month          time.Time                              `json:"report_month"`
	ForecastSource types.SourceKind                       `json:"forecast_source"`
	Metrics        map[types.Grain][]types.MetricResult   `json:"metrics"`
	Window         []types.MetricResult                   `json:"window,omitempty"`
	TopProducts    []trend.RankedProduct                  `json:"top_products,omitempty"`
	Normalization  map[types.SourceKind]*normalize.Result `json:"normalization"`
	DQ             *dq.Report                             `json:"data_quality"`

	// Publishable is false when the DQ gate blocked the run. Metrics are
	// still populated for debugging on a failed gate.
	Publishable bool `json:"publishable"`

	Elapsed time.Duration `json:"-"`
}

// AllMetrics flattens the per-grain metric map plus the rolling window
// into one slice, sorted by key.
func (r *RunResult) AllMetrics() []types.MetricResult {
	var all []types.MetricResult
	for _, grain := range types.AllGrains() {
		all = append(all, r.Metrics[grain]...)
	}
	all = append(all, r.Window...)
	return all
}

// Run executes one accuracy run. Configuration faults abort immediately,
// before any row processing begins; row-level faults are excluded and
// counted inside the normalization results.
func Run(cfg *config.Config, req *RunRequest) (*RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if req.ForecastSource == "" {
		req.ForecastSource = types.SourceMarketingForecast
	}
	start := time.Now()
	log := logging.With(
		zap.String("run_label", req.Label),
		zap.String("month", types.MonthKey(req.Month)))

	normalizer := normalize.New(cfg.Normalization)
	normalization := make(map[types.SourceKind]*normalize.Result)
	if len(req.CatalogRows) > 0 {
		catalog, catalogResult := normalizer.ParseCatalog(req.CatalogRows)
		normalizer.WithCatalog(catalog)
		normalization[types.SourceCatalog] = catalogResult
	}

	var facts []types.FactRecord
	for _, kind := range []types.SourceKind{types.SourceMarketingForecast, types.SourceStatsForecast, types.SourceActuals} {
		rows, ok := req.SourceRows[kind]
		if !ok {
			continue
		}
		result, err := normalizer.Normalize(rows, kind)
		if err != nil {
			return nil, err
		}
		normalization[kind] = result
		facts = append(facts, result.Facts...)
	}
	if _, ok := normalization[req.ForecastSource]; !ok {
		return nil, errors.Newf(errors.TypeInput, "no rows supplied for forecast source %q", req.ForecastSource)
	}

	metricEngine, err := metrics.New(req.ForecastSource)
	if err != nil {
		return nil, err
	}
	perGrain, err := metricEngine.ComputeAll(facts, req.Month)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:          uuid.New().String(),
		Label:          req.Label,
		Month:          types.MonthStart(req.Month),
		ForecastSource: req.ForecastSource,
		Metrics:        perGrain,
		Normalization:  normalization,
	}

	var expectedMonths []time.Time
	if req.WindowMonths > 1 {
		expectedMonths = types.MonthsEnding(req.Month, req.WindowMonths)
		window, err := trend.Window(metricEngine, facts, req.Month, req.WindowMonths)
		if err != nil {
			return nil, err
		}
		ranked, err := trend.TopN(window, req.Month, cfg.Trend.TopN)
		if err != nil {
			return nil, err
		}
		result.Window = trend.Select(window, ranked)
		result.TopProducts = ranked
	}

	dqEngine, err := dq.New(cfg.DQ.Mode)
	if err != nil {
		return nil, err
	}
	result.DQ = dqEngine.Run(&dq.Input{
		Facts:          facts,
		Metrics:        result.AllMetrics(),
		Normalization:  normalization,
		ExpectedMonths: expectedMonths,
		Thresholds:     cfg.DQ,
	})
	result.Publishable = !result.DQ.Blocking()
	result.Elapsed = time.Since(start)

	log.Info("run complete",
		zap.String("run_id", result.RunID),
		zap.String("gate_outcome", string(result.DQ.GateOutcome)),
		zap.Bool("publishable", result.Publishable),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

// DualRunResult pairs two independent runs with their comparison
type DualRunResult struct {
	Source      *RunResult                 `json:"source"`
	Baseline    *RunResult                 `json:"baseline"`
	Comparisons []compare.ComparisonResult `json:"comparisons"`
}

// MaterialVariances counts comparison rows classified as material
func (d *DualRunResult) MaterialVariances() int {
	count := 0
	for _, c := range d.Comparisons {
		if c.Classification == compare.ClassMaterialVariance {
			count++
		}
	}
	return count
}

// DualRun executes the source and baseline runs concurrently and diffs
// their metric sets. Both runs are independent pure functions over
// disjoint inputs; the only ordering requirement is that both complete
// before comparison begins.
func DualRun(cfg *config.Config, sourceReq, baselineReq *RunRequest) (*DualRunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	type outcome struct {
		result *RunResult
		err    error
	}
	sourceCh := make(chan outcome, 1)
	baselineCh := make(chan outcome, 1)
	go func() {
		r, err := Run(cfg, sourceReq)
		sourceCh <- outcome{r, err}
	}()
	go func() {
		r, err := Run(cfg, baselineReq)
		baselineCh <- outcome{r, err}
	}()

	sourceOut := <-sourceCh
	baselineOut := <-baselineCh
	if sourceOut.err != nil {
		return nil, sourceOut.err
	}
	if baselineOut.err != nil {
		return nil, baselineOut.err
	}

	comparator, err := compare.New(cfg.Tolerances)
	if err != nil {
		return nil, err
	}
	return &DualRunResult{
		Source:      sourceOut.result,
		Baseline:    baselineOut.result,
		Comparisons: comparator.Compare(sourceOut.result.AllMetrics(), baselineOut.result.AllMetrics()),
	}, nil
}
