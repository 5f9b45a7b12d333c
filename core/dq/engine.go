// Package dq runs a fixed, ordered suite of data-quality rules over the
// facts and metrics of a run and renders a gate decision. Rules are pure
// functions of their inputs; findings are recorded, never thrown.
package dq

import (
	"time"

	"go.uber.org/zap"

	"forecast-accuracy/core/determinism"
	"forecast-accuracy/core/normalize"
	"forecast-accuracy/core/types"
	"forecast-accuracy/internal/config"
	"forecast-accuracy/internal/errors"
	"forecast-accuracy/internal/logging"
)

// Input carries everything the rule suite evaluates
type Input struct {
	// Facts is the full canonical fact set for the run
	Facts []types.FactRecord

	// Metrics is the full metric set for the run
	Metrics []types.MetricResult

	// Normalization holds per-source normalization findings
	Normalization map[types.SourceKind]*normalize.Result

	// ExpectedMonths is the rolling window, nil for single-month runs
	ExpectedMonths []time.Time

	// Thresholds are the configured DQ thresholds
	Thresholds config.DQConfig
}

// Rule is one named data-quality check with a fixed severity
type Rule struct {
	ID       string
	Severity Severity
	Check    func(*Input) (bool, map[string]interface{})
}

// Engine evaluates the rule suite under a gate mode
type Engine struct {
	rules []Rule
	mode  string
	log   *zap.Logger
}

// New creates an Engine with the default rule suite. The mode is passed
// explicitly per invocation scope and has no effect outside it.
func New(mode string) (*Engine, error) {
	switch mode {
	case config.DQModeOff, config.DQModeWarn, config.DQModeFail:
	default:
		return nil, errors.Configf("unrecognized dq_mode %q", mode)
	}
	return &Engine{
		rules: DefaultRules(),
		mode:  mode,
		log:   logging.With(zap.String("component", "dq"), zap.String("mode", mode)),
	}, nil
}

// Run evaluates every rule in order and derives the gate outcome.
// In off mode the checks still run and are recorded for audit, but the
// gate is always pass.
func (e *Engine) Run(in *Input) *Report {
	report := &Report{Checks: make([]CheckResult, 0, len(e.rules))}
	for _, rule := range e.rules {
		passed, details := rule.Check(in)
		report.Checks = append(report.Checks, CheckResult{
			CheckID:  rule.ID,
			Severity: rule.Severity,
			Passed:   passed,
			Details:  details,
		})
		if passed {
			continue
		}
		report.ChecksFailed++
		if rule.Severity == SeverityCritical {
			report.CriticalFailed++
		} else {
			report.WarningFailed++
		}
		level := e.log.Warn
		if rule.Severity == SeverityCritical {
			level = e.log.Error
		}
		level("dq check failed", zap.String("check_id", rule.ID), zap.Any("details", details))
	}
	report.ChecksTotal = len(report.Checks)
	report.GateOutcome = e.gate(report)
	return report
}

// gate maps failure counts and mode to the run verdict
func (e *Engine) gate(report *Report) GateOutcome {
	switch e.mode {
	case config.DQModeOff:
		return GatePass
	case config.DQModeWarn:
		if report.ChecksFailed > 0 {
			return GateWarn
		}
		return GatePass
	default: // fail
		if report.CriticalFailed > 0 {
			return GateFail
		}
		if report.WarningFailed > 0 {
			return GateWarn
		}
		return GatePass
	}
}

// DefaultRules returns the fixed, ordered rule suite
func DefaultRules() []Rule {
	return []Rule{
		{ID: "rows_present_per_source", Severity: SeverityCritical, Check: checkRowsPresent},
		{ID: "unmapped_business_units", Severity: SeverityWarning, Check: checkUnmappedBusinessUnits},
		{ID: "unrecognized_casework_locations", Severity: SeverityCritical, Check: checkUnrecognizedLocations},
		{ID: "negative_actuals", Severity: SeverityCritical, Check: checkNegativeActuals},
		{ID: "row_validation_failures", Severity: SeverityWarning, Check: checkRowValidationFailures},
		{ID: "coverage_gaps", Severity: SeverityWarning, Check: checkCoverageGaps},
		{ID: "month_continuity", Severity: SeverityWarning, Check: checkMonthContinuity},
		{ID: "denominator_validity", Severity: SeverityCritical, Check: checkDenominatorValidity},
	}
}

func checkRowsPresent(in *Input) (bool, map[string]interface{}) {
	counts := make(map[types.SourceKind]int)
	for _, f := range in.Facts {
		counts[f.SourceKind]++
	}
	details := make(map[string]interface{})
	passed := true
	for kind, result := range in.Normalization {
		if kind == types.SourceCatalog {
			continue
		}
		count := counts[kind]
		details[kind.String()] = map[string]interface{}{"facts": count, "rows_seen": result.RowsSeen}
		if count < in.Thresholds.MinRowsPerSource {
			passed = false
		}
	}
	return passed, details
}

func checkUnmappedBusinessUnits(in *Input) (bool, map[string]interface{}) {
	labels := make(map[string]int)
	for _, result := range in.Normalization {
		for label, count := range result.UnmappedBusinessUnits {
			labels[label] += count
		}
	}
	return len(labels) == 0, map[string]interface{}{
		"unmapped_labels": determinism.SortedKeys(labels),
		"label_count":     len(labels),
	}
}

func checkUnrecognizedLocations(in *Input) (bool, map[string]interface{}) {
	locations := make(map[string]int)
	for _, result := range in.Normalization {
		for loc, count := range result.UnrecognizedLocations {
			locations[loc] += count
		}
	}
	return len(locations) == 0, map[string]interface{}{
		"unrecognized_locations": determinism.SortedKeys(locations),
		"location_count":         len(locations),
	}
}

func checkNegativeActuals(in *Input) (bool, map[string]interface{}) {
	var offending []string
	for _, f := range in.Facts {
		if f.SourceKind == types.SourceActuals && f.Value.IsNegative() {
			offending = append(offending, f.Key().String())
		}
	}
	return len(offending) == 0, map[string]interface{}{
		"negative_count": len(offending),
		"keys":           capStrings(offending, 15),
	}
}

func checkRowValidationFailures(in *Input) (bool, map[string]interface{}) {
	total := 0
	perSource := make(map[string]interface{})
	for kind, result := range in.Normalization {
		perSource[kind.String()] = len(result.Skipped)
		total += len(result.Skipped)
	}
	return total == 0, map[string]interface{}{
		"skipped_rows": total,
		"per_source":   perSource,
	}
}

func checkCoverageGaps(in *Input) (bool, map[string]interface{}) {
	var gaps []string
	for _, m := range in.Metrics {
		if m.Grain == types.GrainProduct && m.CoverageGap() {
			gaps = append(gaps, m.GrainKey+"/"+types.MonthKey(m.Month))
		}
	}
	return len(gaps) <= in.Thresholds.MaxCoverageGaps, map[string]interface{}{
		"gap_count": len(gaps),
		"threshold": in.Thresholds.MaxCoverageGaps,
		"keys":      capStrings(gaps, 15),
	}
}

func checkMonthContinuity(in *Input) (bool, map[string]interface{}) {
	if len(in.ExpectedMonths) == 0 {
		return true, map[string]interface{}{"expected_months": 0}
	}
	available := make(map[string]bool)
	for _, f := range in.Facts {
		available[types.MonthKey(f.Month)] = true
	}
	var missing []string
	for _, month := range in.ExpectedMonths {
		if !available[types.MonthKey(month)] {
			missing = append(missing, types.MonthKey(month))
		}
	}
	return len(missing) == 0, map[string]interface{}{
		"expected_months": len(in.ExpectedMonths),
		"missing_months":  missing,
	}
}

func checkDenominatorValidity(in *Input) (bool, map[string]interface{}) {
	var invalid []string
	for _, m := range in.Metrics {
		if m.ActualValue.IsZero() && m.AccuracyPct.Valid {
			invalid = append(invalid, m.GrainKey+"/"+types.MonthKey(m.Month))
		}
	}
	return len(invalid) == 0, map[string]interface{}{
		"invalid_count": len(invalid),
		"keys":          capStrings(invalid, 15),
	}
}

func capStrings(s []string, limit int) []string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
