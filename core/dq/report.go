// Package dq - DQ report types
// Field names and enum values here are a stability contract for downstream
// audit tooling; do not rename.
package dq

// Severity classifies a check failure
type Severity string

const (
	// SeverityCritical marks a structural/coverage failure
	SeverityCritical Severity = "critical"

	// SeverityWarning marks an informational anomaly
	SeverityWarning Severity = "warning"
)

// GateOutcome is the run verdict derived from check failures and mode
type GateOutcome string

const (
	GatePass GateOutcome = "pass"
	GateWarn GateOutcome = "warn"
	GateFail GateOutcome = "fail"
)

// CheckResult is the outcome of one data-quality rule evaluation
type CheckResult struct {
	CheckID  string                 `json:"check_id"`
	Severity Severity               `json:"severity"`
	Passed   bool                   `json:"passed"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// Report aggregates all check results for a run
type Report struct {
	Checks         []CheckResult `json:"checks"`
	ChecksTotal    int           `json:"checks_total"`
	ChecksFailed   int           `json:"checks_failed"`
	CriticalFailed int           `json:"critical_failed"`
	WarningFailed  int           `json:"warning_failed"`
	GateOutcome    GateOutcome   `json:"gate_outcome"`
}

// Blocking reports whether the gate blocks downstream publication.
// The gate is advisory output: metrics are already computed either way
// and partial results stay inspectable on a failed gate.
func (r *Report) Blocking() bool {
	return r.GateOutcome == GateFail
}
