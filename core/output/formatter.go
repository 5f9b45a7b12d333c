// Package output renders run artifacts for external consumption.
// The DQ report serialization here is the audit log contract: field names
// and enum values must not change.
package output

import (
	"encoding/json"
	"io"

	"forecast-accuracy/core/dq"
	"forecast-accuracy/core/engine"
)

// Format represents output format type
type Format string

const (
	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result bundle
	Render(w io.Writer, result *engine.RunResult) error
}

// JSONFormatter renders the full result bundle as indented JSON
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format returns the format type
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render writes the result bundle
func (f *JSONFormatter) Render(w io.Writer, result *engine.RunResult) error {
	return writeJSON(w, result)
}

// RenderDQ writes the DQ report alone, as logged for audit
func (f *JSONFormatter) RenderDQ(w io.Writer, report *dq.Report) error {
	return writeJSON(w, report)
}

// RenderComparison writes a dual-run result
func (f *JSONFormatter) RenderComparison(w io.Writer, result *engine.DualRunResult) error {
	return writeJSON(w, result)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
