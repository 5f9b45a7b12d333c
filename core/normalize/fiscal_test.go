// Package normalize - Fiscal month parsing tests
package normalize

import (
	"testing"
	"time"

	"forecast-accuracy/internal/errors"
)

// TestParseFiscalMonth proves token pairs map to month-start calendar dates
func TestParseFiscalMonth(t *testing.T) {
	cases := []struct {
		month string
		year  string
		want  time.Time
	}{
		{"Jan", "FY26", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"DEC", "FY25", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{" jul ", " fy24 ", time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseFiscalMonth(tc.month, tc.year)
		if err != nil {
			t.Errorf("ParseFiscalMonth(%q, %q) failed: %v", tc.month, tc.year, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseFiscalMonth(%q, %q): expected %s, got %s", tc.month, tc.year, tc.want, got)
		}
	}
}

// TestParseFiscalMonthRejectsBadTokens proves unrecognized tokens raise the
// month parse error type instead of guessing a date.
func TestParseFiscalMonthRejectsBadTokens(t *testing.T) {
	cases := []struct{ month, year string }{
		{"Janu", "FY26"},
		{"Jan", "FY2026"},
		{"Jan", "26"},
		{"", "FY26"},
		{"Smarch", "FY26"},
	}
	for _, tc := range cases {
		_, err := ParseFiscalMonth(tc.month, tc.year)
		if err == nil {
			t.Errorf("ParseFiscalMonth(%q, %q): expected error, got none", tc.month, tc.year)
			continue
		}
		if !errors.IsType(err, errors.TypeMonthParse) {
			t.Errorf("ParseFiscalMonth(%q, %q): expected MONTH_PARSE_ERROR, got %v", tc.month, tc.year, err)
		}
	}
}

// TestParseMonthFormats proves ISO months, ISO dates, and fiscal tokens all
// resolve to the same month-start date.
func TestParseMonthFormats(t *testing.T) {
	want := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct{ month, fiscalYear string }{
		{"2026-01", ""},
		{"2026-01-15", ""},
		{"Jan", "FY26"},
	}
	for _, tc := range cases {
		got, err := ParseMonth(tc.month, tc.fiscalYear)
		if err != nil {
			t.Errorf("ParseMonth(%q, %q) failed: %v", tc.month, tc.fiscalYear, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseMonth(%q, %q): expected %s, got %s", tc.month, tc.fiscalYear, want, got)
		}
	}
}
