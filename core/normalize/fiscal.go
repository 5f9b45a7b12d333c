// Package normalize - Fiscal month parsing
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"forecast-accuracy/internal/errors"
)

// monthTokens maps three-letter month tokens to calendar months
var monthTokens = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

var fiscalYearPattern = regexp.MustCompile(`^FY(\d{2})$`)

// ParseFiscalMonth maps a three-letter month token plus a two-digit
// fiscal-year token (e.g. "Jan", "FY26") to a month-start calendar date.
// The fiscal calendar coincides with the calendar year.
func ParseFiscalMonth(monthToken, yearToken string) (time.Time, error) {
	month, ok := monthTokens[strings.ToUpper(strings.TrimSpace(monthToken))]
	if !ok {
		return time.Time{}, errors.MonthParse(monthToken, yearToken)
	}
	m := fiscalYearPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(yearToken)))
	if m == nil {
		return time.Time{}, errors.MonthParse(monthToken, yearToken)
	}
	yy, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, errors.MonthParse(monthToken, yearToken)
	}
	return time.Date(2000+yy, month, 1, 0, 0, 0, 0, time.UTC), nil
}

// ParseMonth parses a month field that is either an ISO month ("2026-01"),
// an ISO date ("2026-01-15", truncated to month start), or a three-letter
// token paired with a fiscal-year token.
func ParseMonth(monthField, fiscalYearField string) (time.Time, error) {
	field := strings.TrimSpace(monthField)
	if t, err := time.Parse("2006-01", field); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", field); err == nil {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	return ParseFiscalMonth(field, fiscalYearField)
}
