// Package types - Canonical fact records
package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FactRecord is one observed or forecast value for a
// (month, business unit, product, source) tuple. Records are constructed
// once by the normalizer and immutable thereafter.
type FactRecord struct {
	// Month is the calendar month-start date
	Month time.Time `json:"month"`

	// BusinessUnitCode is the post-normalization business unit identifier.
	// For casework rows this carries the derived sub-entity label.
	BusinessUnitCode string `json:"business_unit_code"`

	// ProductCode is the catalog group-level product code
	ProductCode string `json:"product_code"`

	// ProductFamily is the catalog product family
	ProductFamily string `json:"product_family"`

	// MarketingManager is the owning marketing manager
	MarketingManager string `json:"marketing_manager"`

	// SourceKind identifies the originating dataset
	SourceKind SourceKind `json:"source_kind"`

	// Value is the units-consistent currency or unit count
	Value decimal.Decimal `json:"value"`
}

// FactKey is the uniqueness key for a fact record. At most one FactRecord
// exists per key; the metric engine fails fast when duplicates are seen.
type FactKey struct {
	Month            string
	BusinessUnitCode string
	ProductCode      string
	SourceKind       SourceKind
}

// Key returns the record's uniqueness key
func (f FactRecord) Key() FactKey {
	return FactKey{
		Month:            MonthKey(f.Month),
		BusinessUnitCode: f.BusinessUnitCode,
		ProductCode:      f.ProductCode,
		SourceKind:       f.SourceKind,
	}
}

// String returns a diagnostic representation of the key
func (k FactKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.Month, k.BusinessUnitCode, k.ProductCode, k.SourceKind)
}

// MonthKey renders a month-start date as its canonical YYYY-MM key
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthStart truncates a date to the first day of its month in UTC
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsEnding returns the window of consecutive month-start dates ending
// at and including the anchor month, oldest first.
func MonthsEnding(anchor time.Time, window int) []time.Time {
	months := make([]time.Time, 0, window)
	start := MonthStart(anchor).AddDate(0, -(window - 1), 0)
	for i := 0; i < window; i++ {
		months = append(months, start.AddDate(0, i, 0))
	}
	return months
}
