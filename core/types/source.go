// Package types defines the canonical fact model shared by all engines.
// Everything downstream of the normalizer operates on these types only,
// never on raw row shapes.
package types

import "strings"

// SourceKind identifies which dataset a record originated from
type SourceKind string

const (
	// SourceMarketingForecast is the marketing-entered forecast
	SourceMarketingForecast SourceKind = "marketing_forecast"

	// SourceStatsForecast is the statistical-model forecast
	SourceStatsForecast SourceKind = "stats_forecast"

	// SourceActuals is observed bookings
	SourceActuals SourceKind = "actuals"

	// SourceCatalog is the product/business-unit catalog
	SourceCatalog SourceKind = "catalog"
)

// IsForecast reports whether the kind is one of the forecast sources
func (k SourceKind) IsForecast() bool {
	return k == SourceMarketingForecast || k == SourceStatsForecast
}

// String returns the string representation
func (k SourceKind) String() string {
	return string(k)
}

// Canonical raw-row field names, fixed by contract with upstream loaders.
const (
	FieldMonth            = "month"
	FieldFiscalYear       = "fiscal_year"
	FieldBusinessUnit     = "business_unit"
	FieldLocation         = "location"
	FieldGeography        = "geography"
	FieldProduct          = "product"
	FieldValue            = "value"
	FieldModelType        = "model_type"
	FieldRecommended      = "recommended"
	FieldGroupKey         = "group_key"
	FieldBusinessUnitCode = "business_unit_code"
	FieldBusinessUnitName = "business_unit_name"
	FieldSKUList          = "sku_list"
	FieldProductFamily    = "product_family"
	FieldMarketingManager = "marketing_manager"
)

// RawRow is one already-extracted input row, keyed by canonical field name.
// Extraction from spreadsheets or a database is the loader's responsibility.
type RawRow map[string]string

// Get returns the trimmed field value
func (r RawRow) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Key returns the trimmed, upper-cased field value for join/lookup use
func (r RawRow) Key(field string) string {
	return strings.ToUpper(r.Get(field))
}

// Has reports whether the field is present and non-blank
func (r RawRow) Has(field string) bool {
	return r.Get(field) != ""
}
