// Package types - Aggregation grains
package types

// Grain selects which FactRecord fields participate in grouping
type Grain string

const (
	// GrainTotal aggregates everything under a single sentinel key
	GrainTotal Grain = "total"

	// GrainBusinessUnit groups by business unit code
	GrainBusinessUnit Grain = "business_unit"

	// GrainProductFamily groups by product family
	GrainProductFamily Grain = "product_family"

	// GrainMarketingManager groups by marketing manager
	GrainMarketingManager Grain = "marketing_manager"

	// GrainProduct groups by product code
	GrainProduct Grain = "product"
)

// TotalKey is the sentinel grain key used at the total grain
const TotalKey = "ALL"

// AllGrains lists every grain in report order
func AllGrains() []Grain {
	return []Grain{
		GrainTotal,
		GrainBusinessUnit,
		GrainProductFamily,
		GrainMarketingManager,
		GrainProduct,
	}
}

// Valid reports whether the grain is one of the recognized values
func (g Grain) Valid() bool {
	switch g {
	case GrainTotal, GrainBusinessUnit, GrainProductFamily, GrainMarketingManager, GrainProduct:
		return true
	}
	return false
}

// KeyOf extracts the grain's grouping key from a fact record
func (g Grain) KeyOf(f FactRecord) string {
	switch g {
	case GrainBusinessUnit:
		return f.BusinessUnitCode
	case GrainProductFamily:
		return f.ProductFamily
	case GrainMarketingManager:
		return f.MarketingManager
	case GrainProduct:
		return f.ProductCode
	default:
		return TotalKey
	}
}

// String returns the string representation
func (g Grain) String() string {
	return string(g)
}
