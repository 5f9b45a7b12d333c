// Package normalize - Normalizer tests
package normalize

import (
	"testing"

	"github.com/shopspring/decimal"

	"forecast-accuracy/core/types"
	"forecast-accuracy/internal/config"
)

func testNormalizationConfig() config.NormalizationConfig {
	return config.NormalizationConfig{
		BusinessUnitRewrites: map[string]string{
			"DIVISION": "D200",
		},
		CaseworkBusinessUnit: "D200",
		CaseworkLocations: map[string]string{
			"LOC1020": "ARTISAN CASEWORK",
			"LOC1080": "SYNTHESIS CASEWORK",
		},
		Geography: "AMERICAS",
	}
}

// TestBusinessUnitRewrite proves the raw label maps to its canonical code
// and an unmapped label is counted, not dropped.
func TestBusinessUnitRewrite(t *testing.T) {
	n := New(testNormalizationConfig())
	result, err := n.Normalize([]types.RawRow{
		{"month": "2026-01", "business_unit": "Division", "product": "P100", "value": "100"},
		{"month": "2026-01", "business_unit": "D200", "product": "P200", "value": "50"},
		{"month": "2026-01", "business_unit": "Mystery BU", "product": "P300", "value": "10"},
	}, types.SourceActuals)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(result.Facts) != 3 {
		t.Fatalf("Expected 3 facts, got %d", len(result.Facts))
	}

	byProduct := make(map[string]types.FactRecord)
	for _, f := range result.Facts {
		byProduct[f.ProductCode] = f
	}
	if byProduct["P100"].BusinessUnitCode != "D200" {
		t.Errorf("Expected rewritten BU D200, got %q", byProduct["P100"].BusinessUnitCode)
	}
	if byProduct["P200"].BusinessUnitCode != "D200" {
		t.Errorf("Expected canonical BU D200 to pass through, got %q", byProduct["P200"].BusinessUnitCode)
	}
	if byProduct["P300"].BusinessUnitCode != "Mystery BU" {
		t.Errorf("Expected unmapped BU to pass through, got %q", byProduct["P300"].BusinessUnitCode)
	}
	if result.UnmappedBusinessUnits["Mystery BU"] != 1 {
		t.Errorf("Expected 1 unmapped-BU count, got %v", result.UnmappedBusinessUnits)
	}
	if count := result.UnmappedBusinessUnits["D200"]; count != 0 {
		t.Errorf("Canonical code counted as unmapped %d times", count)
	}
}

// TestCaseworkLocationSplit proves casework rows are relabeled by location
// and unrecognized locations are excluded and counted.
func TestCaseworkLocationSplit(t *testing.T) {
	n := New(testNormalizationConfig())
	result, err := n.Normalize([]types.RawRow{
		{"month": "2026-01", "business_unit": "Division", "location": "Loc1020", "product": "P100", "value": "10"},
		{"month": "2026-01", "business_unit": "D200", "location": "LOC1080", "product": "P100", "value": "20"},
		{"month": "2026-01", "business_unit": "D200", "location": "Loc1099", "product": "P100", "value": "30"},
	}, types.SourceActuals)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(result.Facts) != 2 {
		t.Fatalf("Expected 2 facts, got %d", len(result.Facts))
	}
	byBU := make(map[string]decimal.Decimal)
	for _, f := range result.Facts {
		byBU[f.BusinessUnitCode] = f.Value
	}
	if !byBU["ARTISAN CASEWORK"].Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected ARTISAN CASEWORK value 10, got %s", byBU["ARTISAN CASEWORK"])
	}
	if !byBU["SYNTHESIS CASEWORK"].Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected SYNTHESIS CASEWORK value 20, got %s", byBU["SYNTHESIS CASEWORK"])
	}

	if result.UnrecognizedLocations["LOC1099"] != 1 {
		t.Errorf("Expected LOC1099 counted once, got %v", result.UnrecognizedLocations)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("Expected 1 skipped row, got %d", len(result.Skipped))
	}
	if result.Skipped[0].Position != 3 {
		t.Errorf("Expected skipped position 3, got %d", result.Skipped[0].Position)
	}
}

// TestCaseworkSplitNeedsLocation proves a casework-BU row without a
// location column stays under the parent business unit.
func TestCaseworkSplitNeedsLocation(t *testing.T) {
	n := New(testNormalizationConfig())
	result, err := n.Normalize([]types.RawRow{
		{"month": "2026-01", "business_unit": "D200", "product": "P100", "value": "10"},
	}, types.SourceActuals)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(result.Facts) != 1 || result.Facts[0].BusinessUnitCode != "D200" {
		t.Fatalf("Expected one D200 fact, got %+v", result.Facts)
	}
}

// TestGeographyFilter proves rows outside the configured geography are
// excluded and counted, and rows with no geography column pass through.
func TestGeographyFilter(t *testing.T) {
	n := New(testNormalizationConfig())
	result, err := n.Normalize([]types.RawRow{
		{"month": "2026-01", "business_unit": "D200", "geography": "Americas", "product": "P100", "value": "10"},
		{"month": "2026-01", "business_unit": "D200", "geography": "EMEA", "product": "P200", "value": "20"},
		{"month": "2026-01", "business_unit": "D200", "product": "P300", "value": "30"},
	}, types.SourceActuals)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(result.Facts) != 2 {
		t.Fatalf("Expected 2 facts, got %d", len(result.Facts))
	}
	if result.GeographyExcluded != 1 {
		t.Errorf("Expected 1 geography-excluded row, got %d", result.GeographyExcluded)
	}
}

// TestRowValidationSkips proves rows missing required fields are excluded
// with their one-based positions and reasons, and processing continues.
func TestRowValidationSkips(t *testing.T) {
	n := New(testNormalizationConfig())
	result, err := n.Normalize([]types.RawRow{
		{"business_unit": "D200", "product": "P100", "value": "10"},
		{"month": "2026-01", "business_unit": "D200", "value": "10"},
		{"month": "2026-01", "business_unit": "D200", "product": "P100"},
		{"month": "2026-01", "business_unit": "D200", "product": "P100", "value": "ten"},
		{"month": "2026-01", "business_unit": "D200", "product": "P100", "value": "10"},
	}, types.SourceActuals)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(result.Facts) != 1 {
		t.Fatalf("Expected 1 fact, got %d", len(result.Facts))
	}
	if len(result.Skipped) != 4 {
		t.Fatalf("Expected 4 skipped rows, got %d", len(result.Skipped))
	}
	for i, skipped := range result.Skipped {
		if skipped.Position != i+1 {
			t.Errorf("Skipped row %d: expected position %d, got %d", i, i+1, skipped.Position)
		}
		if skipped.Reason == "" {
			t.Errorf("Skipped row %d has no reason", i)
		}
	}
	if result.RowsSeen != 5 {
		t.Errorf("Expected 5 rows seen, got %d", result.RowsSeen)
	}
}

// TestFactRollup proves duplicate key rows are summed into one record
func TestFactRollup(t *testing.T) {
	n := New(testNormalizationConfig())
	result, err := n.Normalize([]types.RawRow{
		{"month": "2026-01", "business_unit": "D200", "product": "P100", "value": "10.5"},
		{"month": "2026-01", "business_unit": "D200", "product": "P100", "value": "4.5"},
		{"month": "2026-02", "business_unit": "D200", "product": "P100", "value": "1"},
	}, types.SourceActuals)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(result.Facts) != 2 {
		t.Fatalf("Expected 2 facts after rollup, got %d", len(result.Facts))
	}
	seen := make(map[types.FactKey]bool)
	for _, f := range result.Facts {
		if seen[f.Key()] {
			t.Fatalf("Duplicate fact key %s in output", f.Key())
		}
		seen[f.Key()] = true
		if types.MonthKey(f.Month) == "2026-01" && !f.Value.Equal(decimal.NewFromInt(15)) {
			t.Errorf("Expected rolled-up value 15, got %s", f.Value)
		}
	}
}

// TestStatsBlendPreference proves BLEND rows win per key and recommended
// rows back-fill keys without a blend.
func TestStatsBlendPreference(t *testing.T) {
	n := New(testNormalizationConfig())
	result, err := n.Normalize([]types.RawRow{
		{"month": "2026-01", "business_unit": "D200", "product": "P100", "value": "100", "model_type": "BLEND"},
		{"month": "2026-01", "business_unit": "D200", "product": "P100", "value": "999", "model_type": "ARIMA", "recommended": "true"},
		{"month": "2026-01", "business_unit": "D200", "product": "P200", "value": "50", "model_type": "ETS", "recommended": "true"},
		{"month": "2026-01", "business_unit": "D200", "product": "P200", "value": "888", "model_type": "ARIMA", "recommended": "false"},
	}, types.SourceStatsForecast)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(result.Facts) != 2 {
		t.Fatalf("Expected 2 facts, got %d", len(result.Facts))
	}
	byProduct := make(map[string]decimal.Decimal)
	for _, f := range result.Facts {
		byProduct[f.ProductCode] = f.Value
	}
	if !byProduct["P100"].Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected BLEND value 100 for P100, got %s", byProduct["P100"])
	}
	if !byProduct["P200"].Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected recommended value 50 for P200, got %s", byProduct["P200"])
	}
}

// TestNormalizeRejectsCatalogKind proves catalog rows cannot enter the
// fact pipeline.
func TestNormalizeRejectsCatalogKind(t *testing.T) {
	n := New(testNormalizationConfig())
	if _, err := n.Normalize(nil, types.SourceCatalog); err == nil {
		t.Fatal("Expected error for catalog source kind, got none")
	}
}

// TestCatalogJoin proves marketing rows resolve raw SKUs through the
// catalog and stats/actuals rows are enriched at the group level.
func TestCatalogJoin(t *testing.T) {
	n := New(testNormalizationConfig())
	catalog, catalogResult := n.ParseCatalog([]types.RawRow{
		{"group_key": "G100", "business_unit_code": "Division", "business_unit_name": "Division", "sku_list": "SKU-1 | sku-2 |", "product_family": "FAMILY-A", "marketing_manager": "MGR-1"},
		{"group_key": "G200", "business_unit_code": "D200", "sku_list": "SKU-9", "product_family": "FAMILY-B", "marketing_manager": "MGR-2"},
		{"group_key": "", "business_unit_code": "D200", "sku_list": "SKU-0"},
	})
	if catalog.Len() != 2 {
		t.Fatalf("Expected 2 catalog groups, got %d", catalog.Len())
	}
	if len(catalogResult.Skipped) != 1 {
		t.Fatalf("Expected 1 skipped catalog row, got %d", len(catalogResult.Skipped))
	}
	n.WithCatalog(catalog)

	marketing, err := n.Normalize([]types.RawRow{
		{"month": "2026-01", "business_unit": "Division", "product": "sku-2", "value": "10"},
		{"month": "2026-01", "business_unit": "Division", "product": "SKU-1", "value": "5"},
		{"month": "2026-01", "business_unit": "Division", "product": "SKU-UNKNOWN", "value": "99"},
	}, types.SourceMarketingForecast)
	if err != nil {
		t.Fatalf("Normalize marketing failed: %v", err)
	}
	// SKU-1 and sku-2 both resolve to G100 and roll up
	if len(marketing.Facts) != 1 {
		t.Fatalf("Expected 1 marketing fact, got %d", len(marketing.Facts))
	}
	fact := marketing.Facts[0]
	if fact.ProductCode != "G100" {
		t.Errorf("Expected group product G100, got %q", fact.ProductCode)
	}
	if !fact.Value.Equal(decimal.NewFromInt(15)) {
		t.Errorf("Expected rolled-up value 15, got %s", fact.Value)
	}
	if fact.ProductFamily != "FAMILY-A" || fact.MarketingManager != "MGR-1" {
		t.Errorf("Expected catalog attributes, got family=%q manager=%q", fact.ProductFamily, fact.MarketingManager)
	}
	if len(marketing.Skipped) != 1 {
		t.Fatalf("Expected 1 skipped marketing row, got %d", len(marketing.Skipped))
	}

	actuals, err := n.Normalize([]types.RawRow{
		{"month": "2026-01", "business_unit": "D200", "product": "G200", "value": "40"},
	}, types.SourceActuals)
	if err != nil {
		t.Fatalf("Normalize actuals failed: %v", err)
	}
	if len(actuals.Facts) != 1 {
		t.Fatalf("Expected 1 actuals fact, got %d", len(actuals.Facts))
	}
	if actuals.Facts[0].ProductFamily != "FAMILY-B" || actuals.Facts[0].MarketingManager != "MGR-2" {
		t.Errorf("Expected group enrichment, got family=%q manager=%q",
			actuals.Facts[0].ProductFamily, actuals.Facts[0].MarketingManager)
	}
}

// TestResultMerge proves catalog findings fold into a per-source result
func TestResultMerge(t *testing.T) {
	a := &Result{
		RowsSeen:              2,
		UnmappedBusinessUnits: map[string]int{"X": 1},
		UnrecognizedLocations: map[string]int{},
	}
	b := &Result{
		RowsSeen:              3,
		Skipped:               []SkippedRow{{Position: 1, Reason: "missing catalog key field"}},
		UnmappedBusinessUnits: map[string]int{"X": 2, "Y": 1},
		UnrecognizedLocations: map[string]int{"LOC1099": 1},
		GeographyExcluded:     1,
	}
	a.Merge(b)
	if a.RowsSeen != 5 || len(a.Skipped) != 1 || a.GeographyExcluded != 1 {
		t.Errorf("Merge counts wrong: %+v", a)
	}
	if a.UnmappedBusinessUnits["X"] != 3 || a.UnmappedBusinessUnits["Y"] != 1 {
		t.Errorf("Merge labels wrong: %v", a.UnmappedBusinessUnits)
	}
	if a.UnrecognizedLocations["LOC1099"] != 1 {
		t.Errorf("Merge locations wrong: %v", a.UnrecognizedLocations)
	}
}
