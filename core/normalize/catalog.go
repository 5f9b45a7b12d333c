// Package normalize - Product catalog lookup
package normalize

import (
	"strings"

	"forecast-accuracy/core/types"
)

// CatalogEntry is one catalog row mapping products to reporting attributes
type CatalogEntry struct {
	GroupKey         string
	BusinessUnitCode string
	BusinessUnitName string
	ProductFamily    string
	MarketingManager string
}

// catalogKey joins a product identifier with a business unit code
type catalogKey struct {
	Product          string
	BusinessUnitCode string
}

// Catalog indexes catalog entries by SKU and by group-level product code.
// Raw SKUs resolve forecast rows to group products; group codes enrich
// stats and actuals records with family and manager attributes.
type Catalog struct {
	bySKU   map[catalogKey]CatalogEntry
	byGroup map[catalogKey]CatalogEntry
}

// LookupSKU resolves a raw SKU within a business unit
func (c *Catalog) LookupSKU(sku, businessUnitCode string) (CatalogEntry, bool) {
	e, ok := c.bySKU[catalogKey{Product: sku, BusinessUnitCode: businessUnitCode}]
	return e, ok
}

// LookupGroup resolves a group-level product code within a business unit
func (c *Catalog) LookupGroup(groupKey, businessUnitCode string) (CatalogEntry, bool) {
	e, ok := c.byGroup[catalogKey{Product: groupKey, BusinessUnitCode: businessUnitCode}]
	return e, ok
}

// Len returns the number of distinct group entries
func (c *Catalog) Len() int {
	return len(c.byGroup)
}

// ParseCatalog builds a Catalog from raw catalog rows. The BU rewrite table
// applies to catalog rows the same way it applies to fact rows. Rows
// missing a group key, business unit, or SKU list are skipped and counted.
func (n *Normalizer) ParseCatalog(rows []types.RawRow) (*Catalog, *Result) {
	catalog := &Catalog{
		bySKU:   make(map[catalogKey]CatalogEntry),
		byGroup: make(map[catalogKey]CatalogEntry),
	}
	result := newResult(len(rows))

	for i, row := range rows {
		position := i + 1
		groupKey := row.Key(types.FieldGroupKey)
		buRaw := row.Get(types.FieldBusinessUnitCode)
		skuList := row.Get(types.FieldSKUList)
		if groupKey == "" || buRaw == "" || skuList == "" {
			result.skip(position, "missing catalog key field")
			continue
		}

		code, _ := n.rewriteBusinessUnit(buRaw)
		name := row.Get(types.FieldBusinessUnitName)
		if rewritten, ok := n.rewrites[strings.ToUpper(name)]; ok {
			name = rewritten
		}

		entry := CatalogEntry{
			GroupKey:         groupKey,
			BusinessUnitCode: code,
			BusinessUnitName: name,
			ProductFamily:    row.Get(types.FieldProductFamily),
			MarketingManager: row.Get(types.FieldMarketingManager),
		}

		catalog.byGroup[catalogKey{Product: groupKey, BusinessUnitCode: code}] = entry
		for _, sku := range strings.Split(skuList, "|") {
			sku = strings.ToUpper(strings.TrimSpace(sku))
			if sku == "" {
				continue
			}
			catalog.bySKU[catalogKey{Product: sku, BusinessUnitCode: code}] = entry
		}
	}

	return catalog, result
}
