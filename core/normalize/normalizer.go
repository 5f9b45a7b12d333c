// Package normalize turns raw source rows into canonical fact records.
// This is the seam that isolates business normalization quirks from the
// numerically pure metric, comparison, and DQ logic: everything downstream
// sees FactRecords only.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"forecast-accuracy/core/determinism"
	"forecast-accuracy/core/types"
	"forecast-accuracy/internal/config"
	"forecast-accuracy/internal/errors"
	"forecast-accuracy/internal/logging"
)

// SkippedRow records one excluded input row with its position and reason.
// Row-level faults are recovered locally: the row is excluded and counted,
// processing continues.
type SkippedRow struct {
	Position int    `json:"position"`
	Reason   string `json:"reason"`
}

// Result is the outcome of normalizing one raw row set
type Result struct {
	// Facts is the canonical fact output, one record per
	// (month, business unit, product, source) key, sorted
	Facts []types.FactRecord

	// Skipped lists excluded rows with positions and reasons
	Skipped []SkippedRow

	// UnmappedBusinessUnits counts rows per BU label that had no rewrite
	// entry. Recorded for DQ review, never raised.
	UnmappedBusinessUnits map[string]int

	// UnrecognizedLocations counts rows per unrecognized location code
	// under the casework business unit. A critical DQ finding.
	UnrecognizedLocations map[string]int

	// GeographyExcluded counts rows outside the configured geography
	GeographyExcluded int

	// RowsSeen is the raw input row count
	RowsSeen int
}

func newResult(rows int) *Result {
	return &Result{
		RowsSeen:              rows,
		UnmappedBusinessUnits: make(map[string]int),
		UnrecognizedLocations: make(map[string]int),
	}
}

func (r *Result) skip(position int, reason string) {
	r.Skipped = append(r.Skipped, SkippedRow{Position: position, Reason: reason})
}

// Merge folds another result's findings into this one. Used to carry
// catalog-parse findings alongside the per-source results for DQ.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.RowsSeen += other.RowsSeen
	r.Skipped = append(r.Skipped, other.Skipped...)
	r.GeographyExcluded += other.GeographyExcluded
	for label, count := range other.UnmappedBusinessUnits {
		r.UnmappedBusinessUnits[label] += count
	}
	for loc, count := range other.UnrecognizedLocations {
		r.UnrecognizedLocations[loc] += count
	}
}

// Normalizer applies the configured business normalization rules.
// Construction copies the tables; a Normalizer never mutates shared state.
type Normalizer struct {
	rewrites   map[string]string
	rewriteTo  map[string]bool
	casework   map[string]string
	caseworkBU string
	geography  string
	catalog    *Catalog
	log        *zap.Logger
}

// New creates a Normalizer from the normalization configuration.
// Table keys are canonicalized to upper case.
func New(cfg config.NormalizationConfig) *Normalizer {
	n := &Normalizer{
		rewrites:   make(map[string]string, len(cfg.BusinessUnitRewrites)),
		rewriteTo:  make(map[string]bool, len(cfg.BusinessUnitRewrites)),
		casework:   make(map[string]string, len(cfg.CaseworkLocations)),
		caseworkBU: strings.ToUpper(cfg.CaseworkBusinessUnit),
		geography:  strings.ToUpper(cfg.Geography),
		log:        logging.With(zap.String("component", "normalizer")),
	}
	for label, code := range cfg.BusinessUnitRewrites {
		n.rewrites[strings.ToUpper(label)] = code
		n.rewriteTo[strings.ToUpper(code)] = true
	}
	for loc, label := range cfg.CaseworkLocations {
		n.casework[strings.ToUpper(loc)] = label
	}
	return n
}

// WithCatalog attaches a parsed catalog. Marketing rows are then resolved
// through it; stats and actuals rows are enriched from it.
func (n *Normalizer) WithCatalog(c *Catalog) *Normalizer {
	n.catalog = c
	return n
}

// rewriteBusinessUnit maps a raw BU label to its canonical code.
// The second return is false when the label had no rewrite entry and is
// not itself a canonical code.
func (n *Normalizer) rewriteBusinessUnit(raw string) (string, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if code, ok := n.rewrites[key]; ok {
		return code, true
	}
	// A label that already is a rewrite target is canonical as-is.
	return strings.TrimSpace(raw), n.rewriteTo[key]
}

// Normalize converts raw rows of one source kind into canonical facts.
// Rows failing required-field validation are excluded and counted; values
// for the same fact key are summed into a single record.
func (n *Normalizer) Normalize(rows []types.RawRow, kind types.SourceKind) (*Result, error) {
	if kind == types.SourceCatalog {
		return nil, errors.Input("catalog rows go through ParseCatalog, not Normalize")
	}
	if !kind.IsForecast() && kind != types.SourceActuals {
		return nil, errors.Newf(errors.TypeInput, "unrecognized source kind %q", kind)
	}

	result := newResult(len(rows))
	keep := rows
	if kind == types.SourceStatsForecast {
		keep = preferStatsModel(rows)
	}

	accumulated := make(map[types.FactKey]*types.FactRecord)
	for i, row := range keep {
		position := i + 1
		fact, reason, err := n.normalizeRow(row, position, kind, result)
		if err != nil {
			result.skip(position, err.Error())
			continue
		}
		if reason != "" {
			result.skip(position, reason)
			continue
		}
		if fact == nil {
			continue // filtered, already counted
		}

		key := fact.Key()
		if existing, ok := accumulated[key]; ok {
			existing.Value = existing.Value.Add(fact.Value)
			continue
		}
		accumulated[key] = fact
	}

	result.Facts = make([]types.FactRecord, 0, len(accumulated))
	determinism.RangeMapSorted(accumulated, func(_ types.FactKey, f *types.FactRecord) bool {
		result.Facts = append(result.Facts, *f)
		return true
	})

	n.log.Debug("normalized source rows",
		zap.String("source", kind.String()),
		zap.Int("rows", result.RowsSeen),
		zap.Int("facts", len(result.Facts)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// normalizeRow validates and rewrites one row. A non-nil error is a
// row-level fault; a non-empty reason is a business-rule exclusion; a nil
// fact with empty reason means the row was filtered and already counted.
func (n *Normalizer) normalizeRow(row types.RawRow, position int, kind types.SourceKind, result *Result) (*types.FactRecord, string, error) {
	if !row.Has(types.FieldMonth) {
		return nil, "", errors.RowValidation(position, "missing month")
	}
	if !row.Has(types.FieldProduct) {
		return nil, "", errors.RowValidation(position, "missing product code")
	}
	if !row.Has(types.FieldValue) {
		return nil, "", errors.RowValidation(position, "missing value")
	}

	month, err := ParseMonth(row.Get(types.FieldMonth), row.Get(types.FieldFiscalYear))
	if err != nil {
		return nil, "", err
	}

	value, err := decimal.NewFromString(row.Get(types.FieldValue))
	if err != nil {
		return nil, "", errors.RowValidation(position, "non-numeric value")
	}

	if row.Has(types.FieldGeography) && row.Key(types.FieldGeography) != n.geography {
		result.GeographyExcluded++
		return nil, "", nil
	}

	buCode, mapped := n.rewriteBusinessUnit(row.Get(types.FieldBusinessUnit))
	if !mapped && buCode != "" {
		result.UnmappedBusinessUnits[buCode]++
	}

	product := row.Key(types.FieldProduct)
	family := row.Get(types.FieldProductFamily)
	manager := row.Get(types.FieldMarketingManager)

	if n.catalog != nil {
		if kind == types.SourceMarketingForecast {
			entry, ok := n.catalog.LookupSKU(product, buCode)
			if !ok {
				return nil, "not in product catalog", nil
			}
			product = entry.GroupKey
			family = entry.ProductFamily
			manager = entry.MarketingManager
		} else if entry, ok := n.catalog.LookupGroup(product, buCode); ok {
			family = entry.ProductFamily
			manager = entry.MarketingManager
		}
	}

	if strings.ToUpper(buCode) == n.caseworkBU && row.Has(types.FieldLocation) {
		location := row.Key(types.FieldLocation)
		label, ok := n.casework[location]
		if !ok {
			result.UnrecognizedLocations[location]++
			return nil, "unrecognized casework location " + location, nil
		}
		buCode = label
	}

	return &types.FactRecord{
		Month:            month,
		BusinessUnitCode: buCode,
		ProductCode:      product,
		ProductFamily:    family,
		MarketingManager: manager,
		SourceKind:       kind,
		Value:            value,
	}, "", nil
}

// preferStatsModel keeps BLEND rows where a (month, bu, product) key has
// them and falls back to recommended-model rows elsewhere. Rows with no
// model type pass through untouched.
func preferStatsModel(rows []types.RawRow) []types.RawRow {
	type statsKey struct{ month, bu, product string }

	hasBlend := make(map[statsKey]bool)
	for _, row := range rows {
		if row.Key(types.FieldModelType) == "BLEND" {
			hasBlend[statsKey{row.Key(types.FieldMonth), row.Key(types.FieldBusinessUnit), row.Key(types.FieldProduct)}] = true
		}
	}

	keep := make([]types.RawRow, 0, len(rows))
	for _, row := range rows {
		modelType := row.Key(types.FieldModelType)
		if modelType == "" || modelType == "BLEND" {
			keep = append(keep, row)
			continue
		}
		key := statsKey{row.Key(types.FieldMonth), row.Key(types.FieldBusinessUnit), row.Key(types.FieldProduct)}
		if !hasBlend[key] && recommended(row.Get(types.FieldRecommended)) {
			keep = append(keep, row)
		}
	}
	return keep
}

func recommended(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
