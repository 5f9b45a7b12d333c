// Package types - Undefined-safe ratios
package types

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Ratio is a numeric ratio that can be undefined (zero denominator).
// The undefined state is a sentinel, never a division result: it marshals
// to JSON null and survives a round trip, so downstream consumers can
// always tell "undefined" apart from a true zero.
type Ratio struct {
	Valid bool
	Value decimal.Decimal
}

// DefinedRatio returns a defined ratio
func DefinedRatio(v decimal.Decimal) Ratio {
	return Ratio{Valid: true, Value: v}
}

// UndefinedRatio returns the undefined sentinel
func UndefinedRatio() Ratio {
	return Ratio{}
}

// SafeRatio divides numerator by denominator, returning the undefined
// sentinel when the denominator is zero.
func SafeRatio(numerator, denominator decimal.Decimal) Ratio {
	if denominator.IsZero() {
		return UndefinedRatio()
	}
	return DefinedRatio(numerator.Div(denominator))
}

// Abs returns the ratio with a non-negative value; undefined stays undefined
func (r Ratio) Abs() Ratio {
	if !r.Valid {
		return r
	}
	return DefinedRatio(r.Value.Abs())
}

// MarshalJSON renders the value, or null when undefined
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON restores the value, treating null as the undefined sentinel
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = UndefinedRatio()
		return nil
	}
	var v decimal.Decimal
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = DefinedRatio(v)
	return nil
}

// String returns the decimal string, or "undefined"
func (r Ratio) String() string {
	if !r.Valid {
		return "undefined"
	}
	return r.Value.String()
}
