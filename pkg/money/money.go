// Package money holds the decimal helpers shared by the ledgers.
package money

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// OrZero dereferences an optional amount; nil reads as zero.
func OrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

// Ptr returns a pointer to a copy of v.
func Ptr(v decimal.Decimal) *decimal.Decimal {
	return &v
}

// Coerce turns a loosely typed stored value into an amount. Anything that is
// not a number or a numeric string becomes zero.
func Coerce(v any) decimal.Decimal {
	switch val := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		return OrZero(val)
	case bool:
		return decimal.Zero
	case string:
		return fromString(val)
	case json.Number:
		return fromString(val.String())
	case float32:
		return decimal.NewFromFloat32(val)
	case float64:
		return decimal.NewFromFloat(val)
	}

	if n, err := cast.ToInt64E(v); err == nil {
		return decimal.NewFromInt(n)
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return decimal.NewFromFloat(f)
	}
	return decimal.Zero
}

func fromString(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Sum adds amounts.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// IsNegative reports whether an optional amount is set and below zero.
func IsNegative(v *decimal.Decimal) bool {
	return v != nil && v.IsNegative()
}
