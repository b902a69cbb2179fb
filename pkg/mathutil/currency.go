// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/mortgage-ledger/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Rounding goes through a decimal so that values like 1.005 round half away
// from zero instead of inheriting binary representation error.
func Round(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	return decimal.NewFromFloat(val).Round(constants.DecimalPlaces).InexactFloat64()
}

// RoundUp rounds a value up to the next whole cent.
func RoundUp(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	return decimal.NewFromFloat(val).RoundCeil(constants.DecimalPlaces).InexactFloat64()
}

// Fixed renders a value with exactly two decimal places.
func Fixed(val float64) string {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return "0.00"
	}
	return decimal.NewFromFloat(val).StringFixed(constants.DecimalPlaces)
}

// NonNegative clamps negative values to zero.
func NonNegative(val float64) float64 {
	if val < 0 {
		return 0
	}
	return val
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// PercentToDecimal converts a percentage such as 3.5 into 0.035.
func PercentToDecimal(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}
