// Package format renders currency, rates and signed ledger amounts for
// descriptions and console output.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + formatted
	}
	return formatted
}

// SignedCurrency always carries a sign, so ledger amounts read as movements
// (e.g., "+$1,189.04", "-$5,000.00"). Zero renders without a sign.
func SignedCurrency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	switch {
	case formatted == "0.00":
		return "$0.00"
	case amount < 0:
		return "-$" + formatted
	default:
		return "+$" + formatted
	}
}

// Percent renders an annual rate such as 3.5 as "3.50%".
func Percent(rate float64) string {
	return printer.Sprintf("%.2f%%", rate)
}

func formatPositiveCurrency(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0.00"
	}
	return printer.Sprintf("%.2f", value)
}
