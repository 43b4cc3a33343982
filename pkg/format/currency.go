package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency returns a pound string with thousands separators (e.g., "-£1,234.56").
func Currency(amount decimal.Decimal) string {
	formatted := formatPositiveCurrency(amount.Abs(), 2)
	if amount.IsNegative() {
		return "-£" + formatted
	}
	return "£" + formatted
}

// WholeCurrency returns a pound string rounded to whole pounds (e.g., "£1,235").
func WholeCurrency(amount decimal.Decimal) string {
	formatted := formatPositiveCurrency(amount.Abs(), 0)
	if amount.IsNegative() {
		return "-£" + formatted
	}
	return "£" + formatted
}

func formatPositiveCurrency(value decimal.Decimal, places int32) string {
	formatted := value.StringFixed(places)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}
