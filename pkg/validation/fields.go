// Package validation provides reusable field validators. Validators return an
// empty string when the value is acceptable and a human-readable message
// otherwise; callers collect every message rather than failing fast so a
// client can fix all problems in one round trip.
package validation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Age checks that an age falls in the supported range.
func Age(age int) string {
	if age < 18 || age > 100 {
		return "Age must be between 18 and 100"
	}
	return ""
}

// Year checks that a year falls within [min, max].
func Year(year, min, max int) string {
	if year < min || year > max {
		return fmt.Sprintf("Year must be between %d and %d", min, max)
	}
	return ""
}

// Percentage checks that a rate (expressed as a percentage, 8.0 meaning 8%)
// falls within [min, max].
func Percentage(rate, min, max decimal.Decimal) string {
	if rate.LessThan(min) || rate.GreaterThan(max) {
		return fmt.Sprintf("Percentage must be between %s%% and %s%%", min, max)
	}
	return ""
}

// NonNegative checks that a monetary amount is not negative.
func NonNegative(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "Value cannot be negative"
	}
	return ""
}

// PositiveInt checks that an integer falls within [min, max].
func PositiveInt(value, min, max int) string {
	if value < min || value > max {
		return fmt.Sprintf("Value must be between %d and %d", min, max)
	}
	return ""
}

// RateRange checks the low <= current <= high ordering for rate estimates.
func RateRange(low, current, high decimal.Decimal) string {
	if low.LessThanOrEqual(current) && current.LessThanOrEqual(high) {
		return ""
	}
	return fmt.Sprintf("Current rate (%s%%) must be between low (%s%%) and high (%s%%)", current, low, high)
}

// OneOf checks membership in a closed set of string values.
func OneOf(value string, allowed ...string) string {
	for _, candidate := range allowed {
		if value == candidate {
			return ""
		}
	}
	return fmt.Sprintf("Value %q is not one of the supported options", value)
}

// Collect appends msg to errors when msg is non-empty, optionally prefixed
// with a field label.
func Collect(errors []string, label, msg string) []string {
	if msg == "" {
		return errors
	}
	if label != "" {
		msg = fmt.Sprintf("%s: %s", label, msg)
	}
	return append(errors, msg)
}
