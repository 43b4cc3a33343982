// Package moneyutil provides common decimal helpers for currency math.
package moneyutil

import (
	"github.com/shopspring/decimal"

	"sterling/pkg/constants"
)

var (
	// One is the decimal constant 1.
	One = decimal.NewFromInt(1)

	hundred = decimal.NewFromInt(constants.PercentageMultiplier)
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Halves round up (away from zero), matching HMRC-style monetary rounding.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CurrencyScale)
}

// RateFraction converts a percentage rate (8.0 means 8%) into a fraction (0.08).
func RateFraction(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}

// GrowthFactor returns 1 + rate for a percentage rate.
func GrowthFactor(pct decimal.Decimal) decimal.Decimal {
	return One.Add(RateFraction(pct))
}

// Compound returns amount × (1 + rate)^periods for a percentage rate.
func Compound(amount, pct decimal.Decimal, periods int) decimal.Decimal {
	return amount.Mul(GrowthFactor(pct).Pow(decimal.NewFromInt(int64(periods))))
}

// Percentage calculates what percentage value is of total; zero total yields zero.
func Percentage(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Div(total).Mul(hundred)
}

// NonNegative floors a value at zero.
func NonNegative(val decimal.Decimal) decimal.Decimal {
	if val.IsNegative() {
		return decimal.Zero
	}
	return val
}

// Min returns the smaller of two decimals.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two decimals.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
