// Package tax holds the immutable per-tax-year lookup tables (income tax
// bands, National Insurance thresholds, student loan plans) and the shared
// band apportionment algorithm used by every marginal-rate calculation.
package tax

import (
	"github.com/shopspring/decimal"

	"sterling/pkg/moneyutil"
)

// Band is one marginal-rate tier. Upper is nil for the open-ended top band.
// Rate is a fraction (0.20 means 20%).
type Band struct {
	Name  string
	Lower decimal.Decimal
	Upper *decimal.Decimal
	Rate  decimal.Decimal
}

// BandSlice reports how much of an amount fell into one band and the charge
// on that slice. Zero slices are still reported so a caller can render
// "you are in this band but owe £0".
type BandSlice struct {
	Name    string
	Rate    decimal.Decimal
	Lower   decimal.Decimal
	Upper   *decimal.Decimal
	Taxable decimal.Decimal
	Charge  decimal.Decimal
}

// Apportion splits amount across the ordered band list and sums the charge.
// Bands must be contiguous and non-overlapping; that is validated when a
// Table is loaded, not here. The total is rounded to two decimals at the end
// rather than per band so rounding error does not compound.
func Apportion(amount decimal.Decimal, bands []Band) (decimal.Decimal, []BandSlice) {
	total := decimal.Zero
	slices := make([]BandSlice, 0, len(bands))

	for _, band := range bands {
		capped := amount
		if band.Upper != nil {
			capped = moneyutil.Min(amount, *band.Upper)
		}
		taxable := moneyutil.NonNegative(capped.Sub(band.Lower))
		charge := taxable.Mul(band.Rate)
		total = total.Add(charge)

		slices = append(slices, BandSlice{
			Name:    band.Name,
			Rate:    band.Rate,
			Lower:   band.Lower,
			Upper:   band.Upper,
			Taxable: taxable,
			Charge:  charge,
		})
	}

	return moneyutil.Round(total), slices
}

// TaperedAllowance reduces the personal allowance by £1 for every £2 of
// adjusted net income above taperStart, reaching zero at taperEnd.
func TaperedAllowance(adjustedNetIncome, baseAllowance, taperStart, taperEnd decimal.Decimal) decimal.Decimal {
	if adjustedNetIncome.LessThanOrEqual(taperStart) {
		return baseAllowance
	}
	if adjustedNetIncome.GreaterThanOrEqual(taperEnd) {
		return decimal.Zero
	}
	reduction := adjustedNetIncome.Sub(taperStart).Div(decimal.NewFromInt(2))
	return moneyutil.NonNegative(baseAllowance.Sub(reduction))
}
