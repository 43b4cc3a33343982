package planner

import (
	"fmt"

	"github.com/shopspring/decimal"

	"sterling/pkg/constants"
	"sterling/pkg/format"
	"sterling/pkg/moneyutil"
	"sterling/pkg/validation"
)

// TimeToFreedomInput holds the parameters for a financial-independence
// timeline. Rates are percentages.
type TimeToFreedomInput struct {
	AnnualExpenses       decimal.Decimal
	CurrentInvestments   decimal.Decimal
	AnnualContribution   decimal.Decimal
	InvestmentReturnRate decimal.Decimal
	SafeWithdrawalRate   decimal.Decimal
}

// Validate collects every problem with the input.
func (in TimeToFreedomInput) Validate() []string {
	var errors []string
	errors = validation.Collect(errors, "Annual expenses", validation.NonNegative(in.AnnualExpenses))
	errors = validation.Collect(errors, "Current investments", validation.NonNegative(in.CurrentInvestments))
	errors = validation.Collect(errors, "Annual contribution", validation.NonNegative(in.AnnualContribution))
	errors = validation.Collect(errors, "Investment return rate", validation.Percentage(in.InvestmentReturnRate, rateMin, rateMax))
	errors = validation.Collect(errors, "Safe withdrawal rate", validation.Percentage(in.SafeWithdrawalRate, rateMin, rateMax))
	if !in.SafeWithdrawalRate.IsPositive() {
		errors = append(errors, "Safe withdrawal rate must be greater than 0")
	}
	return errors
}

// TimeToFreedomYear is one year in the accumulation timeline.
type TimeToFreedomYear struct {
	Year            int
	PortfolioValue  decimal.Decimal
	ProgressPercent decimal.Decimal
}

// TimeToFreedomResult reports the freedom number and the projected years to
// reach it. YearsToFreedom is nil when the target is out of reach within the
// search horizon.
type TimeToFreedomResult struct {
	FreedomNumber  decimal.Decimal
	YearsToFreedom *int
	Timeline       []TimeToFreedomYear
	Summary        string
}

// CalculateTimeToFreedom computes the portfolio value needed to sustain the
// annual expenses at the safe withdrawal rate, then compounds contributions
// until the portfolio reaches it (capped at MaxFreedomYears).
func CalculateTimeToFreedom(in TimeToFreedomInput) *TimeToFreedomResult {
	freedomNumber := in.AnnualExpenses.Div(moneyutil.RateFraction(in.SafeWithdrawalRate))

	result := &TimeToFreedomResult{FreedomNumber: moneyutil.Round(freedomNumber)}

	value := in.CurrentInvestments
	if value.GreaterThanOrEqual(freedomNumber) {
		years := 0
		result.YearsToFreedom = &years
		result.Summary = fmt.Sprintf("You have already reached your freedom number of %s.",
			format.WholeCurrency(freedomNumber))
		return result
	}

	for year := 1; year <= constants.MaxFreedomYears; year++ {
		value = value.Mul(moneyutil.GrowthFactor(in.InvestmentReturnRate)).Add(in.AnnualContribution)

		result.Timeline = append(result.Timeline, TimeToFreedomYear{
			Year:            year,
			PortfolioValue:  moneyutil.Round(value),
			ProgressPercent: moneyutil.Min(moneyutil.Percentage(value, freedomNumber), decimal.NewFromInt(100)).Round(1),
		})

		if value.GreaterThanOrEqual(freedomNumber) {
			y := year
			result.YearsToFreedom = &y
			break
		}
	}

	if result.YearsToFreedom != nil {
		result.Summary = fmt.Sprintf("At this pace you reach your freedom number of %s in %d years.",
			format.WholeCurrency(freedomNumber), *result.YearsToFreedom)
	} else {
		result.Summary = fmt.Sprintf("Your freedom number of %s is out of reach within %d years at the current pace.",
			format.WholeCurrency(freedomNumber), constants.MaxFreedomYears)
	}

	return result
}
