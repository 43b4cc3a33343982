// Package planner holds the single-formula calculators: rent vs buy,
// emergency fund, resilience score, and time to freedom. Each follows the
// same shape as the payoff engine — validate, run a bounded year loop or
// closed-form formula, return an immutable result with a summary string.
package planner

import (
	"fmt"

	"github.com/shopspring/decimal"

	"sterling/pkg/constants"
	"sterling/pkg/format"
	"sterling/pkg/moneyutil"
	"sterling/pkg/validation"
)

var (
	rateMin = decimal.Zero
	rateMax = decimal.NewFromInt(20)
)

// RentVsBuyInput holds the parameters for a rent-vs-buy comparison. Rates
// are percentages; amounts are GBP.
type RentVsBuyInput struct {
	PropertyPrice        decimal.Decimal
	DepositAmount        decimal.Decimal
	MortgageRate         decimal.Decimal
	MortgageTermYears    int
	MonthlyRent          decimal.Decimal
	RentGrowthRate       decimal.Decimal
	HomeAppreciationRate decimal.Decimal
	MaintenanceRate      decimal.Decimal
	PropertyTaxRate      decimal.Decimal
	InsuranceAnnual      decimal.Decimal
	BuyingCosts          decimal.Decimal
	SellingCosts         decimal.Decimal
	InvestmentReturnRate decimal.Decimal
	AnalysisYears        int
}

// Validate collects every problem with the input.
func (in RentVsBuyInput) Validate() []string {
	var errors []string

	errors = validation.Collect(errors, "Property price", validation.NonNegative(in.PropertyPrice))
	errors = validation.Collect(errors, "Deposit amount", validation.NonNegative(in.DepositAmount))
	errors = validation.Collect(errors, "Monthly rent", validation.NonNegative(in.MonthlyRent))
	errors = validation.Collect(errors, "Insurance annual", validation.NonNegative(in.InsuranceAnnual))
	errors = validation.Collect(errors, "Buying costs", validation.NonNegative(in.BuyingCosts))
	errors = validation.Collect(errors, "Selling costs", validation.NonNegative(in.SellingCosts))

	errors = validation.Collect(errors, "Mortgage rate", validation.Percentage(in.MortgageRate, rateMin, rateMax))
	errors = validation.Collect(errors, "Rent growth rate", validation.Percentage(in.RentGrowthRate, rateMin, rateMax))
	errors = validation.Collect(errors, "Home appreciation rate", validation.Percentage(in.HomeAppreciationRate, rateMin, rateMax))
	errors = validation.Collect(errors, "Maintenance rate", validation.Percentage(in.MaintenanceRate, rateMin, rateMax))
	errors = validation.Collect(errors, "Property tax rate", validation.Percentage(in.PropertyTaxRate, rateMin, rateMax))
	errors = validation.Collect(errors, "Investment return rate", validation.Percentage(in.InvestmentReturnRate, rateMin, rateMax))

	errors = validation.Collect(errors, "Mortgage term years", validation.PositiveInt(in.MortgageTermYears, 1, 50))
	errors = validation.Collect(errors, "Analysis years", validation.PositiveInt(in.AnalysisYears, 1, constants.MaxProjectionYears))

	if in.DepositAmount.GreaterThan(in.PropertyPrice) {
		errors = append(errors, "Deposit amount cannot exceed property price")
	}

	return errors
}

// RentVsBuyYear is one year's snapshot in the comparison series.
type RentVsBuyYear struct {
	Year         int
	RentCost     decimal.Decimal
	BuyCost      decimal.Decimal
	RentNetWorth decimal.Decimal
	BuyNetWorth  decimal.Decimal
}

// RentVsBuyResult compares total costs and net worth under each strategy.
type RentVsBuyResult struct {
	TotalCostRent decimal.Decimal
	TotalCostBuy  decimal.Decimal
	NetWorthRent  decimal.Decimal
	NetWorthBuy   decimal.Decimal
	BreakEvenYear *int
	Summary       string
	Series        []RentVsBuyYear
}

// MonthlyMortgagePayment computes the level payment for a repayment
// mortgage using the standard amortization formula.
func MonthlyMortgagePayment(principal, annualRatePct decimal.Decimal, termMonths int) decimal.Decimal {
	months := decimal.NewFromInt(int64(termMonths))
	if annualRatePct.IsZero() {
		return principal.Div(months)
	}

	monthlyRate := moneyutil.RateFraction(annualRatePct).Div(decimal.NewFromInt(constants.MonthsPerYear))
	power := moneyutil.One.Add(monthlyRate).Pow(months)
	discountFactor := power.Sub(moneyutil.One).Div(power)
	return principal.Mul(monthlyRate).Div(discountFactor)
}

// CalculateRentVsBuy runs the year-by-year comparison. The renter invests
// the deposit and purchase costs up front plus any annual cash-flow
// advantage over the owner; the owner builds equity in an appreciating home.
func CalculateRentVsBuy(in RentVsBuyInput) *RentVsBuyResult {
	principal := in.PropertyPrice.Sub(in.DepositAmount)
	termMonths := in.MortgageTermYears * constants.MonthsPerYear
	payment := MonthlyMortgagePayment(principal, in.MortgageRate, termMonths)
	monthlyRate := moneyutil.RateFraction(in.MortgageRate).Div(decimal.NewFromInt(constants.MonthsPerYear))

	homeValue := in.PropertyPrice
	mortgageBalance := principal
	annualRent := in.MonthlyRent.Mul(decimal.NewFromInt(constants.MonthsPerYear))
	renterInvestment := in.DepositAmount.Add(in.BuyingCosts)

	totalRentCost := decimal.Zero
	totalBuyCost := in.BuyingCosts

	result := &RentVsBuyResult{}

	for year := 1; year <= in.AnalysisYears; year++ {
		// Owner's cash outlay for the year.
		buyCost := in.InsuranceAnnual.
			Add(homeValue.Mul(moneyutil.RateFraction(in.MaintenanceRate))).
			Add(homeValue.Mul(moneyutil.RateFraction(in.PropertyTaxRate)))
		for month := 0; month < constants.MonthsPerYear; month++ {
			if mortgageBalance.IsZero() {
				break
			}
			interest := mortgageBalance.Mul(monthlyRate)
			principalPaid := moneyutil.Min(payment.Sub(interest), mortgageBalance)
			mortgageBalance = moneyutil.NonNegative(mortgageBalance.Sub(principalPaid))
			buyCost = buyCost.Add(interest).Add(principalPaid)
		}

		totalRentCost = totalRentCost.Add(annualRent)
		totalBuyCost = totalBuyCost.Add(buyCost)

		// The renter invests whatever the owner spends beyond rent.
		renterInvestment = renterInvestment.Mul(moneyutil.GrowthFactor(in.InvestmentReturnRate)).
			Add(moneyutil.NonNegative(buyCost.Sub(annualRent)))

		homeValue = homeValue.Mul(moneyutil.GrowthFactor(in.HomeAppreciationRate))

		rentNetWorth := renterInvestment
		buyNetWorth := homeValue.Sub(mortgageBalance).Sub(in.SellingCosts)

		result.Series = append(result.Series, RentVsBuyYear{
			Year:         year,
			RentCost:     moneyutil.Round(annualRent),
			BuyCost:      moneyutil.Round(buyCost),
			RentNetWorth: moneyutil.Round(rentNetWorth),
			BuyNetWorth:  moneyutil.Round(buyNetWorth),
		})

		if result.BreakEvenYear == nil && buyNetWorth.GreaterThanOrEqual(rentNetWorth) {
			y := year
			result.BreakEvenYear = &y
		}

		annualRent = annualRent.Mul(moneyutil.GrowthFactor(in.RentGrowthRate))
	}

	final := result.Series[len(result.Series)-1]
	result.TotalCostRent = moneyutil.Round(totalRentCost)
	result.TotalCostBuy = moneyutil.Round(totalBuyCost)
	result.NetWorthRent = final.RentNetWorth
	result.NetWorthBuy = final.BuyNetWorth
	result.Summary = rentVsBuySummary(result, in.AnalysisYears)
	return result
}

func rentVsBuySummary(result *RentVsBuyResult, years int) string {
	diff := result.NetWorthBuy.Sub(result.NetWorthRent)
	switch {
	case diff.IsPositive():
		msg := fmt.Sprintf("Buying leaves you %s better off after %d years.", format.WholeCurrency(diff), years)
		if result.BreakEvenYear != nil {
			msg += fmt.Sprintf(" Buying breaks even with renting in year %d.", *result.BreakEvenYear)
		}
		return msg
	case diff.IsNegative():
		return fmt.Sprintf("Renting and investing leaves you %s better off after %d years.", format.WholeCurrency(diff.Abs()), years)
	default:
		return fmt.Sprintf("Renting and buying come out even after %d years.", years)
	}
}
