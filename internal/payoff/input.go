// Package payoff implements the loan-vs-investment projection engine: three
// economic scenarios projected year by year over the loan horizon, compared
// to produce a pay-off-early versus keep-investing recommendation.
package payoff

import (
	"fmt"

	"github.com/shopspring/decimal"

	"sterling/pkg/validation"
)

// Rate bounds shared by every percentage input (8.0 means 8%).
var (
	rateMin = decimal.Zero
	rateMax = decimal.NewFromInt(20)
)

// Input holds the user-provided parameters for one calculation. Immutable
// once constructed; validation never mutates it.
type Input struct {
	Age               int
	CurrentYear       int
	GraduationYear    int
	LoanDurationYears int

	InvestmentAmount        decimal.Decimal
	InvestmentGrowthHigh    decimal.Decimal
	InvestmentGrowthLow     decimal.Decimal
	InvestmentGrowthAverage decimal.Decimal

	// InvestmentAmountGrowth grows the annual contribution. The HTTP
	// boundary pins it to zero but the engine supports any rate.
	InvestmentAmountGrowth decimal.Decimal

	IncomePreTax            decimal.Decimal
	SalaryGrowthOptimistic  decimal.Decimal
	SalaryGrowthPessimistic decimal.Decimal

	InitialLoanBalance  decimal.Decimal
	LoanInterestCurrent decimal.Decimal
	LoanInterestHigh    decimal.Decimal
	LoanInterestLow     decimal.Decimal
}

// LoanEndYear is the year the loan is written off.
func (in Input) LoanEndYear() int {
	return in.GraduationYear + in.LoanDurationYears
}

// Validate checks every field and cross-field rule, collecting all failures
// so the caller can report them in one response.
func (in Input) Validate() []string {
	var errors []string

	errors = validation.Collect(errors, "", validation.Age(in.Age))
	if msg := validation.Year(in.CurrentYear, 1980, 2100); msg != "" {
		errors = append(errors, "Current year must be between 1980 and 2100")
	}
	if in.GraduationYear < 1980 || in.GraduationYear > in.CurrentYear+10 {
		errors = append(errors, fmt.Sprintf("Graduation year must be between 1980 and %d", in.CurrentYear+10))
	}
	if msg := validation.PositiveInt(in.LoanDurationYears, 1, 50); msg != "" {
		errors = append(errors, "Loan duration must be between 1 and 50 years")
	}

	if in.InvestmentGrowthLow.GreaterThan(in.InvestmentGrowthHigh) {
		errors = append(errors, fmt.Sprintf("Investment growth low (%s%%) cannot exceed high (%s%%)",
			in.InvestmentGrowthLow, in.InvestmentGrowthHigh))
	}
	errors = validation.Collect(errors, "Investment growth low", validation.Percentage(in.InvestmentGrowthLow, rateMin, rateMax))
	errors = validation.Collect(errors, "Investment growth high", validation.Percentage(in.InvestmentGrowthHigh, rateMin, rateMax))
	errors = validation.Collect(errors, "Investment growth average", validation.Percentage(in.InvestmentGrowthAverage, rateMin, rateMax))
	if in.InvestmentGrowthAverage.LessThan(in.InvestmentGrowthLow) ||
		in.InvestmentGrowthAverage.GreaterThan(in.InvestmentGrowthHigh) {
		errors = append(errors, fmt.Sprintf("Investment growth average (%s%%) must be between low (%s%%) and high (%s%%)",
			in.InvestmentGrowthAverage, in.InvestmentGrowthLow, in.InvestmentGrowthHigh))
	}

	if msg := validation.RateRange(in.LoanInterestLow, in.LoanInterestCurrent, in.LoanInterestHigh); msg != "" {
		errors = append(errors, fmt.Sprintf("Loan interest current (%s%%) must be between low (%s%%) and high (%s%%)",
			in.LoanInterestCurrent, in.LoanInterestLow, in.LoanInterestHigh))
	}
	errors = validation.Collect(errors, "Loan interest low", validation.Percentage(in.LoanInterestLow, rateMin, rateMax))
	errors = validation.Collect(errors, "Loan interest current", validation.Percentage(in.LoanInterestCurrent, rateMin, rateMax))
	errors = validation.Collect(errors, "Loan interest high", validation.Percentage(in.LoanInterestHigh, rateMin, rateMax))

	if in.InvestmentAmount.IsNegative() {
		errors = append(errors, "Investment amount cannot be negative")
	}
	if in.IncomePreTax.IsNegative() {
		errors = append(errors, "Pre-tax income cannot be negative")
	}
	if in.InitialLoanBalance.IsNegative() {
		errors = append(errors, "Initial loan balance cannot be negative")
	}

	errors = validation.Collect(errors, "Investment amount growth", validation.Percentage(in.InvestmentAmountGrowth, rateMin, rateMax))
	errors = validation.Collect(errors, "Salary growth optimistic", validation.Percentage(in.SalaryGrowthOptimistic, rateMin, rateMax))
	errors = validation.Collect(errors, "Salary growth pessimistic", validation.Percentage(in.SalaryGrowthPessimistic, rateMin, rateMax))
	if in.SalaryGrowthPessimistic.GreaterThan(in.SalaryGrowthOptimistic) {
		errors = append(errors, fmt.Sprintf("Salary growth pessimistic (%s%%) cannot exceed optimistic (%s%%)",
			in.SalaryGrowthPessimistic, in.SalaryGrowthOptimistic))
	}

	if in.GraduationYear+in.Age < in.CurrentYear {
		errors = append(errors, "Invalid combination: graduation year and age don't align with current year")
	}
	if forgivenessAge := in.Age + (in.LoanEndYear() - in.CurrentYear); forgivenessAge > 100 {
		errors = append(errors, fmt.Sprintf("Loan would not be forgiven until age %d, which exceeds maximum age of 100", forgivenessAge))
	}
	if in.GraduationYear > in.CurrentYear {
		errors = append(errors, fmt.Sprintf("Graduation year (%d) is in the future. This calculator is for graduates only.", in.GraduationYear))
	}

	return errors
}
