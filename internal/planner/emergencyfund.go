package planner

import (
	"fmt"

	"github.com/shopspring/decimal"

	"sterling/pkg/format"
	"sterling/pkg/moneyutil"
	"sterling/pkg/validation"
)

// EmergencyFundInput holds the parameters for an emergency fund check.
type EmergencyFundInput struct {
	MonthlyExpenses decimal.Decimal
	TargetMonths    int
	CurrentSavings  decimal.Decimal
}

// Validate collects every problem with the input.
func (in EmergencyFundInput) Validate() []string {
	var errors []string
	errors = validation.Collect(errors, "Monthly expenses", validation.NonNegative(in.MonthlyExpenses))
	errors = validation.Collect(errors, "Target months", validation.PositiveInt(in.TargetMonths, 1, 36))
	errors = validation.Collect(errors, "Current savings", validation.NonNegative(in.CurrentSavings))
	return errors
}

// EmergencyFundResult reports the target fund, the gap to it, and how many
// months the current savings cover. CoverageMonths is nil when monthly
// expenses are zero — coverage is undefined, not infinite.
type EmergencyFundResult struct {
	TargetFund     decimal.Decimal
	SavingsGap     decimal.Decimal
	CoverageMonths *decimal.Decimal
	Summary        string
}

// CalculateEmergencyFund computes the target fund and gap.
func CalculateEmergencyFund(in EmergencyFundInput) *EmergencyFundResult {
	target := in.MonthlyExpenses.Mul(decimal.NewFromInt(int64(in.TargetMonths)))
	gap := moneyutil.NonNegative(target.Sub(in.CurrentSavings))

	result := &EmergencyFundResult{
		TargetFund: moneyutil.Round(target),
		SavingsGap: moneyutil.Round(gap),
	}

	if in.MonthlyExpenses.IsPositive() {
		coverage := in.CurrentSavings.Div(in.MonthlyExpenses).Round(1)
		result.CoverageMonths = &coverage
	}

	if gap.IsZero() {
		result.Summary = fmt.Sprintf("You are fully funded: your savings cover the %d-month target of %s.",
			in.TargetMonths, format.WholeCurrency(target))
	} else {
		result.Summary = fmt.Sprintf("You need %s more to reach the %d-month target of %s.",
			format.WholeCurrency(gap), in.TargetMonths, format.WholeCurrency(target))
	}

	return result
}
