// Package incometax computes a full UK deduction breakdown for one earner:
// income tax by jurisdiction band, National Insurance by category letter,
// student loan deduction, pension and other pre-tax deductions, and net pay
// at annual, monthly, and weekly frequencies.
package incometax

import (
	"github.com/shopspring/decimal"

	"sterling/pkg/constants"
	"sterling/pkg/moneyutil"
	"sterling/pkg/tax"
	"sterling/pkg/validation"
)

// Pay frequencies accepted on the wire.
const (
	FrequencyAnnual  = "annual"
	FrequencyMonthly = "monthly"
	FrequencyWeekly  = "weekly"
)

// Pension contribution types accepted on the wire.
const (
	PensionNone       = "none"
	PensionPercentage = "percentage"
	PensionAmount     = "amount"
)

// Input holds one tax calculation request. GrossIncome is per PayFrequency;
// everything else is annual.
type Input struct {
	GrossIncome              decimal.Decimal
	BonusAnnual              decimal.Decimal
	PayFrequency             string
	TaxJurisdiction          string
	NICategory               string
	StudentLoanPlan          string
	PensionContributionType  string
	PensionContributionValue decimal.Decimal
	OtherPretaxDeductions    decimal.Decimal
	TaxYear                  string
}

// Validate collects every problem with the input.
func (in Input) Validate() []string {
	var errors []string

	errors = validation.Collect(errors, "Gross income", validation.NonNegative(in.GrossIncome))
	errors = validation.Collect(errors, "Bonus", validation.NonNegative(in.BonusAnnual))
	errors = validation.Collect(errors, "Other pre-tax deductions", validation.NonNegative(in.OtherPretaxDeductions))
	errors = validation.Collect(errors, "Pay frequency",
		validation.OneOf(in.PayFrequency, FrequencyAnnual, FrequencyMonthly, FrequencyWeekly))
	errors = validation.Collect(errors, "Tax jurisdiction",
		validation.OneOf(in.TaxJurisdiction, tax.JurisdictionEnglandWalesNI, tax.JurisdictionScotland))
	errors = validation.Collect(errors, "NI category",
		validation.OneOf(in.NICategory, "A", "B", "C", "H", "J", "M", "Z"))
	errors = validation.Collect(errors, "Student loan plan",
		validation.OneOf(in.StudentLoanPlan, tax.PlanNone, tax.Plan1, tax.Plan2, tax.Plan4, tax.Plan5, tax.PlanPostgraduate))
	errors = validation.Collect(errors, "Pension contribution type",
		validation.OneOf(in.PensionContributionType, PensionNone, PensionPercentage, PensionAmount))

	if in.PensionContributionType != PensionNone {
		errors = validation.Collect(errors, "Pension contribution value", validation.NonNegative(in.PensionContributionValue))
		if in.PensionContributionType == PensionPercentage &&
			in.PensionContributionValue.GreaterThan(decimal.NewFromInt(constants.PercentageMultiplier)) {
			errors = append(errors, "Pension contribution value: Percentage cannot exceed 100%")
		}
	}

	return errors
}

// BandBreakdown is one band's slice of the charge, for display.
type BandBreakdown struct {
	BandName      string
	Rate          decimal.Decimal
	FromAmount    decimal.Decimal
	ToAmount      *decimal.Decimal
	TaxableAmount decimal.Decimal
	Amount        decimal.Decimal
}

// Result is the full deduction breakdown and net pay summary.
type Result struct {
	TaxYear                string
	GrossAnnual            decimal.Decimal
	TaxableIncome          decimal.Decimal
	PersonalAllowance      decimal.Decimal
	IncomeTaxTotal         decimal.Decimal
	IncomeTaxBands         []BandBreakdown
	NITotal                decimal.Decimal
	NIBands                []BandBreakdown
	StudentLoanTotal       decimal.Decimal
	PensionContribution    decimal.Decimal
	TotalDeductions        decimal.Decimal
	EffectiveDeductionRate decimal.Decimal
	NetAnnual              decimal.Decimal
	NetMonthly             decimal.Decimal
	NetWeekly              decimal.Decimal
}

// Calculate runs the deduction pipeline against an already-validated input.
func Calculate(in Input, table *tax.Table) (*Result, error) {
	grossAnnual := annualize(in.GrossIncome, in.PayFrequency).Add(in.BonusAnnual)

	pension := pensionContribution(in, grossAnnual)
	adjustedNetIncome := moneyutil.NonNegative(grossAnnual.Sub(pension).Sub(in.OtherPretaxDeductions))

	allowance := table.Allowance(adjustedNetIncome)
	bands, err := table.IncomeTaxBands(in.TaxJurisdiction, allowance)
	if err != nil {
		return nil, err
	}
	incomeTaxTotal, incomeSlices := tax.Apportion(adjustedNetIncome, bands)

	niBands, err := table.NIBands(in.NICategory)
	if err != nil {
		return nil, err
	}
	niTotal, niSlices := tax.Apportion(grossAnnual, niBands)

	studentLoan, err := table.PlanRepayment(adjustedNetIncome, in.StudentLoanPlan)
	if err != nil {
		return nil, err
	}
	studentLoan = moneyutil.Round(studentLoan)

	totalDeductions := incomeTaxTotal.Add(niTotal).Add(studentLoan).Add(pension).Add(in.OtherPretaxDeductions)
	netAnnual := grossAnnual.Sub(totalDeductions)

	return &Result{
		TaxYear:                table.Year,
		GrossAnnual:            moneyutil.Round(grossAnnual),
		TaxableIncome:          moneyutil.Round(moneyutil.NonNegative(adjustedNetIncome.Sub(allowance))),
		PersonalAllowance:      allowance,
		IncomeTaxTotal:         incomeTaxTotal,
		IncomeTaxBands:         breakdown(incomeSlices),
		NITotal:                niTotal,
		NIBands:                breakdown(niSlices),
		StudentLoanTotal:       studentLoan,
		PensionContribution:    moneyutil.Round(pension),
		TotalDeductions:        moneyutil.Round(totalDeductions),
		EffectiveDeductionRate: moneyutil.Percentage(totalDeductions, grossAnnual).Round(2),
		NetAnnual:              moneyutil.Round(netAnnual),
		NetMonthly:             moneyutil.Round(netAnnual.Div(decimal.NewFromInt(constants.MonthsPerYear))),
		NetWeekly:              moneyutil.Round(netAnnual.Div(decimal.NewFromInt(constants.WeeksPerYear))),
	}, nil
}

func annualize(amount decimal.Decimal, frequency string) decimal.Decimal {
	switch frequency {
	case FrequencyMonthly:
		return amount.Mul(decimal.NewFromInt(constants.MonthsPerYear))
	case FrequencyWeekly:
		return amount.Mul(decimal.NewFromInt(constants.WeeksPerYear))
	default:
		return amount
	}
}

func pensionContribution(in Input, grossAnnual decimal.Decimal) decimal.Decimal {
	switch in.PensionContributionType {
	case PensionPercentage:
		return grossAnnual.Mul(in.PensionContributionValue).
			Div(decimal.NewFromInt(constants.PercentageMultiplier))
	case PensionAmount:
		return in.PensionContributionValue
	default:
		return decimal.Zero
	}
}

func breakdown(slices []tax.BandSlice) []BandBreakdown {
	bands := make([]BandBreakdown, 0, len(slices))
	for _, slice := range slices {
		bands = append(bands, BandBreakdown{
			BandName:      slice.Name,
			Rate:          slice.Rate,
			FromAmount:    slice.Lower,
			ToAmount:      slice.Upper,
			TaxableAmount: moneyutil.Round(slice.Taxable),
			Amount:        moneyutil.Round(slice.Charge),
		})
	}
	return bands
}
