package payoff

import (
	"github.com/shopspring/decimal"

	"sterling/pkg/moneyutil"
	"sterling/pkg/tax"
)

// ScenarioType identifies one set of economic assumptions.
type ScenarioType string

const (
	ScenarioOptimistic  ScenarioType = "optimistic"
	ScenarioPessimistic ScenarioType = "pessimistic"
	ScenarioRealistic   ScenarioType = "realistic"
)

// ScenarioParams is the fixed assumption set driving one projection. Rates
// are percentages (8.0 means 8%).
type ScenarioParams struct {
	Type               ScenarioType
	InvestmentRate     decimal.Decimal
	LoanRate           decimal.Decimal
	SalaryGrowth       decimal.Decimal
	ContributionGrowth decimal.Decimal
}

// YearlyProjection is one year-end snapshot within a scenario.
type YearlyProjection struct {
	Year             int
	LoanBalance      decimal.Decimal
	InvestmentValue  decimal.Decimal
	AnnualRepayment  decimal.Decimal
	InterestAccrued  decimal.Decimal
	InvestmentGrowth decimal.Decimal
}

// ScenarioProjection is the full result of projecting one scenario across
// the loan horizon. Owned by a single calculation; never shared or mutated
// after Project returns.
type ScenarioProjection struct {
	Type                 ScenarioType
	InvestmentGrowthRate decimal.Decimal
	LoanInterestRate     decimal.Decimal
	Years                []YearlyProjection
	TotalLoanCost        decimal.Decimal
	FinalInvestmentValue decimal.Decimal
	CrossoverYear        *int
	NetBenefit           decimal.Decimal
}

// Scenarios derives the three assumption sets from the input: optimistic
// pairs the best investment growth with the cheapest loan, pessimistic the
// reverse, and realistic takes the averages.
func Scenarios(in Input) []ScenarioParams {
	two := decimal.NewFromInt(2)
	return []ScenarioParams{
		{
			Type:               ScenarioOptimistic,
			InvestmentRate:     in.InvestmentGrowthHigh,
			LoanRate:           in.LoanInterestLow,
			SalaryGrowth:       in.SalaryGrowthOptimistic,
			ContributionGrowth: in.InvestmentAmountGrowth,
		},
		{
			Type:               ScenarioPessimistic,
			InvestmentRate:     in.InvestmentGrowthLow,
			LoanRate:           in.LoanInterestHigh,
			SalaryGrowth:       in.SalaryGrowthPessimistic,
			ContributionGrowth: in.InvestmentAmountGrowth,
		},
		{
			Type:               ScenarioRealistic,
			InvestmentRate:     in.InvestmentGrowthAverage,
			LoanRate:           in.LoanInterestCurrent,
			SalaryGrowth:       in.SalaryGrowthOptimistic.Add(in.SalaryGrowthPessimistic).Div(two),
			ContributionGrowth: in.InvestmentAmountGrowth,
		},
	}
}

// Project advances one scenario year by year from the current year to the
// loan end year inclusive. A horizon that has already passed produces an
// empty series with zero totals, which is a valid degenerate result.
//
// The investment pot starts at zero: InvestmentAmount is an annual
// contribution, not a lump sum.
func Project(params ScenarioParams, in Input, table *tax.Table) ScenarioProjection {
	projection := ScenarioProjection{
		Type:                 params.Type,
		InvestmentGrowthRate: params.InvestmentRate,
		LoanInterestRate:     params.LoanRate,
	}

	balance := in.InitialLoanBalance
	investment := decimal.Zero
	totalCost := decimal.Zero

	for year := in.CurrentYear; year <= in.LoanEndYear(); year++ {
		elapsed := year - in.CurrentYear
		income := moneyutil.Compound(in.IncomePreTax, params.SalaryGrowth, elapsed)
		repayment := table.Plan2Repayment(income)

		interest := balance.Mul(moneyutil.RateFraction(params.LoanRate))
		balance = moneyutil.NonNegative(balance.Add(interest).Sub(repayment))

		growth := investment.Mul(moneyutil.RateFraction(params.InvestmentRate))
		contribution := moneyutil.Compound(in.InvestmentAmount, params.ContributionGrowth, elapsed)
		investment = investment.Add(growth).Add(contribution)

		totalCost = totalCost.Add(repayment).Add(interest)

		if projection.CrossoverYear == nil && investment.GreaterThanOrEqual(totalCost) {
			y := year
			projection.CrossoverYear = &y
		}

		projection.Years = append(projection.Years, YearlyProjection{
			Year:             year,
			LoanBalance:      balance,
			InvestmentValue:  investment,
			AnnualRepayment:  repayment,
			InterestAccrued:  interest,
			InvestmentGrowth: growth,
		})
	}

	projection.TotalLoanCost = moneyutil.Round(totalCost)
	projection.FinalInvestmentValue = moneyutil.Round(investment)
	projection.NetBenefit = projection.FinalInvestmentValue.Sub(projection.TotalLoanCost)
	return projection
}
