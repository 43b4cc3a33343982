package planner

import (
	"fmt"

	"github.com/shopspring/decimal"

	"sterling/pkg/moneyutil"
	"sterling/pkg/validation"
)

// ResilienceScoreInput holds the four resilience factors. IncomeStability
// and InsuranceCoverage are self-assessed 0-100 scores.
type ResilienceScoreInput struct {
	Savings           decimal.Decimal
	IncomeStability   int
	DebtLoad          decimal.Decimal
	InsuranceCoverage int
}

// Validate collects every problem with the input.
func (in ResilienceScoreInput) Validate() []string {
	var errors []string
	errors = validation.Collect(errors, "Savings", validation.NonNegative(in.Savings))
	errors = validation.Collect(errors, "Debt load", validation.NonNegative(in.DebtLoad))
	errors = validation.Collect(errors, "Income stability", validation.PositiveInt(in.IncomeStability, 0, 100))
	errors = validation.Collect(errors, "Insurance coverage", validation.PositiveInt(in.InsuranceCoverage, 0, 100))
	return errors
}

// ResilienceScoreResult is the weighted 0-100 index with the factors that
// drag it down.
type ResilienceScoreResult struct {
	ResilienceIndex int
	WeakPoints      []string
	Summary         string
}

// Component weights and scales for the resilience index.
var (
	// savingsFullScore is the savings level scoring 100: six months of a
	// £2,000/month expense baseline.
	savingsFullScore = decimal.NewFromInt(12000)

	weightSavings   = decimal.RequireFromString("0.3")
	weightStability = decimal.RequireFromString("0.3")
	weightDebt      = decimal.RequireFromString("0.2")
	weightInsurance = decimal.RequireFromString("0.2")

	weakPointThreshold = decimal.NewFromInt(50)
	hundredScore       = decimal.NewFromInt(100)
)

// CalculateResilienceScore combines four 0-100 components: savings buffer,
// income stability, debt pressure, and insurance coverage, weighted
// 30/30/20/20.
func CalculateResilienceScore(in ResilienceScoreInput) *ResilienceScoreResult {
	savingsScore := moneyutil.Min(hundredScore, moneyutil.Percentage(in.Savings, savingsFullScore))
	stabilityScore := decimal.NewFromInt(int64(in.IncomeStability))
	insuranceScore := decimal.NewFromInt(int64(in.InsuranceCoverage))

	// Debt pressure: share of the combined balance sheet that is debt-free.
	debtScore := hundredScore
	if in.DebtLoad.IsPositive() {
		debtScore = in.Savings.Div(in.Savings.Add(in.DebtLoad)).Mul(hundredScore)
	}

	index := savingsScore.Mul(weightSavings).
		Add(stabilityScore.Mul(weightStability)).
		Add(debtScore.Mul(weightDebt)).
		Add(insuranceScore.Mul(weightInsurance)).
		Round(0)

	result := &ResilienceScoreResult{ResilienceIndex: int(index.IntPart())}

	if savingsScore.LessThan(weakPointThreshold) {
		result.WeakPoints = append(result.WeakPoints, "Savings buffer is thin; build toward several months of expenses.")
	}
	if stabilityScore.LessThan(weakPointThreshold) {
		result.WeakPoints = append(result.WeakPoints, "Income stability is low; diversify income sources where possible.")
	}
	if debtScore.LessThan(weakPointThreshold) {
		result.WeakPoints = append(result.WeakPoints, "Debt outweighs savings; prioritise paying down high-interest balances.")
	}
	if insuranceScore.LessThan(weakPointThreshold) {
		result.WeakPoints = append(result.WeakPoints, "Insurance coverage has gaps; review protection for major risks.")
	}

	switch {
	case result.ResilienceIndex >= 75:
		result.Summary = fmt.Sprintf("Resilience index %d: strong. Your finances can absorb most shocks.", result.ResilienceIndex)
	case result.ResilienceIndex >= 50:
		result.Summary = fmt.Sprintf("Resilience index %d: moderate. A sustained shock would strain your finances.", result.ResilienceIndex)
	default:
		result.Summary = fmt.Sprintf("Resilience index %d: fragile. Address the weak points below first.", result.ResilienceIndex)
	}

	return result
}
