package payoff

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"sterling/pkg/constants"
	"sterling/pkg/format"
	"sterling/pkg/moneyutil"
)

// Decision is the recommended strategy.
type Decision string

const (
	DecisionPayOffEarly   Decision = "pay_off_early"
	DecisionKeepInvesting Decision = "keep_investing"
	DecisionNeutral       Decision = "neutral"
)

// Confidence grades how strongly the scenarios agree on the decision.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Recommendation is the derived decision with supporting figures. It has no
// lifecycle of its own; it exists only inside one Result.
type Recommendation struct {
	Decision      Decision
	Confidence    Confidence
	Rationale     string
	SavingsAmount decimal.Decimal
	NetBenefit    decimal.Decimal
	CrossoverYear *int
	OptimalDate   *time.Time
}

var neutralMarginRatio = decimal.RequireFromString(constants.NeutralMarginRatio)

// Recommend compares the realistic scenario's outcome against the 2% margin
// rule and grades confidence by whether the optimistic and pessimistic
// scenarios agree with it in sign.
func Recommend(optimistic, pessimistic, realistic ScenarioProjection) Recommendation {
	rec := Recommendation{
		NetBenefit:    realistic.NetBenefit,
		SavingsAmount: realistic.NetBenefit.Abs(),
		CrossoverYear: realistic.CrossoverYear,
	}

	// Margin test in multiplicative form so a zero-cost projection cannot
	// divide by zero.
	margin := realistic.TotalLoanCost.Mul(neutralMarginRatio)
	decisive := realistic.NetBenefit.Abs().GreaterThanOrEqual(margin) && !realistic.NetBenefit.IsZero()

	switch {
	case decisive && realistic.NetBenefit.IsPositive():
		rec.Decision = DecisionKeepInvesting
	case decisive && realistic.NetBenefit.IsNegative():
		rec.Decision = DecisionPayOffEarly
	default:
		rec.Decision = DecisionNeutral
	}

	rec.Confidence = gradeConfidence(rec.Decision, optimistic, pessimistic, realistic)

	if rec.CrossoverYear != nil {
		date := time.Date(*rec.CrossoverYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		rec.OptimalDate = &date
	}

	rec.Rationale = buildRationale(rec, realistic)
	return rec
}

func gradeConfidence(decision Decision, optimistic, pessimistic, realistic ScenarioProjection) Confidence {
	if decision == DecisionNeutral {
		return ConfidenceLow
	}

	disagreements := 0
	for _, scenario := range []ScenarioProjection{optimistic, pessimistic} {
		if scenario.NetBenefit.Sign() != realistic.NetBenefit.Sign() {
			disagreements++
		}
	}

	switch disagreements {
	case 0:
		return ConfidenceHigh
	case 1:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func buildRationale(rec Recommendation, realistic ScenarioProjection) string {
	var rationale string

	switch rec.Decision {
	case DecisionNeutral:
		rationale = "The financial difference between paying off early and investing is minimal " +
			"(less than 2% of your total loan cost). Either strategy works well. " +
			"Consider your risk tolerance and liquidity needs."
	case DecisionKeepInvesting:
		rationale = fmt.Sprintf("Investing is the better strategy. You could save approximately %s (%s%% of your total loan cost) "+
			"by investing rather than paying off early. Your investment returns are projected to outpace your loan interest costs.",
			format.WholeCurrency(rec.SavingsAmount),
			moneyutil.Percentage(rec.SavingsAmount, realistic.TotalLoanCost).Round(1))
	case DecisionPayOffEarly:
		rationale = fmt.Sprintf("Paying off your loan early is the better strategy. You could save approximately %s (%s%% of your total loan cost) "+
			"by paying off early rather than investing. Your loan interest costs exceed projected investment returns.",
			format.WholeCurrency(rec.SavingsAmount),
			moneyutil.Percentage(rec.SavingsAmount, realistic.TotalLoanCost).Round(1))
	}

	if rec.CrossoverYear != nil && rec.Decision == DecisionKeepInvesting {
		rationale += fmt.Sprintf(" Your investments are projected to overtake your cumulative loan costs in %d.", *rec.CrossoverYear)
	}

	switch rec.Confidence {
	case ConfidenceLow:
		rationale += " However, there is significant uncertainty in these projections due to variable market conditions and interest rates."
	case ConfidenceMedium:
		rationale += " There is moderate uncertainty in these projections."
	}

	return rationale
}
