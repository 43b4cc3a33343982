package payoff

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"sterling/pkg/tax"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func defaultTable(t *testing.T) *tax.Table {
	t.Helper()
	tables, err := tax.LoadTables("")
	if err != nil {
		t.Fatalf("failed to load tax tables: %v", err)
	}
	table, err := tables.Get("")
	if err != nil {
		t.Fatalf("failed to get default table: %v", err)
	}
	return table
}

func validInput() Input {
	return Input{
		Age:                     30,
		CurrentYear:             2024,
		GraduationYear:          2015,
		LoanDurationYears:       30,
		InvestmentAmount:        dec("2400"),
		InvestmentGrowthHigh:    dec("8"),
		InvestmentGrowthLow:     dec("2"),
		InvestmentGrowthAverage: dec("5"),
		IncomePreTax:            dec("35000"),
		SalaryGrowthOptimistic:  dec("3"),
		SalaryGrowthPessimistic: dec("1"),
		InitialLoanBalance:      dec("40000"),
		LoanInterestCurrent:     dec("6"),
		LoanInterestHigh:        dec("7"),
		LoanInterestLow:         dec("5"),
	}
}

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Input)
		wantMsg string
	}{
		{"Valid input", func(in *Input) {}, ""},
		{"Age too low", func(in *Input) { in.Age = 17 }, "Age must be between 18 and 100"},
		{"Current year out of range", func(in *Input) { in.CurrentYear = 1979 }, "Current year must be between 1980 and 2100"},
		{"Graduation in the future", func(in *Input) { in.GraduationYear = 2026 }, "graduates only"},
		{"Loan duration too long", func(in *Input) { in.LoanDurationYears = 51 }, "Loan duration must be between 1 and 50 years"},
		{"Growth ordering inverted", func(in *Input) { in.InvestmentGrowthLow = dec("9") }, "cannot exceed high"},
		{"Average outside range", func(in *Input) { in.InvestmentGrowthAverage = dec("1") }, "must be between low"},
		{"Loan rate out of order", func(in *Input) { in.LoanInterestCurrent = dec("4") }, "Loan interest current"},
		{"Loan rate out of bounds", func(in *Input) { in.LoanInterestHigh = dec("25") }, "Loan interest high"},
		{"Negative investment amount", func(in *Input) { in.InvestmentAmount = dec("-1") }, "Investment amount cannot be negative"},
		{"Negative income", func(in *Input) { in.IncomePreTax = dec("-1") }, "Pre-tax income cannot be negative"},
		{"Negative balance", func(in *Input) { in.InitialLoanBalance = dec("-1") }, "Initial loan balance cannot be negative"},
		{"Salary growth inverted", func(in *Input) { in.SalaryGrowthPessimistic = dec("4") }, "Salary growth pessimistic"},
		{"Graduation and age misaligned", func(in *Input) { in.GraduationYear = 1980; in.Age = 20 }, "don't align"},
		{"Forgiveness past age 100", func(in *Input) { in.Age = 90; in.GraduationYear = 2010; in.CurrentYear = 2024 }, "exceeds maximum age of 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			errors := in.Validate()

			if tt.wantMsg == "" {
				if len(errors) != 0 {
					t.Fatalf("expected no errors, got %v", errors)
				}
				return
			}

			found := false
			for _, msg := range errors {
				if strings.Contains(msg, tt.wantMsg) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", errors, tt.wantMsg)
			}
		})
	}
}

func TestInputValidateCollectsAllErrors(t *testing.T) {
	in := validInput()
	in.Age = 17
	in.InvestmentAmount = dec("-1")
	in.LoanDurationYears = 0

	errors := in.Validate()
	if len(errors) < 3 {
		t.Fatalf("expected at least 3 errors, got %d: %v", len(errors), errors)
	}
}

func TestLoanEndYear(t *testing.T) {
	in := validInput()
	if got := in.LoanEndYear(); got != 2045 {
		t.Errorf("LoanEndYear() = %d, expected 2045", got)
	}
}

func TestScenarios(t *testing.T) {
	in := validInput()
	scenarios := Scenarios(in)
	if len(scenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(scenarios))
	}

	byType := make(map[ScenarioType]ScenarioParams, 3)
	for _, params := range scenarios {
		byType[params.Type] = params
	}

	optimistic := byType[ScenarioOptimistic]
	if !optimistic.InvestmentRate.Equal(dec("8")) || !optimistic.LoanRate.Equal(dec("5")) {
		t.Errorf("optimistic pairs best growth with cheapest loan, got %s/%s", optimistic.InvestmentRate, optimistic.LoanRate)
	}

	pessimistic := byType[ScenarioPessimistic]
	if !pessimistic.InvestmentRate.Equal(dec("2")) || !pessimistic.LoanRate.Equal(dec("7")) {
		t.Errorf("pessimistic pairs worst growth with dearest loan, got %s/%s", pessimistic.InvestmentRate, pessimistic.LoanRate)
	}

	realistic := byType[ScenarioRealistic]
	if !realistic.SalaryGrowth.Equal(dec("2")) {
		t.Errorf("realistic salary growth = %s, expected average 2", realistic.SalaryGrowth)
	}
}

func TestProjectSeriesLength(t *testing.T) {
	in := validInput()
	table := defaultTable(t)

	projection := Project(Scenarios(in)[0], in, table)

	expected := in.LoanEndYear() - in.CurrentYear + 1
	if len(projection.Years) != expected {
		t.Fatalf("series length = %d, expected %d", len(projection.Years), expected)
	}
	if projection.Years[0].Year != in.CurrentYear {
		t.Errorf("first year = %d, expected %d", projection.Years[0].Year, in.CurrentYear)
	}
	if projection.Years[len(projection.Years)-1].Year != in.LoanEndYear() {
		t.Errorf("last year = %d, expected %d", projection.Years[len(projection.Years)-1].Year, in.LoanEndYear())
	}
}

func TestProjectExpiredHorizon(t *testing.T) {
	in := validInput()
	in.Age = 50
	in.GraduationYear = 1990
	in.LoanDurationYears = 10

	projection := Project(Scenarios(in)[2], in, defaultTable(t))

	if len(projection.Years) != 0 {
		t.Fatalf("expected empty series for an expired horizon, got %d years", len(projection.Years))
	}
	if !projection.TotalLoanCost.IsZero() || !projection.FinalInvestmentValue.IsZero() {
		t.Errorf("expected zero totals, got cost %s investment %s", projection.TotalLoanCost, projection.FinalInvestmentValue)
	}
	if projection.CrossoverYear != nil {
		t.Error("expected no crossover year for an empty series")
	}
}

func TestProjectLoanBalanceNeverNegative(t *testing.T) {
	in := validInput()
	in.InitialLoanBalance = dec("1000")
	in.IncomePreTax = dec("80000") // large repayments clear the loan fast

	projection := Project(Scenarios(in)[2], in, defaultTable(t))

	for _, year := range projection.Years {
		if year.LoanBalance.IsNegative() {
			t.Fatalf("loan balance went negative in %d: %s", year.Year, year.LoanBalance)
		}
	}
	final := projection.Years[len(projection.Years)-1]
	if !final.LoanBalance.IsZero() {
		t.Errorf("expected loan cleared by end of horizon, balance = %s", final.LoanBalance)
	}
}

func TestProjectNoRepaymentBelowThreshold(t *testing.T) {
	in := validInput()
	in.IncomePreTax = dec("20000")
	in.SalaryGrowthOptimistic = dec("0")
	in.SalaryGrowthPessimistic = dec("0")

	projection := Project(Scenarios(in)[2], in, defaultTable(t))

	for _, year := range projection.Years {
		if !year.AnnualRepayment.IsZero() {
			t.Fatalf("expected no repayment below the threshold, got %s in %d", year.AnnualRepayment, year.Year)
		}
	}
}

func TestProjectCrossoverImmediateWhenCostIsZero(t *testing.T) {
	in := validInput()
	in.InitialLoanBalance = dec("0")
	in.IncomePreTax = dec("20000")
	in.SalaryGrowthOptimistic = dec("0")
	in.SalaryGrowthPessimistic = dec("0")

	projection := Project(Scenarios(in)[2], in, defaultTable(t))

	if projection.CrossoverYear == nil {
		t.Fatal("expected a crossover year when the loan costs nothing")
	}
	if *projection.CrossoverYear != in.CurrentYear {
		t.Errorf("crossover year = %d, expected %d", *projection.CrossoverYear, in.CurrentYear)
	}
}

func TestProjectYearlyBalances(t *testing.T) {
	in := validInput()
	in.Age = 30
	in.CurrentYear = 2024
	in.GraduationYear = 2016
	in.LoanDurationYears = 10 // horizon 2024-2026
	in.IncomePreTax = dec("35000")
	in.InitialLoanBalance = dec("45000")

	params := ScenarioParams{
		Type:           ScenarioRealistic,
		InvestmentRate: dec("5"),
		LoanRate:       dec("5.5"),
		SalaryGrowth:   dec("0"),
	}

	projection := Project(params, in, defaultTable(t))

	if len(projection.Years) != 3 {
		t.Fatalf("expected 3 years, got %d", len(projection.Years))
	}

	// Interest accrues on the opening balance before the year's repayment
	// is subtracted. At a flat £35,000 the repayment is 9% of the income
	// above the £27,295 threshold, £693.45 every year.
	expected := []struct {
		year      int
		interest  string
		repayment string
		balance   string
	}{
		{2024, "2475.00", "693.45", "46781.55"},
		{2025, "2572.99", "693.45", "48661.09"},
		{2026, "2676.36", "693.45", "50643.99"},
	}

	for i, want := range expected {
		got := projection.Years[i]
		if got.Year != want.year {
			t.Fatalf("year[%d] = %d, expected %d", i, got.Year, want.year)
		}
		if !got.InterestAccrued.Round(2).Equal(dec(want.interest)) {
			t.Errorf("%d interest = %s, expected %s", want.year, got.InterestAccrued.Round(2), want.interest)
		}
		if !got.AnnualRepayment.Round(2).Equal(dec(want.repayment)) {
			t.Errorf("%d repayment = %s, expected %s", want.year, got.AnnualRepayment.Round(2), want.repayment)
		}
		if !got.LoanBalance.Round(2).Equal(dec(want.balance)) {
			t.Errorf("%d balance = %s, expected %s", want.year, got.LoanBalance.Round(2), want.balance)
		}
	}

	if !projection.TotalLoanCost.Equal(dec("9804.69")) {
		t.Errorf("total loan cost = %s, expected 9804.69", projection.TotalLoanCost)
	}
	// Contributions of £2,400 compound at 5%: 2400, 4920, 7566.
	if !projection.FinalInvestmentValue.Equal(dec("7566")) {
		t.Errorf("final investment value = %s, expected 7566", projection.FinalInvestmentValue)
	}
	if !projection.NetBenefit.Equal(dec("-2238.69")) {
		t.Errorf("net benefit = %s, expected -2238.69", projection.NetBenefit)
	}
}

func TestProjectContributionGrowth(t *testing.T) {
	in := validInput()
	in.InvestmentGrowthAverage = dec("0")
	in.InvestmentGrowthHigh = dec("0")
	in.InvestmentGrowthLow = dec("0")
	in.InvestmentAmount = dec("1000")
	in.InvestmentAmountGrowth = dec("10")
	in.GraduationYear = 2023
	in.LoanDurationYears = 2 // 2024 and 2025 only

	projection := Project(Scenarios(in)[2], in, defaultTable(t))

	if len(projection.Years) != 2 {
		t.Fatalf("expected 2 years, got %d", len(projection.Years))
	}
	// 1000 in year one, 1100 in year two, no growth.
	if !projection.Years[1].InvestmentValue.Equal(dec("2100")) {
		t.Errorf("investment after two years = %s, expected 2100", projection.Years[1].InvestmentValue)
	}
}

func makeScenario(scenarioType ScenarioType, netBenefit, totalCost string, crossover *int) ScenarioProjection {
	return ScenarioProjection{
		Type:          scenarioType,
		NetBenefit:    dec(netBenefit),
		TotalLoanCost: dec(totalCost),
		CrossoverYear: crossover,
	}
}

func TestRecommend(t *testing.T) {
	year := 2030

	tests := []struct {
		name           string
		optimistic     ScenarioProjection
		pessimistic    ScenarioProjection
		realistic      ScenarioProjection
		wantDecision   Decision
		wantConfidence Confidence
	}{
		{
			"All scenarios favour investing",
			makeScenario(ScenarioOptimistic, "5000", "20000", &year),
			makeScenario(ScenarioPessimistic, "1000", "20000", nil),
			makeScenario(ScenarioRealistic, "3000", "20000", &year),
			DecisionKeepInvesting, ConfidenceHigh,
		},
		{
			"All scenarios favour paying off",
			makeScenario(ScenarioOptimistic, "-1000", "20000", nil),
			makeScenario(ScenarioPessimistic, "-5000", "20000", nil),
			makeScenario(ScenarioRealistic, "-3000", "20000", nil),
			DecisionPayOffEarly, ConfidenceHigh,
		},
		{
			"One scenario disagrees",
			makeScenario(ScenarioOptimistic, "5000", "20000", &year),
			makeScenario(ScenarioPessimistic, "-1000", "20000", nil),
			makeScenario(ScenarioRealistic, "3000", "20000", &year),
			DecisionKeepInvesting, ConfidenceMedium,
		},
		{
			"Both scenarios disagree",
			makeScenario(ScenarioOptimistic, "-5000", "20000", nil),
			makeScenario(ScenarioPessimistic, "-1000", "20000", nil),
			makeScenario(ScenarioRealistic, "3000", "20000", &year),
			DecisionKeepInvesting, ConfidenceLow,
		},
		{
			"Inside the neutral margin",
			makeScenario(ScenarioOptimistic, "5000", "20000", &year),
			makeScenario(ScenarioPessimistic, "-100", "20000", nil),
			makeScenario(ScenarioRealistic, "300", "20000", &year),
			DecisionNeutral, ConfidenceLow,
		},
		{
			"Exactly at the margin is decisive",
			makeScenario(ScenarioOptimistic, "500", "20000", &year),
			makeScenario(ScenarioPessimistic, "400", "20000", nil),
			makeScenario(ScenarioRealistic, "400", "20000", &year),
			DecisionKeepInvesting, ConfidenceHigh,
		},
		{
			"Zero benefit and zero cost",
			makeScenario(ScenarioOptimistic, "0", "0", nil),
			makeScenario(ScenarioPessimistic, "0", "0", nil),
			makeScenario(ScenarioRealistic, "0", "0", nil),
			DecisionNeutral, ConfidenceLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recommend(tt.optimistic, tt.pessimistic, tt.realistic)
			if rec.Decision != tt.wantDecision {
				t.Errorf("decision = %s, expected %s", rec.Decision, tt.wantDecision)
			}
			if rec.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %s, expected %s", rec.Confidence, tt.wantConfidence)
			}
			if rec.Rationale == "" {
				t.Error("expected non-empty rationale")
			}
		})
	}
}

func TestRecommendMirroredBenefit(t *testing.T) {
	invest := Recommend(
		makeScenario(ScenarioOptimistic, "5000", "20000", nil),
		makeScenario(ScenarioPessimistic, "1000", "20000", nil),
		makeScenario(ScenarioRealistic, "3000", "20000", nil),
	)
	payOff := Recommend(
		makeScenario(ScenarioOptimistic, "-5000", "20000", nil),
		makeScenario(ScenarioPessimistic, "-1000", "20000", nil),
		makeScenario(ScenarioRealistic, "-3000", "20000", nil),
	)

	if invest.Decision != DecisionKeepInvesting {
		t.Errorf("positive benefit decision = %s, expected %s", invest.Decision, DecisionKeepInvesting)
	}
	if payOff.Decision != DecisionPayOffEarly {
		t.Errorf("negative benefit decision = %s, expected %s", payOff.Decision, DecisionPayOffEarly)
	}
	if !payOff.NetBenefit.Equal(invest.NetBenefit.Neg()) {
		t.Errorf("net benefits are not mirrored: %s vs %s", invest.NetBenefit, payOff.NetBenefit)
	}
	if !payOff.SavingsAmount.Equal(invest.SavingsAmount) {
		t.Errorf("savings amounts differ: %s vs %s", invest.SavingsAmount, payOff.SavingsAmount)
	}
	if invest.Confidence != payOff.Confidence {
		t.Errorf("confidence differs: %s vs %s", invest.Confidence, payOff.Confidence)
	}
}

func TestRecommendCrossoverDetails(t *testing.T) {
	year := 2031
	rec := Recommend(
		makeScenario(ScenarioOptimistic, "5000", "20000", &year),
		makeScenario(ScenarioPessimistic, "1000", "20000", nil),
		makeScenario(ScenarioRealistic, "3000", "20000", &year),
	)

	if rec.OptimalDate == nil {
		t.Fatal("expected an optimal date when a crossover year exists")
	}
	if rec.OptimalDate.Year() != year {
		t.Errorf("optimal date year = %d, expected %d", rec.OptimalDate.Year(), year)
	}
	if !strings.Contains(rec.Rationale, "2031") {
		t.Errorf("rationale %q does not mention the crossover year", rec.Rationale)
	}
	if !rec.SavingsAmount.Equal(dec("3000")) {
		t.Errorf("savings amount = %s, expected 3000", rec.SavingsAmount)
	}
}

func TestCalculate(t *testing.T) {
	result, validationErrs, err := Calculate(nil, validInput(), defaultTable(t))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if len(validationErrs) != 0 {
		t.Fatalf("unexpected validation errors: %v", validationErrs)
	}

	if result.CalculatedAt.IsZero() {
		t.Error("expected CalculatedAt to be set")
	}
	if result.Optimistic.Type != ScenarioOptimistic ||
		result.Pessimistic.Type != ScenarioPessimistic ||
		result.Realistic.Type != ScenarioRealistic {
		t.Error("scenario projections mapped to the wrong slots")
	}

	switch result.Recommendation.Decision {
	case DecisionKeepInvesting, DecisionPayOffEarly, DecisionNeutral:
	default:
		t.Errorf("unexpected decision %q", result.Recommendation.Decision)
	}
}

func TestCalculateValidationFailure(t *testing.T) {
	in := validInput()
	in.Age = 10

	result, validationErrs, err := Calculate(nil, in, defaultTable(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Error("expected nil result on validation failure")
	}
	if len(validationErrs) == 0 {
		t.Fatal("expected validation errors")
	}
}

func TestCalculateNilTable(t *testing.T) {
	_, _, err := Calculate(nil, validInput(), nil)
	if err == nil {
		t.Fatal("expected error for missing tax table")
	}
}
