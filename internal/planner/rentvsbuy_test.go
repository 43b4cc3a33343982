package planner

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validRentVsBuyInput() RentVsBuyInput {
	return RentVsBuyInput{
		PropertyPrice:        dec("300000"),
		DepositAmount:        dec("30000"),
		MortgageRate:         dec("4.5"),
		MortgageTermYears:    25,
		MonthlyRent:          dec("1200"),
		RentGrowthRate:       dec("3"),
		HomeAppreciationRate: dec("3"),
		MaintenanceRate:      dec("1"),
		PropertyTaxRate:      dec("0.5"),
		InsuranceAnnual:      dec("400"),
		BuyingCosts:          dec("5000"),
		SellingCosts:         dec("6000"),
		InvestmentReturnRate: dec("6"),
		AnalysisYears:        20,
	}
}

func TestRentVsBuyValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RentVsBuyInput)
		wantMsg string
	}{
		{"Valid input", func(in *RentVsBuyInput) {}, ""},
		{"Negative price", func(in *RentVsBuyInput) { in.PropertyPrice = dec("-1") }, "Property price"},
		{"Deposit exceeds price", func(in *RentVsBuyInput) { in.DepositAmount = dec("400000") }, "cannot exceed property price"},
		{"Mortgage rate out of range", func(in *RentVsBuyInput) { in.MortgageRate = dec("25") }, "Mortgage rate"},
		{"Zero term", func(in *RentVsBuyInput) { in.MortgageTermYears = 0 }, "Mortgage term years"},
		{"Analysis horizon too long", func(in *RentVsBuyInput) { in.AnalysisYears = 61 }, "Analysis years"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRentVsBuyInput()
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

func TestMonthlyMortgagePayment(t *testing.T) {
	tests := []struct {
		name       string
		principal  string
		rate       string
		termMonths int
		expected   string
		tolerance  string
	}{
		{"Standard repayment mortgage", "270000", "4.5", 300, "1500.75", "0.01"},
		{"Zero rate splits evenly", "120000", "0", 240, "500", "0"},
		{"Single year", "12000", "6", 12, "1032.79", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MonthlyMortgagePayment(dec(tt.principal), dec(tt.rate), tt.termMonths)
			diff := result.Sub(dec(tt.expected)).Abs()
			if diff.GreaterThan(dec(tt.tolerance)) {
				t.Errorf("MonthlyMortgagePayment(%s, %s, %d) = %s, expected %s ± %s",
					tt.principal, tt.rate, tt.termMonths, result, tt.expected, tt.tolerance)
			}
		})
	}
}

func TestCalculateRentVsBuy(t *testing.T) {
	in := validRentVsBuyInput()
	result := CalculateRentVsBuy(in)

	if len(result.Series) != in.AnalysisYears {
		t.Fatalf("series length = %d, expected %d", len(result.Series), in.AnalysisYears)
	}
	if result.Series[0].Year != 1 || result.Series[len(result.Series)-1].Year != in.AnalysisYears {
		t.Errorf("series years run %d..%d, expected 1..%d",
			result.Series[0].Year, result.Series[len(result.Series)-1].Year, in.AnalysisYears)
	}

	// First year rent is simply 12 months at the starting rate.
	if !result.Series[0].RentCost.Equal(dec("14400")) {
		t.Errorf("first year rent = %s, expected 14400", result.Series[0].RentCost)
	}

	// Totals equal the column sums.
	rentSum := decimal.Zero
	for _, year := range result.Series {
		rentSum = rentSum.Add(year.RentCost)
	}
	if result.TotalCostRent.Sub(rentSum).Abs().GreaterThan(dec("1")) {
		t.Errorf("total rent cost %s does not match series sum %s", result.TotalCostRent, rentSum)
	}

	if result.NetWorthBuy.IsZero() && result.NetWorthRent.IsZero() {
		t.Error("expected non-zero net worth figures")
	}
	if result.Summary == "" {
		t.Error("expected a summary")
	}
}

func TestCalculateRentVsBuyMortgagePaidOff(t *testing.T) {
	in := validRentVsBuyInput()
	in.MortgageTermYears = 5
	in.AnalysisYears = 10

	result := CalculateRentVsBuy(in)

	// After the term ends the owner's only costs are upkeep.
	lateYear := result.Series[7]
	upkeepOnly := in.InsuranceAnnual.Add(dec("10000")) // generous upper bound on % costs
	if lateYear.BuyCost.GreaterThan(upkeepOnly) {
		t.Errorf("buy cost after payoff = %s, expected upkeep only", lateYear.BuyCost)
	}
}

func TestCalculateRentVsBuyBreakEven(t *testing.T) {
	in := validRentVsBuyInput()
	in.HomeAppreciationRate = dec("8")
	in.InvestmentReturnRate = dec("1")

	result := CalculateRentVsBuy(in)

	if result.BreakEvenYear == nil {
		t.Fatal("expected buying to break even when appreciation dwarfs returns")
	}
	year := *result.BreakEvenYear
	if year < 1 || year > in.AnalysisYears {
		t.Errorf("break-even year %d outside analysis window", year)
	}
	if !strings.Contains(result.Summary, "Buying") {
		t.Errorf("summary %q should favour buying", result.Summary)
	}
}
