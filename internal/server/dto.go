package server

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"sterling/internal/incometax"
	"sterling/internal/payoff"
	"sterling/internal/planner"
	"sterling/pkg/constants"
)

// money renders a decimal as a plain JSON number rounded to pennies.
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(constants.CurrencyScale).Float64()
	return f
}

// rate renders a rate without currency rounding.
func rate(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// Request payloads. Required fields are pointers so missing keys are
// reported explicitly instead of silently defaulting; unknown keys are
// rejected by the strict decoder.

type payoffRequest struct {
	Age                     *int             `json:"age"`
	CurrentYear             *int             `json:"current_year"`
	GraduationYear          *int             `json:"graduation_year"`
	LoanDurationYears       *int             `json:"loan_duration_years"`
	InvestmentAmount        *decimal.Decimal `json:"investment_amount"`
	InvestmentGrowthHigh    *decimal.Decimal `json:"investment_growth_high"`
	InvestmentGrowthLow     *decimal.Decimal `json:"investment_growth_low"`
	InvestmentGrowthAverage *decimal.Decimal `json:"investment_growth_average"`
	PreTaxIncome            *decimal.Decimal `json:"pre_tax_income"`
	SalaryGrowthOptimistic  *decimal.Decimal `json:"salary_growth_optimistic"`
	SalaryGrowthPessimistic *decimal.Decimal `json:"salary_growth_pessimistic"`
	InitialLoanBalance      *decimal.Decimal `json:"initial_loan_balance"`
	LoanInterestCurrent     *decimal.Decimal `json:"loan_interest_current"`
	LoanInterestHigh        *decimal.Decimal `json:"loan_interest_high"`
	LoanInterestLow         *decimal.Decimal `json:"loan_interest_low"`
}

func (r payoffRequest) toInput() (payoff.Input, []string) {
	missing := collectMissing([]requiredField{
		{"age", r.Age == nil},
		{"current_year", r.CurrentYear == nil},
		{"graduation_year", r.GraduationYear == nil},
		{"loan_duration_years", r.LoanDurationYears == nil},
		{"investment_amount", r.InvestmentAmount == nil},
		{"investment_growth_high", r.InvestmentGrowthHigh == nil},
		{"investment_growth_low", r.InvestmentGrowthLow == nil},
		{"investment_growth_average", r.InvestmentGrowthAverage == nil},
		{"pre_tax_income", r.PreTaxIncome == nil},
		{"salary_growth_optimistic", r.SalaryGrowthOptimistic == nil},
		{"salary_growth_pessimistic", r.SalaryGrowthPessimistic == nil},
		{"initial_loan_balance", r.InitialLoanBalance == nil},
		{"loan_interest_current", r.LoanInterestCurrent == nil},
		{"loan_interest_high", r.LoanInterestHigh == nil},
		{"loan_interest_low", r.LoanInterestLow == nil},
	})
	if len(missing) > 0 {
		return payoff.Input{}, missing
	}

	return payoff.Input{
		Age:                     *r.Age,
		CurrentYear:             *r.CurrentYear,
		GraduationYear:          *r.GraduationYear,
		LoanDurationYears:       *r.LoanDurationYears,
		InvestmentAmount:        *r.InvestmentAmount,
		InvestmentGrowthHigh:    *r.InvestmentGrowthHigh,
		InvestmentGrowthLow:     *r.InvestmentGrowthLow,
		InvestmentGrowthAverage: *r.InvestmentGrowthAverage,
		// The contribution growth rate is pinned to zero at the API
		// boundary; the engine supports nonzero values.
		InvestmentAmountGrowth:  decimal.Zero,
		IncomePreTax:            *r.PreTaxIncome,
		SalaryGrowthOptimistic:  *r.SalaryGrowthOptimistic,
		SalaryGrowthPessimistic: *r.SalaryGrowthPessimistic,
		InitialLoanBalance:      *r.InitialLoanBalance,
		LoanInterestCurrent:     *r.LoanInterestCurrent,
		LoanInterestHigh:        *r.LoanInterestHigh,
		LoanInterestLow:         *r.LoanInterestLow,
	}, nil
}

type incomeTaxRequest struct {
	GrossIncome              *decimal.Decimal `json:"gross_income"`
	BonusAnnual              decimal.Decimal  `json:"bonus_annual"`
	PayFrequency             *string          `json:"pay_frequency"`
	TaxJurisdiction          *string          `json:"tax_jurisdiction"`
	NICategory               *string          `json:"ni_category"`
	StudentLoanPlan          *string          `json:"student_loan_plan"`
	PensionContributionType  string           `json:"pension_contribution_type"`
	PensionContributionValue decimal.Decimal  `json:"pension_contribution_value"`
	OtherPretaxDeductions    decimal.Decimal  `json:"other_pretax_deductions"`
	TaxYear                  string           `json:"tax_year"`
}

func (r incomeTaxRequest) toInput() (incometax.Input, []string) {
	missing := collectMissing([]requiredField{
		{"gross_income", r.GrossIncome == nil},
		{"pay_frequency", r.PayFrequency == nil},
		{"tax_jurisdiction", r.TaxJurisdiction == nil},
		{"ni_category", r.NICategory == nil},
		{"student_loan_plan", r.StudentLoanPlan == nil},
	})
	if len(missing) > 0 {
		return incometax.Input{}, missing
	}

	pensionType := r.PensionContributionType
	if pensionType == "" {
		pensionType = incometax.PensionNone
	}

	return incometax.Input{
		GrossIncome:              *r.GrossIncome,
		BonusAnnual:              r.BonusAnnual,
		PayFrequency:             *r.PayFrequency,
		TaxJurisdiction:          *r.TaxJurisdiction,
		NICategory:               *r.NICategory,
		StudentLoanPlan:          *r.StudentLoanPlan,
		PensionContributionType:  pensionType,
		PensionContributionValue: r.PensionContributionValue,
		OtherPretaxDeductions:    r.OtherPretaxDeductions,
		TaxYear:                  r.TaxYear,
	}, nil
}

type rentVsBuyRequest struct {
	PropertyPrice        *decimal.Decimal `json:"property_price"`
	DepositAmount        *decimal.Decimal `json:"deposit_amount"`
	MortgageRate         *decimal.Decimal `json:"mortgage_rate"`
	MortgageTermYears    *int             `json:"mortgage_term_years"`
	MonthlyRent          *decimal.Decimal `json:"monthly_rent"`
	RentGrowthRate       *decimal.Decimal `json:"rent_growth_rate"`
	HomeAppreciationRate *decimal.Decimal `json:"home_appreciation_rate"`
	MaintenanceRate      *decimal.Decimal `json:"maintenance_rate"`
	PropertyTaxRate      decimal.Decimal  `json:"property_tax_rate"`
	InsuranceAnnual      decimal.Decimal  `json:"insurance_annual"`
	BuyingCosts          decimal.Decimal  `json:"buying_costs"`
	SellingCosts         decimal.Decimal  `json:"selling_costs"`
	InvestmentReturnRate *decimal.Decimal `json:"investment_return_rate"`
	AnalysisYears        *int             `json:"analysis_years"`
}

func (r rentVsBuyRequest) toInput() (planner.RentVsBuyInput, []string) {
	missing := collectMissing([]requiredField{
		{"property_price", r.PropertyPrice == nil},
		{"deposit_amount", r.DepositAmount == nil},
		{"mortgage_rate", r.MortgageRate == nil},
		{"mortgage_term_years", r.MortgageTermYears == nil},
		{"monthly_rent", r.MonthlyRent == nil},
		{"rent_growth_rate", r.RentGrowthRate == nil},
		{"home_appreciation_rate", r.HomeAppreciationRate == nil},
		{"maintenance_rate", r.MaintenanceRate == nil},
		{"investment_return_rate", r.InvestmentReturnRate == nil},
		{"analysis_years", r.AnalysisYears == nil},
	})
	if len(missing) > 0 {
		return planner.RentVsBuyInput{}, missing
	}

	return planner.RentVsBuyInput{
		PropertyPrice:        *r.PropertyPrice,
		DepositAmount:        *r.DepositAmount,
		MortgageRate:         *r.MortgageRate,
		MortgageTermYears:    *r.MortgageTermYears,
		MonthlyRent:          *r.MonthlyRent,
		RentGrowthRate:       *r.RentGrowthRate,
		HomeAppreciationRate: *r.HomeAppreciationRate,
		MaintenanceRate:      *r.MaintenanceRate,
		PropertyTaxRate:      r.PropertyTaxRate,
		InsuranceAnnual:      r.InsuranceAnnual,
		BuyingCosts:          r.BuyingCosts,
		SellingCosts:         r.SellingCosts,
		InvestmentReturnRate: *r.InvestmentReturnRate,
		AnalysisYears:        *r.AnalysisYears,
	}, nil
}

type emergencyFundRequest struct {
	MonthlyExpenses *decimal.Decimal `json:"monthly_expenses"`
	TargetMonths    *int             `json:"target_months"`
	CurrentSavings  decimal.Decimal  `json:"current_savings"`
}

func (r emergencyFundRequest) toInput() (planner.EmergencyFundInput, []string) {
	missing := collectMissing([]requiredField{
		{"monthly_expenses", r.MonthlyExpenses == nil},
		{"target_months", r.TargetMonths == nil},
	})
	if len(missing) > 0 {
		return planner.EmergencyFundInput{}, missing
	}

	return planner.EmergencyFundInput{
		MonthlyExpenses: *r.MonthlyExpenses,
		TargetMonths:    *r.TargetMonths,
		CurrentSavings:  r.CurrentSavings,
	}, nil
}

type resilienceScoreRequest struct {
	Savings           *decimal.Decimal `json:"savings"`
	IncomeStability   *int             `json:"income_stability"`
	DebtLoad          *decimal.Decimal `json:"debt_load"`
	InsuranceCoverage *int             `json:"insurance_coverage"`
}

func (r resilienceScoreRequest) toInput() (planner.ResilienceScoreInput, []string) {
	missing := collectMissing([]requiredField{
		{"savings", r.Savings == nil},
		{"income_stability", r.IncomeStability == nil},
		{"debt_load", r.DebtLoad == nil},
		{"insurance_coverage", r.InsuranceCoverage == nil},
	})
	if len(missing) > 0 {
		return planner.ResilienceScoreInput{}, missing
	}

	return planner.ResilienceScoreInput{
		Savings:           *r.Savings,
		IncomeStability:   *r.IncomeStability,
		DebtLoad:          *r.DebtLoad,
		InsuranceCoverage: *r.InsuranceCoverage,
	}, nil
}

type timeToFreedomRequest struct {
	AnnualExpenses       *decimal.Decimal `json:"annual_expenses"`
	CurrentInvestments   *decimal.Decimal `json:"current_investments"`
	AnnualContribution   *decimal.Decimal `json:"annual_contribution"`
	InvestmentReturnRate *decimal.Decimal `json:"investment_return_rate"`
	SafeWithdrawalRate   *decimal.Decimal `json:"safe_withdrawal_rate"`
}

func (r timeToFreedomRequest) toInput() (planner.TimeToFreedomInput, []string) {
	missing := collectMissing([]requiredField{
		{"annual_expenses", r.AnnualExpenses == nil},
		{"current_investments", r.CurrentInvestments == nil},
		{"annual_contribution", r.AnnualContribution == nil},
		{"investment_return_rate", r.InvestmentReturnRate == nil},
		{"safe_withdrawal_rate", r.SafeWithdrawalRate == nil},
	})
	if len(missing) > 0 {
		return planner.TimeToFreedomInput{}, missing
	}

	return planner.TimeToFreedomInput{
		AnnualExpenses:       *r.AnnualExpenses,
		CurrentInvestments:   *r.CurrentInvestments,
		AnnualContribution:   *r.AnnualContribution,
		InvestmentReturnRate: *r.InvestmentReturnRate,
		SafeWithdrawalRate:   *r.SafeWithdrawalRate,
	}, nil
}

type requiredField struct {
	name   string
	absent bool
}

func collectMissing(checks []requiredField) []string {
	var missing []string
	for _, check := range checks {
		if check.absent {
			missing = append(missing, fmt.Sprintf("Missing required field: %s", check.name))
		}
	}
	return missing
}

// Response payloads.

type yearDTO struct {
	Year             int     `json:"year"`
	LoanBalance      float64 `json:"loan_balance"`
	InvestmentValue  float64 `json:"investment_value"`
	AnnualRepayment  float64 `json:"annual_repayment"`
	InterestAccrued  float64 `json:"interest_accrued"`
	InvestmentGrowth float64 `json:"investment_growth"`
}

type scenarioDTO struct {
	ScenarioLabel        string    `json:"scenario_label"`
	InvestmentGrowthRate float64   `json:"investment_growth_rate"`
	LoanInterestRate     float64   `json:"loan_interest_rate"`
	FinalLoanBalance     float64   `json:"final_loan_balance"`
	FinalInvestmentValue float64   `json:"final_investment_value"`
	TotalLoanCost        float64   `json:"total_loan_cost"`
	NetBenefit           float64   `json:"net_benefit"`
	CrossoverYear        *int      `json:"crossover_year"`
	Years                []yearDTO `json:"years"`
}

type recommendationDTO struct {
	Decision         string  `json:"decision"`
	NetBenefitAmount float64 `json:"net_benefit_amount"`
	Confidence       string  `json:"confidence"`
	CrossoverYear    *int    `json:"crossover_year"`
	OptimalDate      *string `json:"optimal_date"`
	Rationale        string  `json:"rationale"`
}

type payoffResponse struct {
	Optimistic     scenarioDTO       `json:"optimistic"`
	Pessimistic    scenarioDTO       `json:"pessimistic"`
	Realistic      scenarioDTO       `json:"realistic"`
	Recommendation recommendationDTO `json:"recommendation"`
	CalculatedAt   string            `json:"calculated_at"`
}

func buildPayoffResponse(result *payoff.Result) payoffResponse {
	return payoffResponse{
		Optimistic:     buildScenarioDTO(result.Optimistic),
		Pessimistic:    buildScenarioDTO(result.Pessimistic),
		Realistic:      buildScenarioDTO(result.Realistic),
		Recommendation: buildRecommendationDTO(result.Recommendation),
		CalculatedAt:   result.CalculatedAt.Format(time.RFC3339),
	}
}

func buildScenarioDTO(projection payoff.ScenarioProjection) scenarioDTO {
	dto := scenarioDTO{
		ScenarioLabel:        string(projection.Type),
		InvestmentGrowthRate: rate(projection.InvestmentGrowthRate),
		LoanInterestRate:     rate(projection.LoanInterestRate),
		FinalInvestmentValue: money(projection.FinalInvestmentValue),
		TotalLoanCost:        money(projection.TotalLoanCost),
		NetBenefit:           money(projection.NetBenefit),
		CrossoverYear:        projection.CrossoverYear,
		Years:                make([]yearDTO, 0, len(projection.Years)),
	}
	for _, year := range projection.Years {
		dto.Years = append(dto.Years, yearDTO{
			Year:             year.Year,
			LoanBalance:      money(year.LoanBalance),
			InvestmentValue:  money(year.InvestmentValue),
			AnnualRepayment:  money(year.AnnualRepayment),
			InterestAccrued:  money(year.InterestAccrued),
			InvestmentGrowth: money(year.InvestmentGrowth),
		})
	}
	if len(projection.Years) > 0 {
		dto.FinalLoanBalance = money(projection.Years[len(projection.Years)-1].LoanBalance)
	}
	return dto
}

func buildRecommendationDTO(rec payoff.Recommendation) recommendationDTO {
	dto := recommendationDTO{
		Decision:         string(rec.Decision),
		NetBenefitAmount: money(rec.NetBenefit),
		Confidence:       string(rec.Confidence),
		CrossoverYear:    rec.CrossoverYear,
		Rationale:        rec.Rationale,
	}
	if rec.OptimalDate != nil {
		formatted := rec.OptimalDate.Format("2006-01-02")
		dto.OptimalDate = &formatted
	}
	return dto
}

type bandDTO struct {
	BandName      string   `json:"band_name"`
	Rate          float64  `json:"rate"`
	FromAmount    float64  `json:"from_amount"`
	ToAmount      *float64 `json:"to_amount"`
	TaxableAmount float64  `json:"taxable_amount"`
	Amount        float64  `json:"amount"`
}

type incomeTaxResponse struct {
	TaxYear                string    `json:"tax_year"`
	GrossAnnual            float64   `json:"gross_annual"`
	TaxableIncome          float64   `json:"taxable_income"`
	PersonalAllowance      float64   `json:"personal_allowance"`
	IncomeTaxTotal         float64   `json:"income_tax_total"`
	IncomeTaxBands         []bandDTO `json:"income_tax_bands"`
	NITotal                float64   `json:"ni_total"`
	NIBands                []bandDTO `json:"ni_bands"`
	StudentLoanTotal       float64   `json:"student_loan_total"`
	PensionContribution    float64   `json:"pension_contribution"`
	TotalDeductions        float64   `json:"total_deductions"`
	EffectiveDeductionRate float64   `json:"effective_deduction_rate"`
	NetAnnual              float64   `json:"net_annual"`
	NetMonthly             float64   `json:"net_monthly"`
	NetWeekly              float64   `json:"net_weekly"`
}

func buildIncomeTaxResponse(result *incometax.Result) incomeTaxResponse {
	return incomeTaxResponse{
		TaxYear:                result.TaxYear,
		GrossAnnual:            money(result.GrossAnnual),
		TaxableIncome:          money(result.TaxableIncome),
		PersonalAllowance:      money(result.PersonalAllowance),
		IncomeTaxTotal:         money(result.IncomeTaxTotal),
		IncomeTaxBands:         buildBandDTOs(result.IncomeTaxBands),
		NITotal:                money(result.NITotal),
		NIBands:                buildBandDTOs(result.NIBands),
		StudentLoanTotal:       money(result.StudentLoanTotal),
		PensionContribution:    money(result.PensionContribution),
		TotalDeductions:        money(result.TotalDeductions),
		EffectiveDeductionRate: rate(result.EffectiveDeductionRate),
		NetAnnual:              money(result.NetAnnual),
		NetMonthly:             money(result.NetMonthly),
		NetWeekly:              money(result.NetWeekly),
	}
}

func buildBandDTOs(bands []incometax.BandBreakdown) []bandDTO {
	dtos := make([]bandDTO, 0, len(bands))
	for _, band := range bands {
		dto := bandDTO{
			BandName:      band.BandName,
			Rate:          rate(band.Rate),
			FromAmount:    money(band.FromAmount),
			TaxableAmount: money(band.TaxableAmount),
			Amount:        money(band.Amount),
		}
		if band.ToAmount != nil {
			to := money(*band.ToAmount)
			dto.ToAmount = &to
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

type rentVsBuyYearDTO struct {
	Year         int     `json:"year"`
	RentCost     float64 `json:"rent_cost"`
	BuyCost      float64 `json:"buy_cost"`
	RentNetWorth float64 `json:"rent_net_worth"`
	BuyNetWorth  float64 `json:"buy_net_worth"`
}

type rentVsBuyResponse struct {
	TotalCostRent float64            `json:"total_cost_rent"`
	TotalCostBuy  float64            `json:"total_cost_buy"`
	NetWorthRent  float64            `json:"net_worth_rent"`
	NetWorthBuy   float64            `json:"net_worth_buy"`
	BreakEvenYear *int               `json:"break_even_year"`
	Summary       string             `json:"summary"`
	GraphSeries   []rentVsBuyYearDTO `json:"graph_series"`
}

func buildRentVsBuyResponse(result *planner.RentVsBuyResult) rentVsBuyResponse {
	response := rentVsBuyResponse{
		TotalCostRent: money(result.TotalCostRent),
		TotalCostBuy:  money(result.TotalCostBuy),
		NetWorthRent:  money(result.NetWorthRent),
		NetWorthBuy:   money(result.NetWorthBuy),
		BreakEvenYear: result.BreakEvenYear,
		Summary:       result.Summary,
		GraphSeries:   make([]rentVsBuyYearDTO, 0, len(result.Series)),
	}
	for _, year := range result.Series {
		response.GraphSeries = append(response.GraphSeries, rentVsBuyYearDTO{
			Year:         year.Year,
			RentCost:     money(year.RentCost),
			BuyCost:      money(year.BuyCost),
			RentNetWorth: money(year.RentNetWorth),
			BuyNetWorth:  money(year.BuyNetWorth),
		})
	}
	return response
}

type emergencyFundResponse struct {
	TargetFund     float64  `json:"target_fund"`
	SavingsGap     float64  `json:"savings_gap"`
	CoverageMonths *float64 `json:"coverage_months"`
	Summary        string   `json:"summary"`
}

func buildEmergencyFundResponse(result *planner.EmergencyFundResult) emergencyFundResponse {
	response := emergencyFundResponse{
		TargetFund: money(result.TargetFund),
		SavingsGap: money(result.SavingsGap),
		Summary:    result.Summary,
	}
	if result.CoverageMonths != nil {
		coverage := rate(*result.CoverageMonths)
		response.CoverageMonths = &coverage
	}
	return response
}

type resilienceScoreResponse struct {
	ResilienceIndex int      `json:"resilience_index"`
	WeakPoints      []string `json:"weak_points"`
	Summary         string   `json:"summary"`
}

type timeToFreedomYearDTO struct {
	Year            int     `json:"year"`
	PortfolioValue  float64 `json:"portfolio_value"`
	ProgressPercent float64 `json:"progress_percent"`
}

type timeToFreedomResponse struct {
	FreedomNumber  float64                `json:"freedom_number"`
	YearsToFreedom *int                   `json:"years_to_freedom"`
	TimelineSeries []timeToFreedomYearDTO `json:"timeline_series"`
	Summary        string                 `json:"summary"`
}

func buildTimeToFreedomResponse(result *planner.TimeToFreedomResult) timeToFreedomResponse {
	response := timeToFreedomResponse{
		FreedomNumber:  money(result.FreedomNumber),
		YearsToFreedom: result.YearsToFreedom,
		TimelineSeries: make([]timeToFreedomYearDTO, 0, len(result.Timeline)),
		Summary:        result.Summary,
	}
	for _, year := range result.Timeline {
		response.TimelineSeries = append(response.TimelineSeries, timeToFreedomYearDTO{
			Year:            year.Year,
			PortfolioValue:  money(year.PortfolioValue),
			ProgressPercent: rate(year.ProgressPercent),
		})
	}
	return response
}
