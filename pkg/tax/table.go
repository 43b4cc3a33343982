package tax

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"sterling/pkg/moneyutil"
)

//go:embed data/uk_tax.yaml
var defaultTableData []byte

// Jurisdiction and plan keys accepted on the wire.
const (
	JurisdictionEnglandWalesNI = "england_wales_ni"
	JurisdictionScotland       = "scotland"

	PlanNone         = "none"
	Plan1            = "plan_1"
	Plan2            = "plan_2"
	Plan4            = "plan_4"
	Plan5            = "plan_5"
	PlanPostgraduate = "postgraduate"
)

// NICategoryRate holds the employee NI rates for one category letter: the
// main rate between the primary threshold and the upper earnings limit, and
// the upper rate above it.
type NICategoryRate struct {
	Main  decimal.Decimal
	Upper decimal.Decimal
}

// NITable holds the National Insurance thresholds and per-category rates.
type NITable struct {
	LowerEarningsLimit decimal.Decimal
	PrimaryThreshold   decimal.Decimal
	UpperEarningsLimit decimal.Decimal
	Categories         map[string]NICategoryRate
}

// Plan is one income-contingent student loan scheme: a flat rate on income
// above the threshold.
type Plan struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

// Table is the full rule set for one tax year. Loaded once at startup and
// never mutated, so concurrent readers need no locking.
type Table struct {
	Year              string
	PersonalAllowance decimal.Decimal
	TaperStart        decimal.Decimal
	TaperEnd          decimal.Decimal
	IncomeTax         map[string][]Band
	NI                NITable
	Plans             map[string]Plan
}

// Tables maps tax year keys (e.g. "2023-24") to their rule sets.
type Tables struct {
	DefaultYear string
	byYear      map[string]*Table
}

// Get returns the table for a tax year, falling back to the default year for
// an empty key.
func (t *Tables) Get(year string) (*Table, error) {
	if year == "" {
		year = t.DefaultYear
	}
	table, ok := t.byYear[year]
	if !ok {
		return nil, fmt.Errorf("unknown tax year %q", year)
	}
	return table, nil
}

// Years lists the configured tax years in sorted order.
func (t *Tables) Years() []string {
	years := make([]string, 0, len(t.byYear))
	for year := range t.byYear {
		years = append(years, year)
	}
	sort.Strings(years)
	return years
}

// Allowance returns the personal allowance after tapering for the given
// adjusted net income.
func (t *Table) Allowance(adjustedNetIncome decimal.Decimal) decimal.Decimal {
	return TaperedAllowance(adjustedNetIncome, t.PersonalAllowance, t.TaperStart, t.TaperEnd)
}

// IncomeTaxBands assembles the complete band list for a jurisdiction: a
// zero-rate band up to the (possibly tapered) allowance, then the
// jurisdiction's marginal bands with the first lower bound following the
// allowance boundary.
func (t *Table) IncomeTaxBands(jurisdiction string, allowance decimal.Decimal) ([]Band, error) {
	configured, ok := t.IncomeTax[jurisdiction]
	if !ok {
		return nil, fmt.Errorf("unknown tax jurisdiction %q", jurisdiction)
	}

	bands := make([]Band, 0, len(configured)+1)
	bands = append(bands, Band{
		Name:  "Personal Allowance",
		Lower: decimal.Zero,
		Upper: &allowance,
		Rate:  decimal.Zero,
	})
	for i, band := range configured {
		adjusted := band
		if i == 0 {
			adjusted.Lower = allowance
		}
		bands = append(bands, adjusted)
	}
	return bands, nil
}

// NIBands assembles the ordered NI band list for a category letter.
func (t *Table) NIBands(category string) ([]Band, error) {
	rate, ok := t.NI.Categories[category]
	if !ok {
		return nil, fmt.Errorf("unknown NI category %q", category)
	}

	pt := t.NI.PrimaryThreshold
	uel := t.NI.UpperEarningsLimit
	return []Band{
		{Name: "Below Primary Threshold", Lower: decimal.Zero, Upper: &pt, Rate: decimal.Zero},
		{Name: "Main Rate", Lower: pt, Upper: &uel, Rate: rate.Main},
		{Name: "Upper Rate", Lower: uel, Upper: nil, Rate: rate.Upper},
	}, nil
}

// Plan2Repayment computes the annual Plan 2 repayment used by the payoff
// projection engine. Every table is guaranteed a plan_2 entry at load time.
func (t *Table) Plan2Repayment(income decimal.Decimal) decimal.Decimal {
	plan := t.Plans[Plan2]
	return moneyutil.NonNegative(income.Sub(plan.Threshold)).Mul(plan.Rate)
}

// PlanRepayment computes the annual student loan deduction for a plan:
// the plan rate applied to income above the repayment threshold.
func (t *Table) PlanRepayment(income decimal.Decimal, plan string) (decimal.Decimal, error) {
	if plan == PlanNone {
		return decimal.Zero, nil
	}
	rules, ok := t.Plans[plan]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown student loan plan %q", plan)
	}
	return moneyutil.NonNegative(income.Sub(rules.Threshold)).Mul(rules.Rate), nil
}

// Raw YAML shapes. Amounts and rates are strings so decimal parsing is exact.
type tableSpec struct {
	DefaultYear string              `yaml:"defaultYear"`
	Years       map[string]yearSpec `yaml:"years"`
}

type yearSpec struct {
	PersonalAllowance string                `yaml:"personalAllowance"`
	TaperStart        string                `yaml:"taperStart"`
	TaperEnd          string                `yaml:"taperEnd"`
	IncomeTax         map[string][]bandSpec `yaml:"incomeTax"`
	NI                niSpec                `yaml:"nationalInsurance"`
	Plans             map[string]planSpec   `yaml:"studentLoanPlans"`
}

type bandSpec struct {
	Name  string `yaml:"name"`
	Lower string `yaml:"lower"`
	Upper string `yaml:"upper"` // empty = open-ended
	Rate  string `yaml:"rate"`
}

type niSpec struct {
	LowerEarningsLimit string                    `yaml:"lowerEarningsLimit"`
	PrimaryThreshold   string                    `yaml:"primaryThreshold"`
	UpperEarningsLimit string                    `yaml:"upperEarningsLimit"`
	Categories         map[string]niCategorySpec `yaml:"categories"`
}

type niCategorySpec struct {
	Main  string `yaml:"main"`
	Upper string `yaml:"upper"`
}

type planSpec struct {
	Threshold string `yaml:"threshold"`
	Rate      string `yaml:"rate"`
}

// LoadTables reads tax tables from path, or the embedded defaults when path
// is empty.
func LoadTables(path string) (*Tables, error) {
	data := defaultTableData
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read tax tables: %w", err)
		}
		data = fileData
	}
	return ParseTables(data)
}

// ParseTables parses YAML tax tables and validates band contiguity.
func ParseTables(data []byte) (*Tables, error) {
	var spec tableSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse tax tables: %w", err)
	}
	if len(spec.Years) == 0 {
		return nil, fmt.Errorf("tax tables define no years")
	}
	if _, ok := spec.Years[spec.DefaultYear]; !ok {
		return nil, fmt.Errorf("default tax year %q is not defined", spec.DefaultYear)
	}

	tables := &Tables{DefaultYear: spec.DefaultYear, byYear: make(map[string]*Table, len(spec.Years))}
	for year, yearRaw := range spec.Years {
		table, err := buildTable(year, yearRaw)
		if err != nil {
			return nil, fmt.Errorf("tax year %s: %w", year, err)
		}
		tables.byYear[year] = table
	}
	return tables, nil
}

func buildTable(year string, spec yearSpec) (*Table, error) {
	table := &Table{
		Year:      year,
		IncomeTax: make(map[string][]Band, len(spec.IncomeTax)),
		Plans:     make(map[string]Plan, len(spec.Plans)),
	}

	var err error
	if table.PersonalAllowance, err = parseAmount(spec.PersonalAllowance, "personalAllowance"); err != nil {
		return nil, err
	}
	if table.TaperStart, err = parseAmount(spec.TaperStart, "taperStart"); err != nil {
		return nil, err
	}
	if table.TaperEnd, err = parseAmount(spec.TaperEnd, "taperEnd"); err != nil {
		return nil, err
	}
	if table.TaperEnd.LessThanOrEqual(table.TaperStart) {
		return nil, fmt.Errorf("taperEnd must exceed taperStart")
	}

	for jurisdiction, bandSpecs := range spec.IncomeTax {
		bands, err := buildBands(bandSpecs)
		if err != nil {
			return nil, fmt.Errorf("jurisdiction %s: %w", jurisdiction, err)
		}
		if !bands[0].Lower.Equal(table.PersonalAllowance) {
			return nil, fmt.Errorf("jurisdiction %s: first band must start at the personal allowance", jurisdiction)
		}
		table.IncomeTax[jurisdiction] = bands
	}

	if table.NI.LowerEarningsLimit, err = parseAmount(spec.NI.LowerEarningsLimit, "lowerEarningsLimit"); err != nil {
		return nil, err
	}
	if table.NI.PrimaryThreshold, err = parseAmount(spec.NI.PrimaryThreshold, "primaryThreshold"); err != nil {
		return nil, err
	}
	if table.NI.UpperEarningsLimit, err = parseAmount(spec.NI.UpperEarningsLimit, "upperEarningsLimit"); err != nil {
		return nil, err
	}
	table.NI.Categories = make(map[string]NICategoryRate, len(spec.NI.Categories))
	for category, rates := range spec.NI.Categories {
		main, err := parseAmount(rates.Main, "main rate")
		if err != nil {
			return nil, fmt.Errorf("NI category %s: %w", category, err)
		}
		upper, err := parseAmount(rates.Upper, "upper rate")
		if err != nil {
			return nil, fmt.Errorf("NI category %s: %w", category, err)
		}
		table.NI.Categories[category] = NICategoryRate{Main: main, Upper: upper}
	}

	for plan, rules := range spec.Plans {
		threshold, err := parseAmount(rules.Threshold, "threshold")
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", plan, err)
		}
		rate, err := parseAmount(rules.Rate, "rate")
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", plan, err)
		}
		table.Plans[plan] = Plan{Threshold: threshold, Rate: rate}
	}
	if _, ok := table.Plans[Plan2]; !ok {
		return nil, fmt.Errorf("studentLoanPlans must define %s", Plan2)
	}

	return table, nil
}

// buildBands parses an ordered band list and enforces the contiguity
// precondition every Apportion call relies on.
func buildBands(specs []bandSpec) ([]Band, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no bands defined")
	}

	bands := make([]Band, 0, len(specs))
	for i, raw := range specs {
		lower, err := parseAmount(raw.Lower, "lower")
		if err != nil {
			return nil, fmt.Errorf("band %s: %w", raw.Name, err)
		}
		rate, err := parseAmount(raw.Rate, "rate")
		if err != nil {
			return nil, fmt.Errorf("band %s: %w", raw.Name, err)
		}

		band := Band{Name: raw.Name, Lower: lower, Rate: rate}
		if raw.Upper != "" {
			upper, err := parseAmount(raw.Upper, "upper")
			if err != nil {
				return nil, fmt.Errorf("band %s: %w", raw.Name, err)
			}
			if upper.LessThanOrEqual(lower) {
				return nil, fmt.Errorf("band %s: upper bound must exceed lower bound", raw.Name)
			}
			band.Upper = &upper
		} else if i != len(specs)-1 {
			return nil, fmt.Errorf("band %s: only the final band may be open-ended", raw.Name)
		}

		if i > 0 {
			previous := bands[i-1]
			if previous.Upper == nil || !previous.Upper.Equal(lower) {
				return nil, fmt.Errorf("band %s: bands must be contiguous", raw.Name)
			}
		}
		bands = append(bands, band)
	}
	return bands, nil
}

func parseAmount(value, field string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, fmt.Errorf("%s is required", field)
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return amount, nil
}
