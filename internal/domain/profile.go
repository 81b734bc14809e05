package domain

import (
	"fmt"
	"math"
)

// Defaults applied when an input field is unset or unusable.
const (
	DefaultSafeWithdrawalRate = 0.04
	DefaultInflationRate      = 0.03
	DefaultCostOfLiving       = 1.0

	MinAge = 1
	MaxAge = 120

	// MinInflationRate keeps the inflation factor strictly positive.
	MinInflationRate = -0.99
	// MinExpectedReturn is a total loss; a balance cannot fall below zero.
	MinExpectedReturn = -1.0
	// MaxMoney caps every money input so derived amounts stay finite.
	MaxMoney = 1e15
)

// FinancialProfile holds one person's inputs for one side of a comparison.
// Money fields are annual amounts in Currency (the request base currency when empty).
type FinancialProfile struct {
	Age                int      `yaml:"age" json:"age"`
	NetWorth           float64  `yaml:"net_worth" json:"net_worth"`
	AnnualContribution float64  `yaml:"annual_contribution" json:"annual_contribution"`
	ContributionRate   float64  `yaml:"contribution_rate,omitempty" json:"contribution_rate,omitempty"` // fraction of gross income
	GrossIncome        float64  `yaml:"gross_income" json:"gross_income"`
	ExpectedReturn     float64  `yaml:"expected_return" json:"expected_return"`
	AnnualSpending     float64  `yaml:"annual_spending" json:"annual_spending"`
	SafeWithdrawalRate float64  `yaml:"safe_withdrawal_rate,omitempty" json:"safe_withdrawal_rate,omitempty"`
	InflationRate      *float64 `yaml:"inflation_rate,omitempty" json:"inflation_rate,omitempty"`
	Currency           string   `yaml:"currency,omitempty" json:"currency,omitempty"`
}

// GrossContribution is the yearly amount saved before income tax.
func (p FinancialProfile) GrossContribution() float64 {
	return p.AnnualContribution + p.ContributionRate*p.GrossIncome
}

// Inflation returns the configured inflation rate or the default when unset.
func (p FinancialProfile) Inflation() float64 {
	if p.InflationRate == nil {
		return DefaultInflationRate
	}
	return *p.InflationRate
}

// Normalize returns a copy with every field clamped into its valid domain,
// along with a description of each adjustment made. It never fails.
func (p FinancialProfile) Normalize() (FinancialProfile, []string) {
	var warnings []string
	note := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	out := p
	switch {
	case p.Age < MinAge:
		out.Age = MinAge
		note("age %d clamped to %d", p.Age, MinAge)
	case p.Age > MaxAge:
		out.Age = MaxAge
		note("age %d clamped to %d", p.Age, MaxAge)
	}

	out.NetWorth = clampMoney("net_worth", p.NetWorth, note)
	out.AnnualContribution = clampMoney("annual_contribution", p.AnnualContribution, note)
	out.GrossIncome = clampMoney("gross_income", p.GrossIncome, note)
	out.AnnualSpending = clampMoney("annual_spending", p.AnnualSpending, note)

	if c := ClampRate(p.ContributionRate); c != p.ContributionRate {
		out.ContributionRate = c
		note("contribution_rate %v clamped to %v", p.ContributionRate, c)
	}

	switch {
	case !isFinite(p.ExpectedReturn):
		out.ExpectedReturn = 0
		note("expected_return %v replaced with 0", p.ExpectedReturn)
	case p.ExpectedReturn < MinExpectedReturn:
		out.ExpectedReturn = MinExpectedReturn
		note("expected_return %v clamped to %v", p.ExpectedReturn, MinExpectedReturn)
	}

	switch {
	case !isFinite(p.SafeWithdrawalRate) || p.SafeWithdrawalRate <= 0:
		out.SafeWithdrawalRate = DefaultSafeWithdrawalRate
		if p.SafeWithdrawalRate != 0 {
			note("safe_withdrawal_rate %v replaced with %v", p.SafeWithdrawalRate, DefaultSafeWithdrawalRate)
		}
	case p.SafeWithdrawalRate > 1:
		out.SafeWithdrawalRate = 1
		note("safe_withdrawal_rate %v clamped to 1", p.SafeWithdrawalRate)
	}

	if p.InflationRate != nil {
		v := *p.InflationRate
		switch {
		case !isFinite(v):
			out.InflationRate = nil
			note("inflation_rate %v replaced with default %v", v, DefaultInflationRate)
		case v < MinInflationRate:
			clamped := MinInflationRate
			out.InflationRate = &clamped
			note("inflation_rate %v clamped to %v", v, MinInflationRate)
		default:
			copied := v
			out.InflationRate = &copied
		}
	}

	return out, warnings
}

func clampMoney(field string, v float64, note func(string, ...any)) float64 {
	if !isFinite(v) || v < 0 {
		note("%s %v clamped to 0", field, v)
		return 0
	}
	if v > MaxMoney {
		note("%s %v clamped to %v", field, v, float64(MaxMoney))
		return MaxMoney
	}
	return v
}

// ClampRate maps a rate into [0,1]; NaN maps to 0.
func ClampRate(r float64) float64 {
	switch {
	case math.IsNaN(r):
		return 0
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Composition selects how a sub-jurisdiction rate combines with the national rate.
type Composition string

const (
	// CompositionAdditive sums both rates, capped at 1.0. This is the default.
	CompositionAdditive Composition = "additive"
	// CompositionMax takes the larger of the two rates.
	CompositionMax Composition = "max"
)

// JurisdictionTaxProfile carries the tax and cost-of-living data for one jurisdiction.
type JurisdictionTaxProfile struct {
	Code                string      `yaml:"code,omitempty" json:"code,omitempty"`
	Name                string      `yaml:"name,omitempty" json:"name,omitempty"`
	Currency            string      `yaml:"currency,omitempty" json:"currency,omitempty"`
	IncomeTaxRate       float64     `yaml:"income_tax_rate" json:"income_tax_rate"`
	CapitalGainsTaxRate float64     `yaml:"capital_gains_tax_rate" json:"capital_gains_tax_rate"`
	SubJurisdictionRate *float64    `yaml:"sub_jurisdiction_rate,omitempty" json:"sub_jurisdiction_rate,omitempty"`
	Composition         Composition `yaml:"composition,omitempty" json:"composition,omitempty"`
	CostOfLiving        float64     `yaml:"cost_of_living" json:"cost_of_living"`
}

// CostOfLivingMultiplier returns the multiplier, falling back to 1.0 when it
// is not strictly positive and finite.
func (t JurisdictionTaxProfile) CostOfLivingMultiplier() float64 {
	if !isFinite(t.CostOfLiving) || t.CostOfLiving <= 0 {
		return DefaultCostOfLiving
	}
	return t.CostOfLiving
}

// Normalize clamps the tax profile and reports each adjustment.
func (t JurisdictionTaxProfile) Normalize() (JurisdictionTaxProfile, []string) {
	var warnings []string
	out := t
	if r := ClampRate(t.IncomeTaxRate); r != t.IncomeTaxRate {
		out.IncomeTaxRate = r
		warnings = append(warnings, fmt.Sprintf("%s income_tax_rate %v clamped to %v", t.Code, t.IncomeTaxRate, r))
	}
	if r := ClampRate(t.CapitalGainsTaxRate); r != t.CapitalGainsTaxRate {
		out.CapitalGainsTaxRate = r
		warnings = append(warnings, fmt.Sprintf("%s capital_gains_tax_rate %v clamped to %v", t.Code, t.CapitalGainsTaxRate, r))
	}
	if t.SubJurisdictionRate != nil {
		r := ClampRate(*t.SubJurisdictionRate)
		if r != *t.SubJurisdictionRate {
			warnings = append(warnings, fmt.Sprintf("%s sub_jurisdiction_rate %v clamped to %v", t.Code, *t.SubJurisdictionRate, r))
		}
		out.SubJurisdictionRate = &r
	}
	if c := t.CostOfLivingMultiplier(); c != t.CostOfLiving {
		out.CostOfLiving = c
		if t.CostOfLiving != 0 {
			warnings = append(warnings, fmt.Sprintf("%s cost_of_living %v replaced with %v", t.Code, t.CostOfLiving, c))
		}
	}
	if out.Composition != CompositionMax {
		out.Composition = CompositionAdditive
	}
	return out, warnings
}
