package calculation

import (
	"math"

	"github.com/rpgo/fire-compare/internal/domain"
)

// TAX MODEL ASSUMPTIONS:
//
// 1. Rates are flat effective rates, not brackets. Any input rate is clamped
//    into [0,1] before use: negatives floor to 0, values above 1 cap to 1,
//    NaN maps to 0.
//
// 2. A sub-jurisdiction rate (e.g. a US state) applies to both income and
//    capital gains. Composition is additive capped at 1.0 unless the profile
//    selects the max rule.
//
// 3. Capital gains tax drags positive growth only; losses are not credited.
//
// 4. Spending in retirement is funded by portfolio withdrawals taxed at the
//    capital gains rate, so the FIRE number is grossed up by 1/(1-cg).
//    The gross-up rate is capped at MaxWithdrawalTaxRate to keep the target finite.

// IncomeType selects which national rate EffectiveRate starts from.
type IncomeType int

const (
	Income IncomeType = iota
	CapitalGains
)

func (t IncomeType) String() string {
	if t == CapitalGains {
		return "capital_gains"
	}
	return "income"
}

// MaxWithdrawalTaxRate caps the rate used for the withdrawal gross-up.
const MaxWithdrawalTaxRate = 0.9

// EffectiveRate returns the combined tax rate for the income type, always in [0,1].
func EffectiveRate(tax domain.JurisdictionTaxProfile, incomeType IncomeType) float64 {
	national := tax.IncomeTaxRate
	if incomeType == CapitalGains {
		national = tax.CapitalGainsTaxRate
	}
	national = domain.ClampRate(national)
	if tax.SubJurisdictionRate == nil {
		return national
	}
	sub := domain.ClampRate(*tax.SubJurisdictionRate)
	return composeRates(national, sub, tax.Composition)
}

func composeRates(national, sub float64, rule domain.Composition) float64 {
	if rule == domain.CompositionMax {
		return math.Max(national, sub)
	}
	return math.Min(1, national+sub)
}

// EffectiveReturn applies the capital gains drag to a nominal return.
func EffectiveReturn(nominal, capitalGainsRate float64) float64 {
	if nominal <= 0 {
		return nominal
	}
	return nominal * (1 - domain.ClampRate(capitalGainsRate))
}

// WithdrawalGrossUp is the factor turning net spending into the pre-tax withdrawal.
func WithdrawalGrossUp(capitalGainsRate float64) float64 {
	cg := math.Min(domain.ClampRate(capitalGainsRate), MaxWithdrawalTaxRate)
	return 1 / (1 - cg)
}

// AfterTaxContribution reduces a gross contribution by the effective income tax rate.
func AfterTaxContribution(gross, incomeRate float64) float64 {
	return gross * (1 - domain.ClampRate(incomeRate))
}
