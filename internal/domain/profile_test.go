package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestClampRate(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 0.25, 0.25},
		{"negative floors to zero", -0.5, 0},
		{"above one caps", 1.7, 1},
		{"NaN maps to zero", math.NaN(), 0},
		{"positive infinity caps", math.Inf(1), 1},
		{"negative infinity floors", math.Inf(-1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampRate(tt.in))
		})
	}
}

func TestFinancialProfileNormalize(t *testing.T) {
	p := FinancialProfile{
		Age:                150,
		NetWorth:           -100,
		AnnualContribution: math.NaN(),
		GrossIncome:        math.Inf(1),
		ExpectedReturn:     -3,
		AnnualSpending:     40000,
		SafeWithdrawalRate: -0.1,
		InflationRate:      floatPtr(math.NaN()),
		ContributionRate:   2,
	}

	got, warnings := p.Normalize()

	assert.Equal(t, MaxAge, got.Age)
	assert.Zero(t, got.NetWorth)
	assert.Zero(t, got.AnnualContribution)
	assert.Zero(t, got.GrossIncome)
	assert.Equal(t, MinExpectedReturn, got.ExpectedReturn)
	assert.Equal(t, 40000.0, got.AnnualSpending)
	assert.Equal(t, DefaultSafeWithdrawalRate, got.SafeWithdrawalRate)
	assert.Nil(t, got.InflationRate)
	assert.Equal(t, DefaultInflationRate, got.Inflation())
	assert.Equal(t, 1.0, got.ContributionRate)
	assert.Len(t, warnings, 8)
}

func TestFinancialProfileNormalizeKeepsValidInput(t *testing.T) {
	p := FinancialProfile{
		Age:                35,
		NetWorth:           100000,
		AnnualContribution: 30000,
		GrossIncome:        90000,
		ExpectedReturn:     -0.02,
		AnnualSpending:     40000,
		SafeWithdrawalRate: 0.035,
		InflationRate:      floatPtr(0.02),
	}

	got, warnings := p.Normalize()

	assert.Empty(t, warnings)
	assert.Equal(t, p.Age, got.Age)
	assert.Equal(t, p.ExpectedReturn, got.ExpectedReturn)
	require.NotNil(t, got.InflationRate)
	assert.Equal(t, 0.02, *got.InflationRate)
	assert.NotSame(t, p.InflationRate, got.InflationRate)
}

func TestFinancialProfileNormalizeCapsMoney(t *testing.T) {
	p := FinancialProfile{Age: 40, NetWorth: 2e15, AnnualSpending: 1e308}

	got, warnings := p.Normalize()

	assert.Equal(t, float64(MaxMoney), got.NetWorth)
	assert.Equal(t, float64(MaxMoney), got.AnnualSpending)
	assert.Equal(t, []string{"net_worth 2e+15 clamped to 1e+15", "annual_spending 1e+308 clamped to 1e+15"}, warnings)
}

func TestFinancialProfileNormalizeAgeFloor(t *testing.T) {
	got, warnings := FinancialProfile{Age: 0}.Normalize()
	assert.Equal(t, MinAge, got.Age)
	assert.Contains(t, warnings, "age 0 clamped to 1")
}

func TestGrossContribution(t *testing.T) {
	p := FinancialProfile{AnnualContribution: 10000, ContributionRate: 0.1, GrossIncome: 80000}
	assert.InDelta(t, 18000.0, p.GrossContribution(), 1e-9)
}

func TestJurisdictionTaxProfileNormalize(t *testing.T) {
	tax := JurisdictionTaxProfile{
		Code:                "XX",
		IncomeTaxRate:       1.4,
		CapitalGainsTaxRate: math.NaN(),
		SubJurisdictionRate: floatPtr(-0.2),
		CostOfLiving:        -1,
		Composition:         "bogus",
	}

	got, warnings := tax.Normalize()

	assert.Equal(t, 1.0, got.IncomeTaxRate)
	assert.Zero(t, got.CapitalGainsTaxRate)
	require.NotNil(t, got.SubJurisdictionRate)
	assert.Zero(t, *got.SubJurisdictionRate)
	assert.Equal(t, DefaultCostOfLiving, got.CostOfLiving)
	assert.Equal(t, CompositionAdditive, got.Composition)
	assert.Len(t, warnings, 4)
}

func TestCostOfLivingMultiplierFallback(t *testing.T) {
	assert.Equal(t, 1.0, JurisdictionTaxProfile{}.CostOfLivingMultiplier())
	assert.Equal(t, 1.0, JurisdictionTaxProfile{CostOfLiving: math.Inf(1)}.CostOfLivingMultiplier())
	assert.Equal(t, 0.6, JurisdictionTaxProfile{CostOfLiving: 0.6}.CostOfLivingMultiplier())
}

func TestComparisonResultWinnerResult(t *testing.T) {
	c := ComparisonResult{
		A:      ProjectionResult{Jurisdiction: "US"},
		B:      ProjectionResult{Jurisdiction: "PT"},
		Winner: SideB,
	}
	assert.Equal(t, "PT", c.WinnerResult().Jurisdiction)
	c.Winner = SideA
	assert.Equal(t, "US", c.WinnerResult().Jurisdiction)
}

func TestProjectionResultReachable(t *testing.T) {
	assert.True(t, ProjectionResult{YearsUntilFire: 0}.Reachable())
	assert.False(t, ProjectionResult{YearsUntilFire: NeverFire}.Reachable())
}
