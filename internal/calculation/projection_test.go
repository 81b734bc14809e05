package calculation

import (
	"errors"
	"math"
	"testing"

	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noTax() *domain.JurisdictionTaxProfile {
	return &domain.JurisdictionTaxProfile{Code: "ZZ", CostOfLiving: 1}
}

// linearProfile grows by exactly 100 per year with no return, no tax and no inflation.
func linearProfile(spending float64) domain.FinancialProfile {
	return domain.FinancialProfile{
		Age:                30,
		AnnualContribution: 100,
		AnnualSpending:     spending,
		SafeWithdrawalRate: 0.5,
		InflationRate:      ratePtr(0),
	}
}

func TestProjectMissingTaxProfile(t *testing.T) {
	_, err := Project(linearProfile(75), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingJurisdictionData))
}

// Crossing halfway through the second year reports 2 years (ceiling rule).
func TestProjectMidYearCrossingRoundsUp(t *testing.T) {
	result, err := Project(linearProfile(75), noTax()) // FIRE number 150
	require.NoError(t, err)

	assert.Equal(t, 150.0, result.FireNumber)
	assert.Equal(t, 2, result.YearsUntilFire)
	assert.InDelta(t, 1.5, result.CrossingYear, 1e-12)
	assert.Equal(t, 32, result.RetirementAge)
	assert.Equal(t, 2, int(math.Ceil(result.CrossingYear)))
}

func TestProjectExactCrossingOnYearBoundary(t *testing.T) {
	result, err := Project(linearProfile(100), noTax()) // FIRE number 200
	require.NoError(t, err)

	assert.Equal(t, 2, result.YearsUntilFire)
	assert.InDelta(t, 2.0, result.CrossingYear, 1e-12)
}

func TestProjectAlreadyFire(t *testing.T) {
	p := linearProfile(75)
	p.NetWorth = 150
	result, err := Project(p, noTax())
	require.NoError(t, err)

	assert.Equal(t, 0, result.YearsUntilFire)
	assert.Zero(t, result.CrossingYear)
	assert.Len(t, result.Trajectory, 1+TrajectoryBuffer)
}

func TestProjectZeroSpendingIsImmediatelyFire(t *testing.T) {
	result, err := Project(domain.FinancialProfile{Age: 40}, noTax())
	require.NoError(t, err)

	assert.Equal(t, 0, result.YearsUntilFire)
	assert.Zero(t, result.FireNumber)
}

func TestProjectNegativeNetWorthClampsThenZeroSpending(t *testing.T) {
	result, err := Project(domain.FinancialProfile{Age: 40, NetWorth: -5000}, noTax())
	require.NoError(t, err)
	assert.Equal(t, 0, result.YearsUntilFire)
	assert.Zero(t, result.Trajectory[0].NetWorth)
}

func TestProjectNeverReachedTerminatesAtHorizon(t *testing.T) {
	p := domain.FinancialProfile{
		Age:            30,
		NetWorth:       1000,
		ExpectedReturn: -0.2,
		AnnualSpending: 50000,
	}
	result, err := Project(p, noTax())
	require.NoError(t, err)

	assert.Equal(t, domain.NeverFire, result.YearsUntilFire)
	assert.False(t, result.Reachable())
	assert.Len(t, result.Trajectory, DefaultHorizonYears+1)
	assert.Equal(t, float64(DefaultHorizonYears), result.CrossingYear)
	assert.Zero(t, result.RetirementAge)
	assert.Equal(t, result.FireNumberToday, result.FireNumber)
}

func TestProjectZeroReturnStillTerminates(t *testing.T) {
	p := domain.FinancialProfile{Age: 30, AnnualSpending: 1e9}
	result, err := Project(p, noTax(), WithHorizon(10))
	require.NoError(t, err)

	assert.Equal(t, domain.NeverFire, result.YearsUntilFire)
	assert.Len(t, result.Trajectory, 11)
	assert.Equal(t, 10, result.HorizonYears)
}

func TestProjectTrajectoryBufferCappedByHorizon(t *testing.T) {
	result, err := Project(linearProfile(75), noTax(), WithHorizon(3))
	require.NoError(t, err)
	assert.Equal(t, 2, result.YearsUntilFire)
	assert.Len(t, result.Trajectory, 4)
	assert.Equal(t, 3, result.Trajectory[3].Year)
}

func TestProjectCustomTrajectoryBuffer(t *testing.T) {
	result, err := Project(linearProfile(75), noTax(), WithTrajectoryBuffer(0))
	require.NoError(t, err)
	assert.Len(t, result.Trajectory, 3)
}

func TestProjectIsPure(t *testing.T) {
	p := domain.FinancialProfile{
		Age:                32,
		NetWorth:           120000,
		AnnualContribution: 35000,
		GrossIncome:        110000,
		ExpectedReturn:     0.07,
		AnnualSpending:     45000,
	}
	tax := &domain.JurisdictionTaxProfile{Code: "US", IncomeTaxRate: 0.24, CapitalGainsTaxRate: 0.15, CostOfLiving: 1}

	first, err := Project(p, tax)
	require.NoError(t, err)
	second, err := Project(p, tax)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, first.Reachable())
	assert.Equal(t, "US", first.Jurisdiction)
}

func TestProjectAppliesTaxesAndCostOfLiving(t *testing.T) {
	p := domain.FinancialProfile{
		Age:                30,
		AnnualContribution: 1000,
		AnnualSpending:     100,
		SafeWithdrawalRate: 0.04,
		InflationRate:      ratePtr(0),
	}
	tax := &domain.JurisdictionTaxProfile{IncomeTaxRate: 0.25, CapitalGainsTaxRate: 0.2, CostOfLiving: 0.5}

	result, err := Project(p, tax)
	require.NoError(t, err)

	// 100 * 0.5 COL * 1.25 gross-up / 0.04
	assert.InDelta(t, 1562.5, result.FireNumberToday, 1e-9)
	assert.InDelta(t, 750.0, result.Trajectory[1].NetWorth, 1e-9)
	assert.InDelta(t, 750.0, result.Trajectory[1].Contribution, 1e-9)
	assert.Equal(t, 3, result.YearsUntilFire)
	assert.Equal(t, 0.25, result.EffectiveIncomeTaxRate)
	assert.Equal(t, 0.2, result.EffectiveCapitalGainsTaxRate)
	assert.Equal(t, 0.5, result.CostOfLiving)
}

func TestProjectInflatesFireNumber(t *testing.T) {
	p := linearProfile(75)
	p.InflationRate = ratePtr(0.1)
	result, err := Project(p, noTax())
	require.NoError(t, err)

	assert.InDelta(t, 150.0, result.Trajectory[0].FireNumber, 1e-9)
	assert.InDelta(t, 165.0, result.Trajectory[1].FireNumber, 1e-9)
	assert.InDelta(t, 181.5, result.Trajectory[2].FireNumber, 1e-9)
	// 100, 200: crosses 181.5 in year 2
	assert.Equal(t, 2, result.YearsUntilFire)
	assert.InDelta(t, 181.5, result.FireNumber, 1e-9)
}

func TestProjectGrowthIsTaxDragged(t *testing.T) {
	p := domain.FinancialProfile{
		Age:            30,
		NetWorth:       1000,
		ExpectedReturn: 0.1,
		AnnualSpending: 1e9,
		InflationRate:  ratePtr(0),
	}
	tax := &domain.JurisdictionTaxProfile{CapitalGainsTaxRate: 0.5}
	result, err := Project(p, tax, WithHorizon(1))
	require.NoError(t, err)

	assert.InDelta(t, 50.0, result.Trajectory[1].Growth, 1e-9)
	assert.InDelta(t, 1050.0, result.Trajectory[1].NetWorth, 1e-9)
	assert.InDelta(t, 0.05, result.EffectiveReturn, 1e-12)
}

func TestProjectTerminatesForExtremeInputs(t *testing.T) {
	profiles := []domain.FinancialProfile{
		{Age: -5, NetWorth: math.NaN(), ExpectedReturn: math.Inf(1), AnnualSpending: math.Inf(1)},
		{Age: 500, ExpectedReturn: -50, AnnualSpending: 1, SafeWithdrawalRate: math.NaN()},
		{Age: 30, NetWorth: 1e300, ExpectedReturn: 10, AnnualContribution: 1e300, AnnualSpending: 1e300},
	}
	for _, p := range profiles {
		result, err := Project(p, &domain.JurisdictionTaxProfile{IncomeTaxRate: math.NaN(), CostOfLiving: math.NaN()})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(result.Trajectory), DefaultHorizonYears+1)
		assert.False(t, math.IsNaN(result.FireNumber))
	}
}

func TestProjectOverflowingFireNumberStaysFinite(t *testing.T) {
	p := domain.FinancialProfile{
		Age:                30,
		AnnualSpending:     1e308,
		SafeWithdrawalRate: 1e-300,
		InflationRate:      ratePtr(1e300),
	}
	result, err := Project(p, &domain.JurisdictionTaxProfile{Code: "ZZ", CapitalGainsTaxRate: 0.2, CostOfLiving: 1.5})
	require.NoError(t, err)

	assert.Equal(t, math.MaxFloat64, result.FireNumber)
	assert.Equal(t, domain.NeverFire, result.YearsUntilFire)
	for _, yr := range result.Trajectory {
		assert.False(t, math.IsInf(yr.FireNumber, 0), "year %d", yr.Year)
		assert.False(t, math.IsInf(yr.Spending, 0), "year %d", yr.Year)
	}
}
