package calculation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJurisdictions map[string]domain.JurisdictionTaxProfile

func (f fakeJurisdictions) Lookup(code string) (domain.JurisdictionTaxProfile, error) {
	p, ok := f[code]
	if !ok {
		return domain.JurisdictionTaxProfile{}, fmt.Errorf("jurisdiction %q: %w", code, domain.ErrMissingJurisdictionData)
	}
	return p, nil
}

// fakeRates quotes units per USD.
type fakeRates map[string]float64

func (f fakeRates) Rate(from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	fr, ok := f[from]
	if !ok {
		return 0, fmt.Errorf("%s: %w", from, domain.ErrMissingExchangeRate)
	}
	tr, ok := f[to]
	if !ok {
		return 0, fmt.Errorf("%s: %w", to, domain.ErrMissingExchangeRate)
	}
	return tr / fr, nil
}

func (f fakeRates) Snapshot() string { return "2024-06-28" }

func testEngine() *CalculationEngine {
	return NewCalculationEngine(
		fakeJurisdictions{
			"US": {Code: "US", Currency: "USD", IncomeTaxRate: 0.22, CapitalGainsTaxRate: 0.15, CostOfLiving: 1.0},
			"PT": {Code: "PT", Currency: "EUR", IncomeTaxRate: 0.35, CapitalGainsTaxRate: 0.28, CostOfLiving: 0.5},
			"GB": {Code: "GB", Currency: "GBP", IncomeTaxRate: 0.4, CapitalGainsTaxRate: 0.2, CostOfLiving: 0.8},
		},
		fakeRates{"USD": 1, "EUR": 0.8, "GBP": 0.5},
	)
}

func testRequest() domain.ComparisonRequest {
	return domain.ComparisonRequest{
		BaseCurrency: "USD",
		A:            domain.SideInput{Jurisdiction: "US", Profile: simulationProfile()},
		B:            domain.SideInput{Jurisdiction: "PT", Profile: simulationProfile()},
	}
}

func TestEngineRun(t *testing.T) {
	report, err := testEngine().Run(context.Background(), testRequest())
	require.NoError(t, err)

	result := report.Result
	assert.Equal(t, "US", result.A.Jurisdiction)
	assert.Equal(t, "PT", result.B.Jurisdiction)
	assert.Equal(t, domain.SideB, result.Winner)
	assert.Equal(t, domain.ReasonEarlierRetirement, result.Reason)
	assert.Nil(t, result.SimulationA)

	assert.Equal(t, "USD", result.A.LocalCurrency)
	assert.Equal(t, result.A.FireNumber, result.A.LocalFireNumber)
	assert.Equal(t, "EUR", result.B.LocalCurrency)
	assert.InDelta(t, result.B.FireNumber*0.8, result.B.LocalFireNumber, 1e-6)

	assert.Equal(t, "2024-06-28", report.RatesAsOf)
	assert.Empty(t, report.Warnings)
	assert.NotEmpty(t, report.Assumptions)
}

func TestEngineRunMatchesCompare(t *testing.T) {
	engine := testEngine()
	report, err := engine.Run(context.Background(), testRequest())
	require.NoError(t, err)

	us, _ := engine.Jurisdictions.Lookup("US")
	pt, _ := engine.Jurisdictions.Lookup("PT")
	profile := simulationProfile()
	profile.Currency = "USD"
	direct, err := Compare(Side{Profile: profile, Tax: &us}, Side{Profile: profile, Tax: &pt})
	require.NoError(t, err)

	assert.Equal(t, direct.A.YearsUntilFire, report.Result.A.YearsUntilFire)
	assert.Equal(t, direct.B.FireNumber, report.Result.B.FireNumber)
}

func TestEngineUnknownJurisdiction(t *testing.T) {
	req := testRequest()
	req.B.Jurisdiction = "ZZ"
	_, err := testEngine().Run(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingJurisdictionData))

	req = testRequest()
	req.A.Jurisdiction = " "
	_, err = testEngine().Run(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrMissingJurisdictionData))

	_, err = (&CalculationEngine{}).Run(context.Background(), testRequest())
	assert.True(t, errors.Is(err, domain.ErrMissingJurisdictionData))
}

func TestEngineConvertsProfileCurrency(t *testing.T) {
	req := testRequest()
	req.B.Profile.Currency = "EUR"
	req.B.Profile.AnnualSpending = 40000 // 50,000 USD

	report, err := testEngine().Run(context.Background(), req)
	require.NoError(t, err)

	// 50,000 * 0.5 COL / (1 - 0.28) / 0.04
	assert.InDelta(t, 50000*0.5/0.72/0.04, report.Result.B.FireNumberToday, 1e-6)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "B: profile converted from EUR to USD")
}

func TestEngineMissingExchangeRate(t *testing.T) {
	req := testRequest()
	req.A.Profile.Currency = "JPY"
	_, err := testEngine().Run(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrMissingExchangeRate))

	engine := testEngine()
	engine.Rates = nil
	_, err = engine.Run(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrMissingExchangeRate))
}

func TestEngineDefaultsBaseCurrencyToSideA(t *testing.T) {
	req := testRequest()
	req.BaseCurrency = ""
	req.A.Jurisdiction = "PT"
	req.B.Jurisdiction = "US"

	report, err := testEngine().Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "EUR", report.Request.BaseCurrency)
	assert.InDelta(t, report.Result.B.FireNumber/0.8, report.Result.B.LocalFireNumber, 1e-6)
}

func TestEngineHomeCostOfLiving(t *testing.T) {
	req := testRequest()
	req.HomeJurisdiction = "GB"

	report, err := testEngine().Run(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, report.Result.A.CostOfLiving, 1e-12)
	assert.InDelta(t, 0.625, report.Result.B.CostOfLiving, 1e-12)

	req.HomeJurisdiction = "XX"
	_, err = testEngine().Run(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrMissingJurisdictionData))
}

func TestEngineCollectsClampWarnings(t *testing.T) {
	req := testRequest()
	req.A.Profile.Age = 200
	req.B.Profile.NetWorth = -10

	report, err := testEngine().Run(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, report.Warnings, "A: age 200 clamped to 120")
	assert.Contains(t, report.Warnings, "B: net_worth -10 clamped to 0")
}

func TestEngineRunWithSimulation(t *testing.T) {
	req := testRequest()
	req.Simulation = domain.SimulationSettings{Enabled: true, Trials: 200, HorizonYears: 40, ReturnVolatility: ratePtr(0.15), Seed: 42}

	engine := testEngine()
	first, err := engine.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, first.Result.SimulationA)
	require.NotNil(t, first.Result.SimulationB)
	assert.Equal(t, 200, first.Result.SimulationA.Trials)
	assert.Equal(t, domain.SamplerNormal, first.Result.SimulationA.Sampler)
	assert.Equal(t, first.Result.SimulationA.SuccessProbability, second.Result.SimulationA.SuccessProbability)
}

func TestEngineSimulationSamplers(t *testing.T) {
	req := testRequest()
	req.Simulation = domain.SimulationSettings{Enabled: true, Trials: 50, HorizonYears: 30, Seed: 1, Sampler: "historical"}

	report, err := testEngine().Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.SamplerHistorical, report.Result.SimulationB.Sampler)
	last := report.Assumptions[len(report.Assumptions)-1]
	assert.Contains(t, last, "Historical returns: S&P 500 total return")
	assert.Contains(t, last, "50 years, mean ")

	req.Simulation.Sampler = "lognormal"
	req.Simulation.Trials = MaxTrials + 1
	req.Simulation.HorizonYears = 10
	engine := testEngine()
	_, cfg, history, warnings := engine.simulator(req.Simulation)
	assert.Nil(t, history)
	assert.Equal(t, MaxTrials, cfg.Trials)
	assert.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], `unknown sampler "lognormal"`)
}

func TestEngineRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testEngine().Run(ctx, testRequest())
	assert.True(t, errors.Is(err, context.Canceled))
}

type recordingLogger struct {
	NopLogger
	infos []string
}

func (r *recordingLogger) Infof(format string, args ...any) {
	r.infos = append(r.infos, fmt.Sprintf(format, args...))
}

func TestEngineLogsWinner(t *testing.T) {
	logger := &recordingLogger{}
	engine := testEngine()
	engine.SetLogger(logger)

	_, err := engine.Run(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, logger.infos, 1)
	assert.Contains(t, logger.infos[0], "winner B (earlierRetirement): PT")

	engine.SetLogger(nil)
	assert.Equal(t, NopLogger{}, engine.Logger)
}
