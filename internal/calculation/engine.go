package calculation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpgo/fire-compare/internal/domain"
)

// JurisdictionProvider resolves a jurisdiction code to its tax profile.
type JurisdictionProvider interface {
	Lookup(code string) (domain.JurisdictionTaxProfile, error)
}

// CurrencyConverter supplies exchange rates from a fixed snapshot.
type CurrencyConverter interface {
	Rate(from, to string) (float64, error)
	Snapshot() string
}

// CalculationEngine resolves a comparison request against static data and
// runs the comparison. It performs no I/O; all data is supplied up front.
type CalculationEngine struct {
	Jurisdictions JurisdictionProvider
	Rates         CurrencyConverter
	Simulator     *MonteCarloSimulator
	ReturnSeries  *ReturnSeries // used by the historical sampler
	Logger        Logger
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine(jurisdictions JurisdictionProvider, rates CurrencyConverter) *CalculationEngine {
	return &CalculationEngine{
		Jurisdictions: jurisdictions,
		Rates:         rates,
		Simulator:     NewMonteCarloSimulator(),
		Logger:        NopLogger{},
	}
}

// SetLogger sets the logger for the calculation engine. If nil is provided, a no-op logger is used.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

func (ce *CalculationEngine) logger() Logger {
	if ce.Logger == nil {
		return NopLogger{}
	}
	return ce.Logger
}

// resolvedSide is one side of a request after lookup and currency conversion.
type resolvedSide struct {
	label string
	side  Side
}

// Run resolves both jurisdictions, converts money into the base currency,
// compares the two sides and optionally runs the Monte Carlo pass.
func (ce *CalculationEngine) Run(ctx context.Context, req domain.ComparisonRequest) (*domain.ComparisonReport, error) {
	log := ce.logger()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ce.Jurisdictions == nil {
		return nil, fmt.Errorf("no jurisdiction provider: %w", domain.ErrMissingJurisdictionData)
	}

	var warnings []string
	a, err := ce.resolveSide("A", req.A, &req, &warnings)
	if err != nil {
		return nil, err
	}
	b, err := ce.resolveSide("B", req.B, &req, &warnings)
	if err != nil {
		return nil, err
	}
	if err := ce.applyHomeCostOfLiving(req.HomeJurisdiction, a, b); err != nil {
		return nil, err
	}

	for _, s := range []*resolvedSide{a, b} {
		_, pw := s.side.Profile.Normalize()
		for _, w := range pw {
			warnings = append(warnings, fmt.Sprintf("%s: %s", s.label, w))
		}
		_, tw := s.side.Tax.Normalize()
		for _, w := range tw {
			warnings = append(warnings, fmt.Sprintf("%s: %s", s.label, w))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Debugf("comparing %s and %s in %s", a.side.Tax.Code, b.side.Tax.Code, req.BaseCurrency)

	var (
		result  domain.ComparisonResult
		history *ReturnSeries
	)
	if req.Simulation.Enabled {
		sim, cfg, series, simWarnings := ce.simulator(req.Simulation)
		history = series
		warnings = append(warnings, simWarnings...)
		log.Debugf("simulating %d trials over %d years (seed %d, sampler %s)", cfg.Trials, cfg.HorizonYears, cfg.Seed, sim.Sampler.Name())
		result, err = CompareWithSimulation(a.side, b.side, sim, cfg)
	} else {
		result, err = Compare(a.side, b.side)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	warnings = append(warnings, ce.attachLocalCurrency(&result.A, req.BaseCurrency, a.side.Tax.Currency)...)
	warnings = append(warnings, ce.attachLocalCurrency(&result.B, req.BaseCurrency, b.side.Tax.Currency)...)

	for _, w := range warnings {
		log.Warnf("%s", w)
	}
	log.Infof("winner %s (%s): %s in %s", result.Winner, result.Reason, result.WinnerResult().Jurisdiction, yearsText(result.WinnerResult().YearsUntilFire))

	report := &domain.ComparisonReport{
		Request:     req,
		Result:      result,
		Warnings:    warnings,
		Assumptions: assumptionsFor(req, result, history),
	}
	if ce.Rates != nil {
		report.RatesAsOf = ce.Rates.Snapshot()
	}
	return report, nil
}

// resolveSide looks up the jurisdiction and converts the profile into the
// base currency. An empty base currency defaults to side A's currency.
func (ce *CalculationEngine) resolveSide(label string, in domain.SideInput, req *domain.ComparisonRequest, warnings *[]string) (*resolvedSide, error) {
	if strings.TrimSpace(in.Jurisdiction) == "" {
		return nil, fmt.Errorf("side %s: no jurisdiction code: %w", label, domain.ErrMissingJurisdictionData)
	}
	tax, err := ce.Jurisdictions.Lookup(in.Jurisdiction)
	if err != nil {
		return nil, fmt.Errorf("side %s: %w", label, err)
	}
	if req.BaseCurrency == "" {
		req.BaseCurrency = tax.Currency
	}
	req.BaseCurrency = strings.ToUpper(req.BaseCurrency)

	profile := in.Profile
	if profile.Currency != "" && !strings.EqualFold(profile.Currency, req.BaseCurrency) {
		if ce.Rates == nil {
			return nil, fmt.Errorf("side %s: %s to %s: %w", label, profile.Currency, req.BaseCurrency, domain.ErrMissingExchangeRate)
		}
		rate, err := ce.Rates.Rate(profile.Currency, req.BaseCurrency)
		if err != nil {
			return nil, fmt.Errorf("side %s: %w", label, err)
		}
		profile.NetWorth *= rate
		profile.AnnualContribution *= rate
		profile.GrossIncome *= rate
		profile.AnnualSpending *= rate
		*warnings = append(*warnings, fmt.Sprintf("%s: profile converted from %s to %s at %.4f", label, strings.ToUpper(profile.Currency), req.BaseCurrency, rate))
	}
	profile.Currency = req.BaseCurrency

	return &resolvedSide{label: label, side: Side{Profile: profile, Tax: &tax}}, nil
}

// applyHomeCostOfLiving rescales both multipliers so that spending is
// expressed at home prices.
func (ce *CalculationEngine) applyHomeCostOfLiving(homeCode string, sides ...*resolvedSide) error {
	if strings.TrimSpace(homeCode) == "" {
		return nil
	}
	home, err := ce.Jurisdictions.Lookup(homeCode)
	if err != nil {
		return fmt.Errorf("home: %w", err)
	}
	homeCOL := home.CostOfLivingMultiplier()
	for _, s := range sides {
		s.side.Tax.CostOfLiving = s.side.Tax.CostOfLivingMultiplier() / homeCOL
	}
	return nil
}

// simulator builds the simulator and config for a request. The series is
// non-nil only when the historical sampler is in use.
func (ce *CalculationEngine) simulator(settings domain.SimulationSettings) (*MonteCarloSimulator, SimulationConfig, *ReturnSeries, []string) {
	var (
		warnings []string
		history  *ReturnSeries
	)
	base := ce.Simulator
	if base == nil {
		base = NewMonteCarloSimulator()
	}
	sim := *base

	switch strings.ToLower(settings.Sampler) {
	case "", domain.SamplerNormal:
		if sim.Sampler == nil {
			sim.Sampler = NormalSampler{}
		}
	case domain.SamplerHistorical:
		series := ce.ReturnSeries
		if series == nil {
			var err error
			series, err = DefaultReturnSeries()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("historical returns unavailable, using normal sampler: %v", err))
				sim.Sampler = NormalSampler{}
				break
			}
		}
		sim.Sampler = series.Sampler(true)
		history = series
	default:
		warnings = append(warnings, fmt.Sprintf("unknown sampler %q, using %s", settings.Sampler, domain.SamplerNormal))
		sim.Sampler = NormalSampler{}
	}

	cfg := SimulationConfig{
		Trials:           settings.Trials,
		HorizonYears:     settings.HorizonYears,
		ReturnVolatility: settings.Volatility(),
		Seed:             settings.Seed,
	}
	normalized := cfg.normalized()
	if settings.Trials > MaxTrials {
		warnings = append(warnings, fmt.Sprintf("trials %d capped at %d", settings.Trials, MaxTrials))
	}
	if settings.HorizonYears > DefaultHorizonYears {
		warnings = append(warnings, fmt.Sprintf("horizon %d capped at %d years", settings.HorizonYears, DefaultHorizonYears))
	}
	return &sim, normalized, history, warnings
}

// attachLocalCurrency reports the FIRE number in the jurisdiction's own currency.
func (ce *CalculationEngine) attachLocalCurrency(r *domain.ProjectionResult, base, local string) []string {
	if local == "" {
		return nil
	}
	r.LocalCurrency = local
	if strings.EqualFold(base, local) {
		r.LocalFireNumber = r.FireNumber
		return nil
	}
	if ce.Rates == nil {
		r.LocalCurrency = ""
		return []string{fmt.Sprintf("%s: no exchange rates loaded, local FIRE number omitted", r.Jurisdiction)}
	}
	rate, err := ce.Rates.Rate(base, local)
	if err != nil {
		r.LocalCurrency = ""
		return []string{fmt.Sprintf("%s: local FIRE number omitted: %v", r.Jurisdiction, err)}
	}
	r.LocalFireNumber = capFinite(r.FireNumber * rate)
	return nil
}

func assumptionsFor(req domain.ComparisonRequest, result domain.ComparisonResult, history *ReturnSeries) []string {
	out := []string{
		fmt.Sprintf("All amounts in %s at today's prices unless stated otherwise", req.BaseCurrency),
		"Investment growth is taxed at the capital gains rate as it accrues; losses are untaxed",
		"Contributions are made from income taxed at the effective income tax rate",
		"FIRE number = spending x cost of living / (1 - capital gains rate) / safe withdrawal rate, inflated each year",
		fmt.Sprintf("Years until FIRE are whole years, rounded up; search horizon %d years", result.A.HorizonYears),
	}
	if req.HomeJurisdiction != "" {
		out = append(out, fmt.Sprintf("Spending is stated at %s prices and rescaled by relative cost of living", strings.ToUpper(req.HomeJurisdiction)))
	}
	if s := result.SimulationA; s != nil {
		out = append(out, fmt.Sprintf("Monte Carlo: %d trials, %s returns, volatility %.3f, seed %d", s.Trials, s.Sampler, s.ReturnVolatility, s.Seed))
	}
	if history != nil {
		out = append(out, "Historical returns: "+history.Summary()+", recentred on each profile's expected return")
	}
	return out
}

func yearsText(years int) string {
	if years == domain.NeverFire {
		return "never"
	}
	return fmt.Sprintf("%d years", years)
}
