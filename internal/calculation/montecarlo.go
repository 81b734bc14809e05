package calculation

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/rpgo/fire-compare/internal/domain"
)

const (
	DefaultTrials = 1000
	MaxTrials     = 100000
)

// SimulationConfig holds the parameters for one Monte Carlo run.
type SimulationConfig struct {
	Trials           int
	HorizonYears     int
	ReturnVolatility float64
	Seed             int64
}

func (c SimulationConfig) normalized() SimulationConfig {
	switch {
	case c.Trials <= 0:
		c.Trials = DefaultTrials
	case c.Trials > MaxTrials:
		c.Trials = MaxTrials
	}
	if c.HorizonYears <= 0 || c.HorizonYears > DefaultHorizonYears {
		c.HorizonYears = DefaultHorizonYears
	}
	if math.IsNaN(c.ReturnVolatility) || math.IsInf(c.ReturnVolatility, 0) || c.ReturnVolatility < 0 {
		c.ReturnVolatility = 0
	}
	return c
}

// ReturnSampler draws one year's nominal return. Implementations must only
// use the supplied generator so results are reproducible from the seed.
type ReturnSampler interface {
	Sample(rng *rand.Rand, mean, volatility float64) float64
	Name() string
}

// NormalSampler draws from N(mean, volatility²), floored at a total loss.
type NormalSampler struct{}

func (NormalSampler) Name() string { return domain.SamplerNormal }

func (NormalSampler) Sample(rng *rand.Rand, mean, volatility float64) float64 {
	return math.Max(mean+volatility*rng.NormFloat64(), domain.MinExpectedReturn)
}

// BootstrapSampler resamples a historical return series with replacement.
// With Recenter set, draws are shifted so the series mean equals the
// profile's expected return. Volatility is implied by the series.
type BootstrapSampler struct {
	Returns  []float64
	Recenter bool
}

func (BootstrapSampler) Name() string { return domain.SamplerHistorical }

func (b BootstrapSampler) Sample(rng *rand.Rand, mean, _ float64) float64 {
	if len(b.Returns) == 0 {
		return mean
	}
	r := b.Returns[rng.Intn(len(b.Returns))]
	if b.Recenter {
		r += mean - meanOf(b.Returns)
	}
	return math.Max(r, domain.MinExpectedReturn)
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// MonteCarloSimulator runs the projection year step under randomized returns.
type MonteCarloSimulator struct {
	Sampler   ReturnSampler
	NewSource func(seed int64) rand.Source
	Workers   int
}

// SimulatorOption customizes a MonteCarloSimulator.
type SimulatorOption func(*MonteCarloSimulator)

// WithSampler replaces the default normal sampler.
func WithSampler(s ReturnSampler) SimulatorOption {
	return func(m *MonteCarloSimulator) {
		if s != nil {
			m.Sampler = s
		}
	}
}

// WithSourceFactory replaces the random source constructor.
func WithSourceFactory(f func(seed int64) rand.Source) SimulatorOption {
	return func(m *MonteCarloSimulator) {
		if f != nil {
			m.NewSource = f
		}
	}
}

// WithWorkers bounds the number of concurrent trials.
func WithWorkers(n int) SimulatorOption {
	return func(m *MonteCarloSimulator) {
		if n > 0 {
			m.Workers = n
		}
	}
}

// NewMonteCarloSimulator creates a simulator with a normal sampler and math/rand sources.
func NewMonteCarloSimulator(opts ...SimulatorOption) *MonteCarloSimulator {
	s := &MonteCarloSimulator{
		Sampler:   NormalSampler{},
		NewSource: rand.NewSource,
		Workers:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type trialOutcome struct {
	netWorth       []float64 // index = year
	yearsUntilFire int
}

// Simulate runs cfg.Trials independent trials and aggregates them.
// The result depends only on the inputs and cfg.Seed, never on scheduling.
func (s *MonteCarloSimulator) Simulate(profile domain.FinancialProfile, tax *domain.JurisdictionTaxProfile, cfg SimulationConfig) (domain.SimulationResult, error) {
	if tax == nil {
		return domain.SimulationResult{}, fmt.Errorf("simulate: %w", domain.ErrMissingJurisdictionData)
	}
	cfg = cfg.normalized()
	m := newYearModel(profile, *tax)

	sampler := s.Sampler
	if sampler == nil {
		sampler = NormalSampler{}
	}
	newSource := s.NewSource
	if newSource == nil {
		newSource = rand.NewSource
	}
	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}

	// Per-trial seeds come from one master stream so that worker count
	// and completion order cannot change any trial's return path.
	master := rand.New(newSource(cfg.Seed))
	seeds := make([]int64, cfg.Trials)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	results := make([]trialOutcome, cfg.Trials)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for i := 0; i < cfg.Trials; i++ {
		wg.Add(1)
		go func(trial int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			rng := rand.New(newSource(seeds[trial]))
			results[trial] = s.runTrial(m, sampler, rng, cfg)
		}(i)
	}
	wg.Wait()

	return aggregate(m.tax.Code, sampler.Name(), cfg, results), nil
}

func (s *MonteCarloSimulator) runTrial(m yearModel, sampler ReturnSampler, rng *rand.Rand, cfg SimulationConfig) trialOutcome {
	netWorth := m.profile.NetWorth
	out := trialOutcome{
		netWorth:       make([]float64, cfg.HorizonYears+1),
		yearsUntilFire: domain.NeverFire,
	}
	out.netWorth[0] = netWorth
	if netWorth >= m.fireNumber(0) {
		out.yearsUntilFire = 0
	}
	for year := 1; year <= cfg.HorizonYears; year++ {
		r := sampler.Sample(rng, m.profile.ExpectedReturn, cfg.ReturnVolatility)
		netWorth, _ = m.step(netWorth, r)
		out.netWorth[year] = netWorth
		if out.yearsUntilFire == domain.NeverFire && netWorth >= m.fireNumber(year) {
			out.yearsUntilFire = year
		}
	}
	return out
}

func aggregate(code, samplerName string, cfg SimulationConfig, trials []trialOutcome) domain.SimulationResult {
	successes := 0
	years := make([]int, len(trials))
	for i, t := range trials {
		if t.yearsUntilFire != domain.NeverFire {
			successes++
		}
		years[i] = t.yearsUntilFire
	}
	sort.Ints(years)

	bands := make([]domain.PercentileBand, cfg.HorizonYears+1)
	column := make([]float64, len(trials))
	for year := range bands {
		for i, t := range trials {
			column[i] = t.netWorth[year]
		}
		sort.Float64s(column)
		bands[year] = band(year, column)
	}

	return domain.SimulationResult{
		Jurisdiction:         code,
		SuccessProbability:   float64(successes) / float64(len(trials)),
		Trials:               cfg.Trials,
		HorizonYears:         cfg.HorizonYears,
		Seed:                 cfg.Seed,
		ReturnVolatility:     cfg.ReturnVolatility,
		Sampler:              samplerName,
		MedianYearsUntilFire: years[nearestRank(0.5, len(years))],
		Bands:                bands,
		FinalNetWorth:        bands[cfg.HorizonYears],
	}
}

func band(year int, sorted []float64) domain.PercentileBand {
	n := len(sorted)
	return domain.PercentileBand{
		Year: year,
		P10:  sorted[nearestRank(0.10, n)],
		P25:  sorted[nearestRank(0.25, n)],
		P50:  sorted[nearestRank(0.50, n)],
		P75:  sorted[nearestRank(0.75, n)],
		P90:  sorted[nearestRank(0.90, n)],
	}
}

// nearestRank returns the zero-based index of the p-th percentile in a sorted slice of n.
func nearestRank(p float64, n int) int {
	idx := int(math.Ceil(p*float64(n))) - 1
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
