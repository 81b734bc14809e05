package domain

import "math"

// NeverFire is the YearsUntilFire sentinel for a target not reached within the horizon.
// It sorts after every reachable year count.
const NeverFire = math.MaxInt32

// YearSnapshot is the state at the end of one projected year. Year 0 is today.
type YearSnapshot struct {
	Year         int     `json:"year"`
	Age          int     `json:"age"`
	NetWorth     float64 `json:"net_worth"`
	FireNumber   float64 `json:"fire_number"`
	Spending     float64 `json:"spending"`
	Contribution float64 `json:"contribution"`
	Growth       float64 `json:"growth"`
}

// ProjectionResult is the deterministic projection for one jurisdiction.
type ProjectionResult struct {
	Jurisdiction                 string         `json:"jurisdiction"`
	YearsUntilFire               int            `json:"years_until_fire"`
	CrossingYear                 float64        `json:"crossing_year"`
	RetirementAge                int            `json:"retirement_age"`
	FireNumber                   float64        `json:"fire_number"`
	FireNumberToday              float64        `json:"fire_number_today"`
	LocalCurrency                string         `json:"local_currency,omitempty"`
	LocalFireNumber              float64        `json:"local_fire_number,omitempty"`
	EffectiveReturn              float64        `json:"effective_return"`
	EffectiveIncomeTaxRate       float64        `json:"effective_income_tax_rate"`
	EffectiveCapitalGainsTaxRate float64        `json:"effective_capital_gains_tax_rate"`
	CostOfLiving                 float64        `json:"cost_of_living"`
	HorizonYears                 int            `json:"horizon_years"`
	Trajectory                   []YearSnapshot `json:"trajectory"`
}

// Reachable reports whether the FIRE number is hit within the horizon.
func (r ProjectionResult) Reachable() bool {
	return r.YearsUntilFire != NeverFire
}

// PercentileBand holds rank-based percentiles of net worth across trials.
type PercentileBand struct {
	Year int     `json:"year"`
	P10  float64 `json:"p10"`
	P25  float64 `json:"p25"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P90  float64 `json:"p90"`
}

// SimulationResult aggregates a Monte Carlo run for one jurisdiction.
type SimulationResult struct {
	Jurisdiction         string           `json:"jurisdiction"`
	SuccessProbability   float64          `json:"success_probability"`
	Trials               int              `json:"trials"`
	HorizonYears         int              `json:"horizon_years"`
	Seed                 int64            `json:"seed"`
	ReturnVolatility     float64          `json:"return_volatility"`
	Sampler              string           `json:"sampler"`
	MedianYearsUntilFire int              `json:"median_years_until_fire"`
	Bands                []PercentileBand `json:"bands"`
	FinalNetWorth        PercentileBand   `json:"final_net_worth"`
}

// Winner identifies a side of a comparison.
type Winner string

const (
	SideA Winner = "A"
	SideB Winner = "B"
)

// Reason explains why the winner was selected.
type Reason string

const (
	ReasonEarlierRetirement Reason = "earlierRetirement"
	ReasonLowerFireNumber   Reason = "lowerFireNumber"
)

// ComparisonResult is the outcome of comparing two jurisdictions.
type ComparisonResult struct {
	A           ProjectionResult  `json:"a"`
	B           ProjectionResult  `json:"b"`
	Winner      Winner            `json:"winner"`
	Reason      Reason            `json:"reason"`
	SimulationA *SimulationResult `json:"simulation_a,omitempty"`
	SimulationB *SimulationResult `json:"simulation_b,omitempty"`
}

// WinnerResult returns the projection of the winning side.
func (c ComparisonResult) WinnerResult() ProjectionResult {
	if c.Winner == SideB {
		return c.B
	}
	return c.A
}

// ComparisonReport is what the formatting layer renders.
type ComparisonReport struct {
	Request     ComparisonRequest `json:"request"`
	Result      ComparisonResult  `json:"result"`
	Warnings    []string          `json:"warnings,omitempty"`
	Assumptions []string          `json:"assumptions,omitempty"`
	RatesAsOf   string            `json:"rates_as_of,omitempty"`
}
