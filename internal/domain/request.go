package domain

import "errors"

var (
	// ErrMissingJurisdictionData means no tax or cost profile was supplied for a side.
	ErrMissingJurisdictionData = errors.New("missing jurisdiction data")
	// ErrMissingExchangeRate means a required currency pair has no rate in the snapshot.
	ErrMissingExchangeRate = errors.New("missing exchange rate")
)

// Sampler names understood by the simulator factory.
const (
	SamplerNormal     = "normal"
	SamplerHistorical = "historical"
)

// SideInput is one side of a comparison request as read from a file or share string.
type SideInput struct {
	Jurisdiction string           `yaml:"jurisdiction" json:"jurisdiction"`
	Profile      FinancialProfile `yaml:"profile" json:"profile"`
}

// SimulationSettings configures the optional Monte Carlo pass.
type SimulationSettings struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	Trials           int      `yaml:"trials,omitempty" json:"trials,omitempty"`
	HorizonYears     int      `yaml:"horizon_years,omitempty" json:"horizon_years,omitempty"`
	ReturnVolatility *float64 `yaml:"return_volatility,omitempty" json:"return_volatility,omitempty"`
	Seed             int64    `yaml:"seed,omitempty" json:"seed,omitempty"`
	Sampler          string   `yaml:"sampler,omitempty" json:"sampler,omitempty"`
}

// Volatility returns the configured return volatility, or zero when unset.
func (s SimulationSettings) Volatility() float64 {
	if s.ReturnVolatility == nil {
		return 0
	}
	return *s.ReturnVolatility
}

// ComparisonRequest is the full input boundary of a comparison.
type ComparisonRequest struct {
	BaseCurrency     string             `yaml:"base_currency,omitempty" json:"base_currency,omitempty"`
	HomeJurisdiction string             `yaml:"home_jurisdiction,omitempty" json:"home_jurisdiction,omitempty"`
	Locale           string             `yaml:"locale,omitempty" json:"locale,omitempty"`
	A                SideInput          `yaml:"a" json:"a"`
	B                SideInput          `yaml:"b" json:"b"`
	Simulation       SimulationSettings `yaml:"simulation,omitempty" json:"simulation,omitempty"`
}
