package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rpgo/fire-compare/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of comparison request files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a comparison request from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.ComparisonRequest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes a request document. Unknown keys are rejected so that a
// misspelled field does not silently fall back to its default.
func (ip *InputParser) Parse(data []byte) (*domain.ComparisonRequest, error) {
	var req domain.ComparisonRequest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateRequest(&req); err != nil {
		return nil, fmt.Errorf("request validation failed: %w", err)
	}
	return &req, nil
}

// ValidateRequest checks the structural requirements of a request.
// Out-of-range numbers are not errors; see Warnings.
func (ip *InputParser) ValidateRequest(req *domain.ComparisonRequest) error {
	if strings.TrimSpace(req.A.Jurisdiction) == "" {
		return fmt.Errorf("side a: jurisdiction is required")
	}
	if strings.TrimSpace(req.B.Jurisdiction) == "" {
		return fmt.Errorf("side b: jurisdiction is required")
	}
	if c := req.BaseCurrency; c != "" && len(c) != 3 {
		return fmt.Errorf("base_currency must be a 3-letter code, got %q", c)
	}
	return nil
}

// Warnings lists every input value the engine will clamp or replace.
func (ip *InputParser) Warnings(req *domain.ComparisonRequest) []string {
	var warnings []string
	for _, side := range []struct {
		label string
		in    domain.SideInput
	}{{"a", req.A}, {"b", req.B}} {
		_, w := side.in.Profile.Normalize()
		for _, msg := range w {
			warnings = append(warnings, fmt.Sprintf("%s.profile: %s", side.label, msg))
		}
	}

	sim := req.Simulation
	switch strings.ToLower(sim.Sampler) {
	case "", domain.SamplerNormal, domain.SamplerHistorical:
	default:
		warnings = append(warnings, fmt.Sprintf("simulation.sampler %q is not supported, normal is used", sim.Sampler))
	}
	if sim.Trials < 0 {
		warnings = append(warnings, fmt.Sprintf("simulation.trials %d replaced with the default", sim.Trials))
	}
	if v := sim.Volatility(); v < 0 {
		warnings = append(warnings, fmt.Sprintf("simulation.return_volatility %v replaced with 0", v))
	}
	return warnings
}

// SaveToFile writes a request as YAML.
func (ip *InputParser) SaveToFile(req *domain.ComparisonRequest, filename string) error {
	data, err := yaml.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

// CreateExampleRequest creates an example comparison request
func (ip *InputParser) CreateExampleRequest() *domain.ComparisonRequest {
	inflation := 0.025
	volatility := 0.15
	profile := domain.FinancialProfile{
		Age:                32,
		NetWorth:           180000,
		AnnualContribution: 30000,
		ContributionRate:   0.05,
		GrossIncome:        120000,
		ExpectedReturn:     0.07,
		AnnualSpending:     48000,
		SafeWithdrawalRate: 0.04,
		InflationRate:      &inflation,
	}

	return &domain.ComparisonRequest{
		BaseCurrency:     "USD",
		HomeJurisdiction: "US-CA",
		Locale:           "en-US",
		A:                domain.SideInput{Jurisdiction: "US-CA", Profile: profile},
		B:                domain.SideInput{Jurisdiction: "PT", Profile: profile},
		Simulation: domain.SimulationSettings{
			Enabled:          true,
			Trials:           1000,
			HorizonYears:     60,
			ReturnVolatility: &volatility,
			Seed:             42,
			Sampler:          domain.SamplerNormal,
		},
	}
}
