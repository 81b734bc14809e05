package calculation

import (
	"fmt"

	"github.com/rpgo/fire-compare/internal/domain"
)

// Side is one candidate in a comparison.
type Side struct {
	Profile domain.FinancialProfile
	Tax     *domain.JurisdictionTaxProfile
}

// SelectWinner applies the tie-break rules to two projections:
// fewer years wins, then the smaller-or-equal FIRE number, then side A.
func SelectWinner(a, b domain.ProjectionResult) (domain.Winner, domain.Reason) {
	if a.YearsUntilFire != b.YearsUntilFire {
		if a.YearsUntilFire < b.YearsUntilFire {
			return domain.SideA, domain.ReasonEarlierRetirement
		}
		return domain.SideB, domain.ReasonEarlierRetirement
	}
	if a.FireNumber <= b.FireNumber {
		return domain.SideA, domain.ReasonLowerFireNumber
	}
	return domain.SideB, domain.ReasonLowerFireNumber
}

// Compare projects both sides and picks a winner.
func Compare(a, b Side, opts ...ProjectionOption) (domain.ComparisonResult, error) {
	resultA, err := Project(a.Profile, a.Tax, opts...)
	if err != nil {
		return domain.ComparisonResult{}, fmt.Errorf("side A: %w", err)
	}
	resultB, err := Project(b.Profile, b.Tax, opts...)
	if err != nil {
		return domain.ComparisonResult{}, fmt.Errorf("side B: %w", err)
	}

	winner, reason := SelectWinner(resultA, resultB)
	return domain.ComparisonResult{
		A:      resultA,
		B:      resultB,
		Winner: winner,
		Reason: reason,
	}, nil
}

// CompareWithSimulation runs Compare and attaches a Monte Carlo result to each side.
// The winner is still decided by the deterministic projections.
func CompareWithSimulation(a, b Side, sim *MonteCarloSimulator, cfg SimulationConfig, opts ...ProjectionOption) (domain.ComparisonResult, error) {
	result, err := Compare(a, b, opts...)
	if err != nil {
		return result, err
	}
	if sim == nil {
		sim = NewMonteCarloSimulator()
	}

	simA, err := sim.Simulate(a.Profile, a.Tax, cfg)
	if err != nil {
		return domain.ComparisonResult{}, fmt.Errorf("simulate side A: %w", err)
	}
	simB, err := sim.Simulate(b.Profile, b.Tax, cfg)
	if err != nil {
		return domain.ComparisonResult{}, fmt.Errorf("simulate side B: %w", err)
	}
	result.SimulationA = &simA
	result.SimulationB = &simB
	return result, nil
}
