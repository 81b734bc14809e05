package output

import (
	"fmt"

	"github.com/rpgo/fire-compare/internal/domain"
)

// DefaultAssumptions lists the modeling assumptions rendered when a report carries none.
var DefaultAssumptions = []string{
	"Flat effective tax rates; no brackets, credits or tax-advantaged accounts",
	"Investment growth is taxed at the capital gains rate as it accrues",
	"FIRE number is inflated each year at the profile inflation rate",
	"Years until FIRE are whole years, rounded up",
	"Exchange rates and tax tables are static snapshots, not live data",
}

// Disclaimer is printed at the end of every human-readable report.
const Disclaimer = "Illustrative projection only. Not tax, legal or investment advice."

// GenerateAssumptions returns the assumptions for a report, adding the rate snapshot date.
func GenerateAssumptions(report *domain.ComparisonReport) []string {
	assumptions := append([]string(nil), report.Assumptions...)
	if len(assumptions) == 0 {
		assumptions = append(assumptions, DefaultAssumptions...)
	}
	if report.RatesAsOf != "" {
		assumptions = append(assumptions, fmt.Sprintf("Exchange rates as of %s", report.RatesAsOf))
	}
	return assumptions
}
