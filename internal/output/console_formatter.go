package output

import (
	"bytes"
	"fmt"

	"github.com/rpgo/fire-compare/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(report *domain.ComparisonReport) ([]byte, error) {
	var buf bytes.Buffer
	cur, loc := report.Request.BaseCurrency, report.Request.Locale
	res := report.Result

	fmt.Fprintln(&buf, "FIRE COMPARISON SUMMARY")
	fmt.Fprintln(&buf, "================================")
	for _, side := range []struct {
		label string
		r     domain.ProjectionResult
	}{{"A", res.A}, {"B", res.B}} {
		fmt.Fprintf(&buf, "%s %-6s FIRE in %-12s FIRE number %s  retire at %s\n",
			side.label, side.r.Jurisdiction,
			FormatYears(side.r.YearsUntilFire),
			FormatCurrency(side.r.FireNumber, cur, loc),
			FormatAge(side.r))
	}

	h := AnalyzeComparison(report)
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Winner: %s (%s) %s\n", h.Winner, h.Jurisdiction, h.Reason)
	if h.YearsSaved > 0 {
		fmt.Fprintf(&buf, "  %s sooner\n", FormatYears(h.YearsSaved))
	}
	if h.FireNumberGap.IsPositive() {
		fmt.Fprintf(&buf, "  %s (%s) less needed\n", FormatCurrency(h.FireNumberGap.Float64(), cur, loc), FormatPercentage(h.GapPercent))
	}
	if sa, sb := res.SimulationA, res.SimulationB; sa != nil && sb != nil {
		fmt.Fprintf(&buf, "Success probability: A %s, B %s (%d trials)\n",
			FormatPercentage(sa.SuccessProbability), FormatPercentage(sb.SuccessProbability), sa.Trials)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(&buf, "warning: %s\n", w)
	}
	return buf.Bytes(), nil
}
