package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/rpgo/fire-compare/pkg/decimal"
)

// ConsoleVerboseFormatter renders the detailed console report via the pluggable interface.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(report *domain.ComparisonReport) ([]byte, error) {
	var buf bytes.Buffer
	cur, loc := report.Request.BaseCurrency, report.Request.Locale
	res := report.Result

	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintln(&buf, "FIRE JURISDICTION COMPARISON")
	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range GenerateAssumptions(report) {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	writeSide(&buf, "A", report.Request.A, res.A, cur, loc)
	writeSide(&buf, "B", report.Request.B, res.B, cur, loc)

	if res.SimulationA != nil && res.SimulationB != nil {
		fmt.Fprintln(&buf, "MONTE CARLO")
		fmt.Fprintln(&buf, strings.Repeat("=", 50))
		writeSimulation(&buf, "A", res.SimulationA, cur, loc)
		writeSimulation(&buf, "B", res.SimulationB, cur, loc)
		fmt.Fprintln(&buf)
	}

	h := AnalyzeComparison(report)
	fmt.Fprintln(&buf, "RECOMMENDATION")
	fmt.Fprintln(&buf, strings.Repeat("=", 50))
	fmt.Fprintf(&buf, "Side %s (%s) %s.\n", h.Winner, h.Jurisdiction, h.Reason)
	if h.YearsSaved > 0 {
		fmt.Fprintf(&buf, "Retire %s sooner, at age %s instead of %s.\n", FormatYears(h.YearsSaved), FormatAge(h.Winning), FormatAge(h.Losing))
	}
	if h.FireNumberGap.IsPositive() {
		fmt.Fprintf(&buf, "FIRE number is %s lower (%s).\n", FormatCurrency(h.FireNumberGap.Float64(), cur, loc), FormatPercentage(h.GapPercent))
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "INPUT WARNINGS:")
		for _, w := range report.Warnings {
			fmt.Fprintf(&buf, "• %s\n", w)
		}
	}
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, Disclaimer)
	return buf.Bytes(), nil
}

func writeSide(buf *bytes.Buffer, label string, in domain.SideInput, r domain.ProjectionResult, cur, loc string) {
	fmt.Fprintf(buf, "SIDE %s: %s\n", label, r.Jurisdiction)
	fmt.Fprintln(buf, strings.Repeat("=", 50))
	fmt.Fprintf(buf, "  Years until FIRE:        %s\n", FormatYears(r.YearsUntilFire))
	fmt.Fprintf(buf, "  Retirement age:          %s\n", FormatAge(r))
	fmt.Fprintf(buf, "  FIRE number:             %s\n", FormatCurrency(r.FireNumber, cur, loc))
	fmt.Fprintf(buf, "  FIRE number today:       %s\n", FormatCurrency(r.FireNumberToday, cur, loc))
	if r.LocalCurrency != "" && r.LocalCurrency != cur {
		fmt.Fprintf(buf, "  FIRE number (local):     %s\n", FormatCurrency(r.LocalFireNumber, r.LocalCurrency, loc))
	}
	monthly := decimal.NewMoney(in.Profile.AnnualSpending * r.CostOfLiving).Monthly()
	fmt.Fprintf(buf, "  Monthly spending (adj.): %s\n", FormatCurrency(monthly.Float64(), cur, loc))
	fmt.Fprintf(buf, "  Income tax rate:         %s\n", FormatPercentage(r.EffectiveIncomeTaxRate))
	fmt.Fprintf(buf, "  Capital gains tax rate:  %s\n", FormatPercentage(r.EffectiveCapitalGainsTaxRate))
	fmt.Fprintf(buf, "  After-tax return:        %s\n", FormatPercentage(r.EffectiveReturn))
	fmt.Fprintf(buf, "  Cost of living:          %.2fx\n", r.CostOfLiving)
	fmt.Fprintln(buf)

	fmt.Fprintf(buf, "  %-5s %-4s %18s %18s %16s\n", "Year", "Age", "Net Worth", "FIRE Number", "Growth")
	for _, y := range r.Trajectory {
		marker := ""
		if y.Year == r.YearsUntilFire {
			marker = " <- FIRE"
		}
		fmt.Fprintf(buf, "  %-5d %-4d %18s %18s %16s%s\n", y.Year, y.Age,
			FormatCurrency(y.NetWorth, "", loc),
			FormatCurrency(y.FireNumber, "", loc),
			FormatCurrency(y.Growth, "", loc),
			marker)
	}
	fmt.Fprintln(buf)
}

func writeSimulation(buf *bytes.Buffer, label string, s *domain.SimulationResult, cur, loc string) {
	fmt.Fprintf(buf, "%s %s: success %s over %d years, median %s\n",
		label, s.Jurisdiction, FormatPercentage(s.SuccessProbability), s.HorizonYears, FormatYears(s.MedianYearsUntilFire))
	f := s.FinalNetWorth
	fmt.Fprintf(buf, "  final net worth P10 %s  P50 %s  P90 %s\n",
		FormatCurrency(f.P10, cur, loc), FormatCurrency(f.P50, cur, loc), FormatCurrency(f.P90, cur, loc))
}
