package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/rpgo/fire-compare/pkg/decimal"
)

// CSVSummarizer implements the summary CSV output (one row per side).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *domain.ComparisonReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Side", "Jurisdiction", "YearsUntilFire", "Reachable", "RetirementAge", "FireNumber", "FireNumberToday", "LocalCurrency", "LocalFireNumber", "EffectiveReturn", "IncomeTaxRate", "CapitalGainsTaxRate", "CostOfLiving", "SuccessProbability", "Winner"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	res := report.Result
	rows := []struct {
		side domain.Winner
		r    domain.ProjectionResult
		sim  *domain.SimulationResult
	}{{domain.SideA, res.A, res.SimulationA}, {domain.SideB, res.B, res.SimulationB}}
	for _, row := range rows {
		years := ""
		age := ""
		if row.r.Reachable() {
			years = intToString(row.r.YearsUntilFire)
			age = intToString(row.r.RetirementAge)
		}
		success := ""
		if row.sim != nil {
			success = FormatRate(row.sim.SuccessProbability)
		}
		winner := "false"
		if res.Winner == row.side {
			winner = "true"
		}
		record := []string{
			string(row.side),
			row.r.Jurisdiction,
			years,
			boolToString(row.r.Reachable()),
			age,
			decimal.NewMoney(row.r.FireNumber).String(),
			decimal.NewMoney(row.r.FireNumberToday).String(),
			row.r.LocalCurrency,
			decimal.NewMoney(row.r.LocalFireNumber).String(),
			FormatRate(row.r.EffectiveReturn),
			FormatRate(row.r.EffectiveIncomeTaxRate),
			FormatRate(row.r.EffectiveCapitalGainsTaxRate),
			FormatRate(row.r.CostOfLiving),
			success,
			winner,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
