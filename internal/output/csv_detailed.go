package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/rpgo/fire-compare/pkg/decimal"
)

// CSVDetailedExporter provides the yearly trajectory per side.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(report *domain.ComparisonReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Side", "Jurisdiction", "Year", "Age", "NetWorth", "FireNumber", "Spending", "Contribution", "Growth", "IsFire"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	res := report.Result
	for _, side := range []struct {
		label domain.Winner
		r     domain.ProjectionResult
	}{{domain.SideA, res.A}, {domain.SideB, res.B}} {
		for _, yr := range side.r.Trajectory {
			row := []string{
				string(side.label),
				side.r.Jurisdiction,
				intToString(yr.Year),
				intToString(yr.Age),
				decimal.NewMoney(yr.NetWorth).String(),
				decimal.NewMoney(yr.FireNumber).String(),
				decimal.NewMoney(yr.Spending).String(),
				decimal.NewMoney(yr.Contribution).String(),
				decimal.NewMoney(yr.Growth).String(),
				boolToString(yr.NetWorth >= yr.FireNumber),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
