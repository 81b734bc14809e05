package output

import (
	"bytes"
	"encoding/csv"
	"errors"

	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/rpgo/fire-compare/pkg/decimal"
)

// ErrNoSimulation is returned by formatters that need Monte Carlo results.
var ErrNoSimulation = errors.New("report has no simulation results")

// BandsCSVFormatter exports the Monte Carlo percentile bands per side and year.
type BandsCSVFormatter struct{}

func (b BandsCSVFormatter) Name() string { return "bands-csv" }

func (b BandsCSVFormatter) Format(report *domain.ComparisonReport) ([]byte, error) {
	res := report.Result
	if res.SimulationA == nil || res.SimulationB == nil {
		return nil, ErrNoSimulation
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Side", "Jurisdiction", "Year", "P10", "P25", "P50", "P75", "P90"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, side := range []struct {
		label domain.Winner
		sim   *domain.SimulationResult
	}{{domain.SideA, res.SimulationA}, {domain.SideB, res.SimulationB}} {
		for _, band := range side.sim.Bands {
			row := []string{
				string(side.label),
				side.sim.Jurisdiction,
				intToString(band.Year),
				decimal.NewMoney(band.P10).String(),
				decimal.NewMoney(band.P25).String(),
				decimal.NewMoney(band.P50).String(),
				decimal.NewMoney(band.P75).String(),
				decimal.NewMoney(band.P90).String(),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
