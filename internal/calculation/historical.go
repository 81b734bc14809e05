package calculation

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ReturnPoint is one year of a historical return series.
type ReturnPoint struct {
	Year   int             `json:"year"`
	Return decimal.Decimal `json:"return"`
}

// ReturnStatistics summarizes a return series.
type ReturnStatistics struct {
	Mean         decimal.Decimal `json:"mean"`
	Median       decimal.Decimal `json:"median"`
	StdDev       decimal.Decimal `json:"std_dev"`
	Min          decimal.Decimal `json:"min"`
	Max          decimal.Decimal `json:"max"`
	Count        int             `json:"count"`
	MissingYears []int           `json:"missing_years"`
}

// ReturnSeries is an annual nominal return history used by BootstrapSampler.
type ReturnSeries struct {
	Name       string           `json:"name"`
	Source     string           `json:"source"`
	Points     []ReturnPoint    `json:"points"`
	MinYear    int              `json:"min_year"`
	MaxYear    int              `json:"max_year"`
	Statistics ReturnStatistics `json:"statistics"`
}

//go:embed data/equity-annual-returns.csv
var defaultReturnsCSV []byte

// DefaultReturnSeries returns the bundled US large-cap total return history.
func DefaultReturnSeries() (*ReturnSeries, error) {
	return LoadReturnSeries(bytes.NewReader(defaultReturnsCSV), "us-large-cap", "S&P 500 total return")
}

// LoadReturnSeriesFile reads a "year,return" CSV from disk.
func LoadReturnSeriesFile(path string) (*ReturnSeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()
	return LoadReturnSeries(file, path, path)
}

// LoadReturnSeries parses a "year,return" CSV with a header row. Returns are
// decimal fractions (0.07 for 7%). Rows with an unparsable year or value are skipped.
func LoadReturnSeries(r io.Reader, name, source string) (*ReturnSeries, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("invalid CSV format: expected at least 2 columns")
	}

	var points []ReturnPoint
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			continue
		}
		value, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			continue
		}
		points = append(points, ReturnPoint{Year: year, Return: value})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no valid data points found in %s", name)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })

	return &ReturnSeries{
		Name:       name,
		Source:     source,
		Points:     points,
		MinYear:    points[0].Year,
		MaxYear:    points[len(points)-1].Year,
		Statistics: calculateStatistics(points),
	}, nil
}

// Returns lists the series values as float64 in year order.
func (rs *ReturnSeries) Returns() []float64 {
	out := make([]float64, len(rs.Points))
	for i, p := range rs.Points {
		out[i] = p.Return.InexactFloat64()
	}
	return out
}

// Sampler builds a bootstrap sampler over this series.
func (rs *ReturnSeries) Sampler(recenter bool) BootstrapSampler {
	return BootstrapSampler{Returns: rs.Returns(), Recenter: recenter}
}

// Summary describes the series and its statistics in one line.
func (rs *ReturnSeries) Summary() string {
	st := rs.Statistics
	pct := func(d decimal.Decimal) string { return d.Shift(2).StringFixed(1) + "%" }
	out := fmt.Sprintf("%s %d-%d: %d years, mean %s, median %s, std dev %s, range %s to %s",
		rs.Source, rs.MinYear, rs.MaxYear, st.Count, pct(st.Mean), pct(st.Median), pct(st.StdDev), pct(st.Min), pct(st.Max))
	if len(st.MissingYears) > 0 {
		out += fmt.Sprintf(" (missing %v)", st.MissingYears)
	}
	return out
}

func calculateStatistics(points []ReturnPoint) ReturnStatistics {
	n := decimal.NewFromInt(int64(len(points)))

	var sum decimal.Decimal
	values := make([]decimal.Decimal, len(points))
	for i, p := range points {
		sum = sum.Add(p.Return)
		values[i] = p.Return
	}
	mean := sum.Div(n)

	var varianceSum decimal.Decimal
	for _, v := range values {
		diff := v.Sub(mean)
		varianceSum = varianceSum.Add(diff.Mul(diff))
	}
	variance := varianceSum.Div(n).InexactFloat64()

	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
	median := values[len(values)/2]
	if len(values)%2 == 0 {
		median = values[len(values)/2-1].Add(values[len(values)/2]).Div(decimal.NewFromInt(2))
	}

	var missing []int
	seen := make(map[int]bool, len(points))
	for _, p := range points {
		seen[p.Year] = true
	}
	for year := points[0].Year; year <= points[len(points)-1].Year; year++ {
		if !seen[year] {
			missing = append(missing, year)
		}
	}

	return ReturnStatistics{
		Mean:         mean,
		Median:       median,
		StdDev:       decimal.NewFromFloat(math.Sqrt(variance)),
		Min:          values[0],
		Max:          values[len(values)-1],
		Count:        len(values),
		MissingYears: missing,
	}
}
