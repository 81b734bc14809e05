package output_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/rpgo/fire-compare/internal/calculation"
	"github.com/rpgo/fire-compare/internal/config"
	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/rpgo/fire-compare/internal/jurisdiction"
	"github.com/rpgo/fire-compare/internal/output"
)

func exampleReport(t *testing.T) *domain.ComparisonReport {
	t.Helper()
	return runExample(t, func(*domain.ComparisonRequest) {})
}

func runExample(t *testing.T, edit func(*domain.ComparisonRequest)) *domain.ComparisonReport {
	t.Helper()
	table, err := jurisdiction.Default()
	if err != nil {
		t.Fatalf("load jurisdictions: %v", err)
	}
	rates, err := jurisdiction.DefaultRates()
	if err != nil {
		t.Fatalf("load rates: %v", err)
	}
	req := config.NewInputParser().CreateExampleRequest()
	req.Simulation.Trials = 200
	edit(req)

	report, err := calculation.NewCalculationEngine(table, rates).Run(context.Background(), *req)
	if err != nil {
		t.Fatalf("run comparison: %v", err)
	}
	return report
}

func TestGenerateReportAllFormats(t *testing.T) {
	report := exampleReport(t)
	for _, name := range output.AvailableFormatterNames() {
		var buf bytes.Buffer
		if err := output.GenerateReport(&buf, report, name); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if buf.Len() == 0 {
			t.Fatalf("%s: empty output", name)
		}
	}
}

func TestGenerateReportUnknownFormat(t *testing.T) {
	err := output.GenerateReport(&bytes.Buffer{}, exampleReport(t), "xml")
	if !errors.Is(err, output.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), "Try one of:") || !strings.Contains(err.Error(), "console-lite") {
		t.Fatalf("error should list formats: %v", err)
	}
}

func TestGenerateReportWrapsFormatterError(t *testing.T) {
	report := exampleReport(t)
	report.Result.SimulationA = nil
	err := output.GenerateReport(&bytes.Buffer{}, report, "bands")
	if !errors.Is(err, output.ErrNoSimulation) {
		t.Fatalf("expected ErrNoSimulation, got %v", err)
	}
}

func TestSaveReport(t *testing.T) {
	dir := t.TempDir()
	path, err := output.SaveReport(exampleReport(t), "html-report", dir)
	if err != nil {
		t.Fatalf("SaveReport error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(data), "<!DOCTYPE html>") {
		t.Fatalf("expected HTML document")
	}
	if _, err := output.SaveReport(exampleReport(t), "nope", dir); !errors.Is(err, output.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExampleReportIsDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	if err := output.GenerateReport(&first, exampleReport(t), "json"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := output.GenerateReport(&second, exampleReport(t), "json"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("seeded comparison produced different reports")
	}
}

func TestGenerateReportOverflowingSpending(t *testing.T) {
	report := runExample(t, func(req *domain.ComparisonRequest) {
		req.A.Profile.AnnualSpending = 1e308
		req.A.Profile.SafeWithdrawalRate = 1e-300
	})
	for _, name := range output.AvailableFormatterNames() {
		if err := output.GenerateReport(&bytes.Buffer{}, report, name); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}

	var buf bytes.Buffer
	if err := output.GenerateReport(&buf, report, "json"); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded struct {
		Result struct {
			A struct {
				FireNumber float64 `json:"fire_number"`
			} `json:"a"`
		} `json:"result"`
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Result.A.FireNumber != math.MaxFloat64 {
		t.Fatalf("expected FIRE number pinned at MaxFloat64, got %v", decoded.Result.A.FireNumber)
	}
	if !strings.Contains(strings.Join(decoded.Warnings, "\n"), "A: annual_spending 1e+308 clamped to 1e+15") {
		t.Fatalf("missing clamp warning in %v", decoded.Warnings)
	}

	buf.Reset()
	if err := output.GenerateReport(&buf, report, "csv"); err != nil {
		t.Fatalf("csv: %v", err)
	}
	if !strings.Contains(buf.String(), ",179769313486231570") {
		t.Fatalf("csv should carry the pinned FIRE number:\n%s", buf.String())
	}
}
