package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpgo/fire-compare/internal/calculation"
	"github.com/rpgo/fire-compare/internal/config"
	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/rpgo/fire-compare/internal/jurisdiction"
	"github.com/rpgo/fire-compare/internal/logging"
	"github.com/rpgo/fire-compare/internal/output"
	"github.com/rpgo/fire-compare/internal/share"
	"github.com/rpgo/fire-compare/pkg/dateutil"
	"go.uber.org/zap"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	settingsPath string
	logLevel     string
	format       string
	out          string
}

// staleRatesDays is the snapshot age after which a warning is logged.
const staleRatesDays = 365

// app holds everything a subcommand needs after settings are loaded.
type app struct {
	settings *config.Settings
	logger   *zap.Logger
	events   logging.EventSink
	runID    string
	flags    *globalFlags
}

func newApp(flags *globalFlags) (*app, error) {
	settings, err := config.LoadSettings(flags.settingsPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(settings.Logging, flags.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a := &app{
		settings: settings,
		runID:    uuid.NewString(),
		flags:    flags,
	}
	a.logger = logger.With(zap.String("run_id", a.runID))
	a.events = logging.NewZapSink(a.logger)

	for _, w := range settings.Validate() {
		a.logger.Warn("settings warning: "+w, zap.String("op", "main"))
	}
	return a, nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// engine builds a calculation engine over the bundled or overridden data files.
func (a *app) engine() (*calculation.CalculationEngine, error) {
	data := a.settings.Data

	table, err := jurisdiction.Default()
	if data.Jurisdictions != "" {
		table, err = jurisdiction.LoadFile(data.Jurisdictions)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load jurisdictions: %w", err)
	}

	rates, err := jurisdiction.DefaultRates()
	if data.Rates != "" {
		rates, err = jurisdiction.LoadRatesFile(data.Rates)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange rates: %w", err)
	}

	if age, err := dateutil.SnapshotAge(rates.Snapshot(), time.Now()); err == nil && age > staleRatesDays {
		a.logger.Warn("exchange rate snapshot is stale",
			zap.String("op", "main"),
			zap.String("as_of", rates.Snapshot()),
			zap.Int("age_days", age),
		)
	}

	eng := calculation.NewCalculationEngine(table, rates)
	eng.Simulator = calculation.NewMonteCarloSimulator(calculation.WithWorkers(a.settings.Simulation.Workers))
	if data.Returns != "" {
		series, err := calculation.LoadReturnSeriesFile(data.Returns)
		if err != nil {
			return nil, fmt.Errorf("failed to load return series: %w", err)
		}
		eng.ReturnSeries = series
	}
	eng.SetLogger(logging.NewCalculationLogger(a.logger))

	a.logger.Debug("engine ready",
		zap.String("op", "main"),
		zap.String("jurisdictions_version", table.Version),
		zap.String("rates_as_of", rates.Snapshot()),
	)
	return eng, nil
}

// loadRequest reads a request from a share string, a YAML file, or neither
// (the built-in example).
func (a *app) loadRequest(path, shareString string) (*domain.ComparisonRequest, error) {
	parser := config.NewInputParser()
	var req *domain.ComparisonRequest
	switch {
	case shareString != "" && path != "":
		return nil, fmt.Errorf("use either a request file or --share, not both")
	case shareString != "":
		decoded, err := share.Decode(shareString)
		if err != nil {
			return nil, err
		}
		if err := parser.ValidateRequest(&decoded); err != nil {
			return nil, fmt.Errorf("request validation failed: %w", err)
		}
		req = &decoded
	case path != "":
		loaded, err := parser.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		req = loaded
	default:
		req = parser.CreateExampleRequest()
		a.logger.Info("no request given, using the built-in example", zap.String("op", "main"))
	}

	for _, w := range parser.Warnings(req) {
		a.logger.Warn("request warning: "+w, zap.String("op", "main"))
	}
	a.applyDefaults(req)
	return req, nil
}

// applyDefaults fills request fields the user left empty from settings.
// A volatility set to zero in the request is kept.
func (a *app) applyDefaults(req *domain.ComparisonRequest) {
	if req.Locale == "" {
		req.Locale = a.settings.Output.Locale
	}
	sim := &req.Simulation
	defaults := a.settings.Simulation
	if sim.Trials == 0 {
		sim.Trials = defaults.Trials
	}
	if sim.HorizonYears == 0 {
		sim.HorizonYears = defaults.HorizonYears
	}
	if sim.ReturnVolatility == nil {
		volatility := defaults.ReturnVolatility
		sim.ReturnVolatility = &volatility
	}
}

func (a *app) format() string {
	if a.flags.format != "" {
		return a.flags.format
	}
	if a.settings.Output.Format != "" {
		return a.settings.Output.Format
	}
	return "console"
}

// writeReport renders to stdout, to the --out file, or into the --out
// directory (or the settings output directory) under a timestamped name.
func (a *app) writeReport(w io.Writer, report *domain.ComparisonReport) (string, error) {
	format := a.format()
	target := a.flags.out
	if target == "" && a.settings.Output.Directory != "" {
		target = a.settings.Output.Directory + string(filepath.Separator)
	}
	if target == "" {
		return "", output.GenerateReport(w, report, format)
	}

	if isDir(target) {
		dir := strings.TrimRight(target, `/\`)
		if dir == "" {
			dir = string(filepath.Separator)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
		return output.SaveReport(report, format, dir)
	}

	f, err := output.ResolveFormatter(format)
	if err != nil {
		return "", err
	}
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", target, err)
	}
	return target, nil
}

func isDir(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
