package jurisdiction

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/rpgo/fire-compare/pkg/dateutil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

//go:embed data/rates.yaml
var defaultRatesYAML []byte

// RateTable is a versioned exchange-rate snapshot. Rates are units of each
// currency per one unit of Base.
type RateTable struct {
	AsOf  string                     `yaml:"as_of"`
	Base  string                     `yaml:"base"`
	Rates map[string]decimal.Decimal `yaml:"rates"`
}

// DefaultRates returns the snapshot bundled with the binary.
func DefaultRates() (*RateTable, error) {
	return ParseRates(defaultRatesYAML)
}

// LoadRatesFile reads a rate snapshot from a YAML file.
func LoadRatesFile(path string) (*RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return ParseRates(data)
}

// ParseRates decodes and validates a rate snapshot.
func ParseRates(data []byte) (*RateTable, error) {
	var raw RateTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw.Base == "" {
		return nil, fmt.Errorf("rate table has no base currency")
	}
	if raw.AsOf != "" {
		if _, err := dateutil.ParseDate(raw.AsOf); err != nil {
			return nil, fmt.Errorf("invalid as_of: %w", err)
		}
	}

	t := &RateTable{AsOf: raw.AsOf, Rates: make(map[string]decimal.Decimal, len(raw.Rates)+1)}
	base, err := currency.ParseISO(raw.Base)
	if err != nil {
		return nil, fmt.Errorf("invalid base currency %q: %w", raw.Base, err)
	}
	t.Base = base.String()

	for code, rate := range raw.Rates {
		unit, err := currency.ParseISO(code)
		if err != nil {
			return nil, fmt.Errorf("invalid currency %q: %w", code, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive, got %s", code, rate)
		}
		t.Rates[unit.String()] = rate
	}
	t.Rates[t.Base] = decimal.NewFromInt(1)
	return t, nil
}

// Rate returns how many units of `to` one unit of `from` buys.
func (t *RateTable) Rate(from, to string) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return 1, nil
	}
	fromRate, ok := t.Rates[from]
	if !ok {
		return 0, fmt.Errorf("%s: %w", from, domain.ErrMissingExchangeRate)
	}
	toRate, ok := t.Rates[to]
	if !ok {
		return 0, fmt.Errorf("%s: %w", to, domain.ErrMissingExchangeRate)
	}
	return toRate.Div(fromRate).InexactFloat64(), nil
}

// Snapshot returns the as-of date of the rates.
func (t *RateTable) Snapshot() string {
	return t.AsOf
}
