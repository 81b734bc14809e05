package jurisdiction

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rpgo/fire-compare/internal/domain"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

//go:embed data/jurisdictions.yaml
var defaultJurisdictionsYAML []byte

// maxParentDepth bounds parent resolution so a cycle cannot loop forever.
const maxParentDepth = 4

// Entry is one row of a jurisdiction file. A sub-jurisdiction names its
// parent and inherits every field it leaves unset.
type Entry struct {
	Code                string             `yaml:"code"`
	Parent              string             `yaml:"parent,omitempty"`
	Name                string             `yaml:"name"`
	Currency            string             `yaml:"currency,omitempty"`
	IncomeTaxRate       *float64           `yaml:"income_tax_rate,omitempty"`
	CapitalGainsTaxRate *float64           `yaml:"capital_gains_tax_rate,omitempty"`
	SubJurisdictionRate *float64           `yaml:"sub_jurisdiction_rate,omitempty"`
	Composition         domain.Composition `yaml:"composition,omitempty"`
	CostOfLiving        *float64           `yaml:"cost_of_living,omitempty"`
}

type file struct {
	Version       string  `yaml:"version"`
	Jurisdictions []Entry `yaml:"jurisdictions"`
}

// Table is a static jurisdiction lookup keyed by ISO country or
// country-subdivision code (US, US-CA).
type Table struct {
	Version  string
	profiles map[string]domain.JurisdictionTaxProfile
}

// Default returns the table bundled with the binary.
func Default() (*Table, error) {
	return Parse(defaultJurisdictionsYAML)
}

// LoadFile reads a jurisdiction table from a YAML file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a jurisdiction table.
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(f.Jurisdictions) == 0 {
		return nil, fmt.Errorf("no jurisdictions defined")
	}

	entries := make(map[string]Entry, len(f.Jurisdictions))
	for _, e := range f.Jurisdictions {
		e.Code = NormalizeCode(e.Code)
		e.Parent = NormalizeCode(e.Parent)
		if e.Code == "" {
			return nil, fmt.Errorf("jurisdiction %q has no code", e.Name)
		}
		if _, dup := entries[e.Code]; dup {
			return nil, fmt.Errorf("duplicate jurisdiction code %s", e.Code)
		}
		entries[e.Code] = e
	}

	t := &Table{Version: f.Version, profiles: make(map[string]domain.JurisdictionTaxProfile, len(entries))}
	for code := range entries {
		p, err := resolve(entries, code, 0)
		if err != nil {
			return nil, err
		}
		t.profiles[code] = p
	}
	return t, nil
}

func resolve(entries map[string]Entry, code string, depth int) (domain.JurisdictionTaxProfile, error) {
	e, ok := entries[code]
	if !ok {
		return domain.JurisdictionTaxProfile{}, fmt.Errorf("unknown parent jurisdiction %s", code)
	}
	if depth > maxParentDepth {
		return domain.JurisdictionTaxProfile{}, fmt.Errorf("jurisdiction %s: parent chain too deep", code)
	}

	var p domain.JurisdictionTaxProfile
	if e.Parent != "" {
		parent, err := resolve(entries, e.Parent, depth+1)
		if err != nil {
			return p, fmt.Errorf("jurisdiction %s: %w", code, err)
		}
		p = parent
	} else if e.IncomeTaxRate == nil || e.CapitalGainsTaxRate == nil {
		return p, fmt.Errorf("jurisdiction %s: income_tax_rate and capital_gains_tax_rate are required", code)
	}

	p.Code = e.Code
	if e.Name != "" {
		p.Name = e.Name
	}
	if e.Currency != "" {
		unit, err := currency.ParseISO(e.Currency)
		if err != nil {
			return p, fmt.Errorf("jurisdiction %s: invalid currency %q: %w", code, e.Currency, err)
		}
		p.Currency = unit.String()
	}
	if e.IncomeTaxRate != nil {
		p.IncomeTaxRate = *e.IncomeTaxRate
	}
	if e.CapitalGainsTaxRate != nil {
		p.CapitalGainsTaxRate = *e.CapitalGainsTaxRate
	}
	if e.SubJurisdictionRate != nil {
		rate := *e.SubJurisdictionRate
		p.SubJurisdictionRate = &rate
	}
	if e.Composition != "" {
		p.Composition = e.Composition
	}
	if e.CostOfLiving != nil {
		p.CostOfLiving = *e.CostOfLiving
	}
	if p.Currency == "" {
		return p, fmt.Errorf("jurisdiction %s: currency is required", code)
	}
	return p, nil
}

// NormalizeCode upper-cases a code and accepts "_" as the subdivision separator.
func NormalizeCode(code string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(code)), "_", "-")
}

// Lookup returns the tax profile for a code. Unknown codes wrap
// domain.ErrMissingJurisdictionData.
func (t *Table) Lookup(code string) (domain.JurisdictionTaxProfile, error) {
	p, ok := t.profiles[NormalizeCode(code)]
	if !ok {
		return domain.JurisdictionTaxProfile{}, fmt.Errorf("jurisdiction %q: %w", code, domain.ErrMissingJurisdictionData)
	}
	if p.SubJurisdictionRate != nil {
		rate := *p.SubJurisdictionRate
		p.SubJurisdictionRate = &rate
	}
	return p, nil
}

// List returns all profiles sorted by code.
func (t *Table) List() []domain.JurisdictionTaxProfile {
	out := make([]domain.JurisdictionTaxProfile, 0, len(t.profiles))
	for _, code := range t.Codes() {
		p, _ := t.Lookup(code)
		out = append(out, p)
	}
	return out
}

// Codes returns every known code in sorted order.
func (t *Table) Codes() []string {
	codes := make([]string, 0, len(t.profiles))
	for code := range t.profiles {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
