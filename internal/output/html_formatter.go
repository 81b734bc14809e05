package output

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/rpgo/fire-compare/internal/domain"
	"golang.org/x/text/language"
)

// HTMLFormatter produces a standalone HTML report.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Parse(htmlTemplateSource))

// bandStep thins percentile tables to every nth year.
const bandStep = 5

type htmlRow struct {
	Year, Age            int
	NetWorth, FireNumber string
	Fire                 bool
}

type htmlBand struct {
	Year          int
	P10, P50, P90 string
}

type htmlSide struct {
	Label, Jurisdiction                      string
	Years, Age, FireNumber, FireToday, Local string
	IncomeTax, CapitalGainsTax, Return       string
	CostOfLiving, Success, MedianYears       string
	Rows                                     []htmlRow
	Bands                                    []htmlBand
}

func (h HTMLFormatter) Format(report *domain.ComparisonReport) ([]byte, error) {
	cur, loc := report.Request.BaseCurrency, report.Request.Locale
	res := report.Result
	headline := AnalyzeComparison(report)

	a := buildHTMLSide("A", res.A, res.SimulationA, cur, loc)
	b := buildHTMLSide("B", res.B, res.SimulationB, cur, loc)

	gap := ""
	if headline.FireNumberGap.IsPositive() {
		gap = fmt.Sprintf("%s (%s)", FormatCurrency(headline.FireNumberGap.Float64(), cur, loc), FormatPercentage(headline.GapPercent))
	}

	lang := language.AmericanEnglish
	if tag, err := language.Parse(loc); err == nil && loc != "" {
		lang = tag
	}
	base, _ := lang.Base()

	data := struct {
		Lang          string
		Headline      Headline
		YearsSaved    string
		GapText       string
		A, B          htmlSide
		Sides         []htmlSide
		HasSimulation bool
		Assumptions   []string
		Warnings      []string
		Disclaimer    string
	}{
		Lang:          base.String(),
		Headline:      headline,
		YearsSaved:    FormatYears(headline.YearsSaved),
		GapText:       gap,
		A:             a,
		B:             b,
		Sides:         []htmlSide{a, b},
		HasSimulation: res.SimulationA != nil && res.SimulationB != nil,
		Assumptions:   GenerateAssumptions(report),
		Warnings:      report.Warnings,
		Disclaimer:    Disclaimer,
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildHTMLSide(label string, r domain.ProjectionResult, sim *domain.SimulationResult, cur, loc string) htmlSide {
	s := htmlSide{
		Label:           label,
		Jurisdiction:    r.Jurisdiction,
		Years:           FormatYears(r.YearsUntilFire),
		Age:             FormatAge(r),
		FireNumber:      FormatCurrency(r.FireNumber, cur, loc),
		FireToday:       FormatCurrency(r.FireNumberToday, cur, loc),
		Local:           "-",
		IncomeTax:       FormatPercentage(r.EffectiveIncomeTaxRate),
		CapitalGainsTax: FormatPercentage(r.EffectiveCapitalGainsTaxRate),
		Return:          FormatPercentage(r.EffectiveReturn),
		CostOfLiving:    fmt.Sprintf("%.2fx", r.CostOfLiving),
	}
	if r.LocalCurrency != "" {
		s.Local = FormatCurrency(r.LocalFireNumber, r.LocalCurrency, loc)
	}
	for _, y := range r.Trajectory {
		s.Rows = append(s.Rows, htmlRow{
			Year:       y.Year,
			Age:        y.Age,
			NetWorth:   FormatCurrency(y.NetWorth, cur, loc),
			FireNumber: FormatCurrency(y.FireNumber, cur, loc),
			Fire:       y.Year == r.YearsUntilFire,
		})
	}
	if sim != nil {
		s.Success = FormatPercentage(sim.SuccessProbability)
		s.MedianYears = FormatYears(sim.MedianYearsUntilFire)
		for i, band := range sim.Bands {
			if i%bandStep != 0 && i != len(sim.Bands)-1 {
				continue
			}
			s.Bands = append(s.Bands, htmlBand{
				Year: band.Year,
				P10:  FormatCurrency(band.P10, cur, loc),
				P50:  FormatCurrency(band.P50, cur, loc),
				P90:  FormatCurrency(band.P90, cur, loc),
			})
		}
	}
	return s
}
