package output

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/rpgo/fire-compare/internal/domain"
)

// PDFFormatter renders a printable comparison on A4.
type PDFFormatter struct{}

func (p PDFFormatter) Name() string { return "pdf" }

const (
	pdfMargin       = 15.0
	pdfContentWidth = 210.0 - 2*pdfMargin
	pdfRowHeight    = 6.0
)

type pdfReport struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	cur string
	loc string
}

func (p PDFFormatter) Format(report *domain.ComparisonReport) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(true, pdfMargin)
	doc.SetTitle("FIRE Comparison", false)

	r := &pdfReport{
		pdf: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
		cur: report.Request.BaseCurrency,
		loc: report.Request.Locale,
	}
	r.summaryPage(report)
	r.trajectoryPage("A", report.Result.A)
	r.trajectoryPage("B", report.Result.B)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfReport) heading(text string, size float64) {
	r.pdf.SetFont("Arial", "B", size)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(pdfContentWidth, size/2+2, r.tr(text), "", 1, "L", false, 0, "")
	r.pdf.SetTextColor(50, 50, 50)
}

func (r *pdfReport) summaryPage(report *domain.ComparisonReport) {
	res := report.Result
	h := AnalyzeComparison(report)

	r.pdf.AddPage()
	r.heading(fmt.Sprintf("FIRE Comparison: %s vs %s", res.A.Jurisdiction, res.B.Jurisdiction), 20)
	r.pdf.Ln(4)

	r.pdf.SetFillColor(232, 245, 233)
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.CellFormat(pdfContentWidth, 9, r.tr(fmt.Sprintf("Winner: Side %s (%s) %s", h.Winner, h.Jurisdiction, h.Reason)), "1", 1, "C", true, 0, "")
	r.pdf.Ln(6)

	labelWidth := pdfContentWidth * 0.4
	colWidth := (pdfContentWidth - labelWidth) / 2
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.CellFormat(labelWidth, pdfRowHeight+1, "", "1", 0, "L", true, 0, "")
	r.pdf.CellFormat(colWidth, pdfRowHeight+1, r.tr("A: "+res.A.Jurisdiction), "1", 0, "C", true, 0, "")
	r.pdf.CellFormat(colWidth, pdfRowHeight+1, r.tr("B: "+res.B.Jurisdiction), "1", 1, "C", true, 0, "")

	rows := [][3]string{
		{"Years until FIRE", FormatYears(res.A.YearsUntilFire), FormatYears(res.B.YearsUntilFire)},
		{"Retirement age", FormatAge(res.A), FormatAge(res.B)},
		{"FIRE number", FormatCurrency(res.A.FireNumber, r.cur, r.loc), FormatCurrency(res.B.FireNumber, r.cur, r.loc)},
		{"FIRE number today", FormatCurrency(res.A.FireNumberToday, r.cur, r.loc), FormatCurrency(res.B.FireNumberToday, r.cur, r.loc)},
		{"FIRE number (local)", r.local(res.A), r.local(res.B)},
		{"Income tax rate", FormatPercentage(res.A.EffectiveIncomeTaxRate), FormatPercentage(res.B.EffectiveIncomeTaxRate)},
		{"Capital gains tax rate", FormatPercentage(res.A.EffectiveCapitalGainsTaxRate), FormatPercentage(res.B.EffectiveCapitalGainsTaxRate)},
		{"After-tax return", FormatPercentage(res.A.EffectiveReturn), FormatPercentage(res.B.EffectiveReturn)},
		{"Cost of living", fmt.Sprintf("%.2fx", res.A.CostOfLiving), fmt.Sprintf("%.2fx", res.B.CostOfLiving)},
	}
	if sa, sb := res.SimulationA, res.SimulationB; sa != nil && sb != nil {
		rows = append(rows,
			[3]string{"Success probability", FormatPercentage(sa.SuccessProbability), FormatPercentage(sb.SuccessProbability)},
			[3]string{"Median years until FIRE", FormatYears(sa.MedianYearsUntilFire), FormatYears(sb.MedianYearsUntilFire)},
		)
	}
	r.pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		r.pdf.CellFormat(labelWidth, pdfRowHeight, r.tr(row[0]), "1", 0, "L", false, 0, "")
		r.pdf.CellFormat(colWidth, pdfRowHeight, r.tr(row[1]), "1", 0, "R", false, 0, "")
		r.pdf.CellFormat(colWidth, pdfRowHeight, r.tr(row[2]), "1", 1, "R", false, 0, "")
	}

	r.pdf.Ln(6)
	r.heading("Key Assumptions", 12)
	r.pdf.SetFont("Arial", "", 9)
	for _, a := range GenerateAssumptions(report) {
		r.pdf.MultiCell(pdfContentWidth, 4.5, r.tr("- "+a), "", "L", false)
	}
	if len(report.Warnings) > 0 {
		r.pdf.Ln(4)
		r.heading("Input Warnings", 12)
		r.pdf.SetFont("Arial", "", 9)
		for _, w := range report.Warnings {
			r.pdf.MultiCell(pdfContentWidth, 4.5, r.tr("- "+w), "", "L", false)
		}
	}

	r.pdf.Ln(8)
	r.pdf.SetFont("Arial", "I", 8)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(pdfContentWidth, 4, r.tr(Disclaimer), "", "C", false)
}

func (r *pdfReport) local(p domain.ProjectionResult) string {
	if p.LocalCurrency == "" {
		return "-"
	}
	return FormatCurrency(p.LocalFireNumber, p.LocalCurrency, r.loc)
}

func (r *pdfReport) trajectoryPage(label string, p domain.ProjectionResult) {
	r.pdf.AddPage()
	r.heading(fmt.Sprintf("Side %s: %s trajectory", label, p.Jurisdiction), 14)
	r.pdf.Ln(2)

	widths := []float64{20, 20, 70, 70}
	headers := []string{"Year", "Age", "Net worth", "FIRE number"}
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		r.pdf.CellFormat(widths[i], pdfRowHeight, h, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFillColor(232, 245, 233)
	for _, y := range p.Trajectory {
		fire := y.Year == p.YearsUntilFire
		style := ""
		if fire {
			style = "B"
		}
		r.pdf.SetFont("Arial", style, 9)
		r.pdf.CellFormat(widths[0], pdfRowHeight-1, intToString(y.Year), "1", 0, "C", fire, 0, "")
		r.pdf.CellFormat(widths[1], pdfRowHeight-1, intToString(y.Age), "1", 0, "C", fire, 0, "")
		r.pdf.CellFormat(widths[2], pdfRowHeight-1, FormatCurrency(y.NetWorth, r.cur, r.loc), "1", 0, "R", fire, 0, "")
		r.pdf.CellFormat(widths[3], pdfRowHeight-1, FormatCurrency(y.FireNumber, r.cur, r.loc), "1", 1, "R", fire, 0, "")
	}
	if !p.Reachable() {
		r.pdf.Ln(3)
		r.pdf.SetFont("Arial", "I", 9)
		r.pdf.CellFormat(pdfContentWidth, pdfRowHeight, r.tr(fmt.Sprintf("FIRE number not reached within %d years", p.HorizonYears)), "", 1, "L", false, 0, "")
	}
}
