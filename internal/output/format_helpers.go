package output

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/rpgo/fire-compare/pkg/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when a report carries no locale or an invalid one.
const DefaultLocale = "en-US"

func newPrinter(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.AmericanEnglish
	}
	return message.NewPrinter(tag)
}

// FormatCurrency rounds to whole units and groups digits for the locale,
// e.g. "USD 1,234,567". NaN and infinities render as zero.
func FormatCurrency(amount float64, code, locale string) string {
	whole := decimal.NewMoney(amount).RoundWhole().Float64()
	grouped := newPrinter(locale).Sprint(number.Decimal(whole, number.MaxFractionDigits(0)))
	if code == "" {
		return grouped
	}
	return code + " " + grouped
}

// FormatPercentage renders a fraction as a percentage with one decimal place: 0.07 -> "7.0%".
func FormatPercentage(rate float64) string {
	return decimal.NewMoney(rate*100).StringFixed(1) + "%"
}

// FormatYears renders a years-until-FIRE count for display.
func FormatYears(years int) string {
	switch {
	case years == domain.NeverFire:
		return "Never"
	case years < 0:
		return "Already FIRE"
	case years == 0:
		return "Now"
	case years == 1:
		return "1 year"
	default:
		return fmt.Sprintf("%d years", years)
	}
}

// FormatAge renders the retirement age, or "-" when never reached.
func FormatAge(r domain.ProjectionResult) string {
	if !r.Reachable() {
		return "-"
	}
	return strconv.Itoa(r.RetirementAge)
}

// FormatRate renders a raw rate for machine-readable outputs.
func FormatRate(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return "0"
	}
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

func intToString(i int) string { return strconv.Itoa(i) }

func reasonText(r domain.Reason) string {
	switch r {
	case domain.ReasonEarlierRetirement:
		return "reaches FIRE earlier"
	case domain.ReasonLowerFireNumber:
		return "needs a lower FIRE number"
	}
	return strings.TrimSpace(string(r))
}
