package output

import (
	"github.com/rpgo/fire-compare/internal/domain"
	"github.com/rpgo/fire-compare/pkg/decimal"
)

// Headline summarizes the comparison for the top of every report.
type Headline struct {
	Winner        domain.Winner
	Jurisdiction  string
	Reason        string
	YearsSaved    int           // 0 unless both sides are reachable
	FireNumberGap decimal.Money // loser minus winner, base currency
	GapPercent    float64       // FireNumberGap as a fraction of the loser's FIRE number
	Winning       domain.ProjectionResult
	Losing        domain.ProjectionResult
}

// AnalyzeComparison derives the headline numbers from a report.
func AnalyzeComparison(report *domain.ComparisonReport) Headline {
	res := report.Result
	win, lose := res.A, res.B
	if res.Winner == domain.SideB {
		win, lose = res.B, res.A
	}

	h := Headline{
		Winner:       res.Winner,
		Jurisdiction: win.Jurisdiction,
		Reason:       reasonText(res.Reason),
		Winning:      win,
		Losing:       lose,
	}
	if win.Reachable() && lose.Reachable() {
		h.YearsSaved = lose.YearsUntilFire - win.YearsUntilFire
	}

	gap := decimal.NewMoney(lose.FireNumber).Sub(decimal.NewMoney(win.FireNumber))
	h.FireNumberGap = gap
	if lose.FireNumber > 0 {
		h.GapPercent = gap.Float64() / lose.FireNumber
	}
	return h
}
