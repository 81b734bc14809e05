package calculation

import (
	"fmt"
	"math"

	"github.com/rpgo/fire-compare/internal/domain"
)

const (
	// DefaultHorizonYears bounds every projection loop.
	DefaultHorizonYears = 100
	// TrajectoryBuffer is how many years past the crossing the trajectory extends.
	TrajectoryBuffer = 5
)

type projectionOptions struct {
	horizon int
	buffer  int
}

// ProjectionOption customizes Project.
type ProjectionOption func(*projectionOptions)

// WithHorizon sets the search horizon in years. Values outside [1, DefaultHorizonYears] are ignored.
func WithHorizon(years int) ProjectionOption {
	return func(o *projectionOptions) {
		if years >= 1 && years <= DefaultHorizonYears {
			o.horizon = years
		}
	}
}

// WithTrajectoryBuffer sets how many years the trajectory continues past the crossing.
func WithTrajectoryBuffer(years int) ProjectionOption {
	return func(o *projectionOptions) {
		if years >= 0 {
			o.buffer = years
		}
	}
}

// yearModel holds the normalized inputs for the per-year update shared by
// the projection engine and the Monte Carlo simulator.
type yearModel struct {
	profile      domain.FinancialProfile
	tax          domain.JurisdictionTaxProfile
	incomeRate   float64
	cgRate       float64
	contribution float64
	baseSpending float64
	inflation    float64
	grossUp      float64
}

func newYearModel(profile domain.FinancialProfile, tax domain.JurisdictionTaxProfile) yearModel {
	p, _ := profile.Normalize()
	t, _ := tax.Normalize()
	incomeRate := EffectiveRate(t, Income)
	cgRate := EffectiveRate(t, CapitalGains)
	return yearModel{
		profile:      p,
		tax:          t,
		incomeRate:   incomeRate,
		cgRate:       cgRate,
		contribution: AfterTaxContribution(p.GrossContribution(), incomeRate),
		baseSpending: p.AnnualSpending * t.CostOfLivingMultiplier(),
		inflation:    p.Inflation(),
		grossUp:      WithdrawalGrossUp(cgRate),
	}
}

// spending is the cost-of-living adjusted spending target in the given year.
func (m yearModel) spending(year int) float64 {
	if m.baseSpending == 0 {
		return 0
	}
	return capFinite(m.baseSpending * math.Pow(1+m.inflation, float64(year)))
}

// fireNumber is the net worth needed in the given year.
func (m yearModel) fireNumber(year int) float64 {
	return capFinite(m.spending(year) * m.grossUp / m.profile.SafeWithdrawalRate)
}

// step advances one year: growth on the opening balance net of capital gains
// drag, then the after-tax contribution. The balance never goes below zero.
func (m yearModel) step(netWorth, nominalReturn float64) (next, growth float64) {
	growth = capFinite(netWorth * EffectiveReturn(nominalReturn, m.cgRate))
	next = capFinite(netWorth + growth + m.contribution)
	if next < 0 || math.IsNaN(next) {
		next = 0
	}
	return next, growth
}

// capFinite pins overflowed amounts to the largest float64 so every value
// stays encodable. NaN passes through for the caller to handle.
func capFinite(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

func (m yearModel) snapshot(year int, netWorth, growth float64) domain.YearSnapshot {
	contribution := m.contribution
	if year == 0 {
		contribution = 0
	}
	return domain.YearSnapshot{
		Year:         year,
		Age:          m.profile.Age + year,
		NetWorth:     netWorth,
		FireNumber:   m.fireNumber(year),
		Spending:     m.spending(year),
		Contribution: contribution,
		Growth:       growth,
	}
}

// Project runs the deterministic year-by-year projection for one jurisdiction.
//
// YearsUntilFire is the first whole year at whose end net worth meets the
// FIRE number for that year. This is the ceiling of the interpolated
// crossing year: a crossing halfway through year 2 reports 2.
func Project(profile domain.FinancialProfile, tax *domain.JurisdictionTaxProfile, opts ...ProjectionOption) (domain.ProjectionResult, error) {
	if tax == nil {
		return domain.ProjectionResult{}, fmt.Errorf("project: %w", domain.ErrMissingJurisdictionData)
	}
	o := projectionOptions{horizon: DefaultHorizonYears, buffer: TrajectoryBuffer}
	for _, opt := range opts {
		opt(&o)
	}

	m := newYearModel(profile, *tax)
	rate := m.profile.ExpectedReturn

	netWorth := m.profile.NetWorth
	trajectory := make([]domain.YearSnapshot, 0, o.horizon+1)
	trajectory = append(trajectory, m.snapshot(0, netWorth, 0))

	years := domain.NeverFire
	crossing := float64(o.horizon)
	if netWorth >= m.fireNumber(0) {
		years = 0
		crossing = 0
	} else {
		for year := 1; year <= o.horizon; year++ {
			prevGap := m.fireNumber(year-1) - netWorth
			var growth float64
			netWorth, growth = m.step(netWorth, rate)
			trajectory = append(trajectory, m.snapshot(year, netWorth, growth))

			gap := m.fireNumber(year) - netWorth
			if gap <= 0 {
				years = year
				crossing = float64(year)
				if frac := prevGap / (prevGap - gap); frac >= 0 && frac <= 1 {
					crossing = float64(year-1) + frac
				}
				break
			}
		}
	}

	if years != domain.NeverFire {
		last := min(years+o.buffer, o.horizon)
		for year := years + 1; year <= last; year++ {
			var growth float64
			netWorth, growth = m.step(netWorth, rate)
			trajectory = append(trajectory, m.snapshot(year, netWorth, growth))
		}
	}

	result := domain.ProjectionResult{
		Jurisdiction:                 m.tax.Code,
		YearsUntilFire:               years,
		CrossingYear:                 crossing,
		FireNumber:                   m.fireNumber(0),
		FireNumberToday:              m.fireNumber(0),
		EffectiveReturn:              EffectiveReturn(rate, m.cgRate),
		EffectiveIncomeTaxRate:       m.incomeRate,
		EffectiveCapitalGainsTaxRate: m.cgRate,
		CostOfLiving:                 m.tax.CostOfLivingMultiplier(),
		HorizonYears:                 o.horizon,
		Trajectory:                   trajectory,
	}
	if years != domain.NeverFire {
		result.FireNumber = m.fireNumber(years)
		result.RetirementAge = m.profile.Age + years
	}
	return result, nil
}
