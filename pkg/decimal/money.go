package decimal

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money is a display amount. Engine results are float64; Money turns them
// into exact decimals for rounding and fixed-point output.
type Money struct {
	decimal.Decimal
}

// NewMoney creates Money from a float64. NaN and infinities become zero so
// a bad projection value never reaches a report as "NaN".
func NewMoney(value float64) Money {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Zero()
	}
	return Money{decimal.NewFromFloat(value)}
}

// RoundWhole rounds to whole currency units.
func (m Money) RoundWhole() Money {
	return Money{m.Decimal.Round(0)}
}

// Monthly converts an annual amount to monthly
func (m Money) Monthly() Money {
	return Money{m.Decimal.Div(decimal.NewFromInt(12))}
}

// Sub subtracts another Money amount
func (m Money) Sub(other Money) Money {
	return Money{m.Decimal.Sub(other.Decimal)}
}

// Float64 returns the nearest float64.
func (m Money) Float64() float64 {
	return m.Decimal.InexactFloat64()
}

// Zero returns a zero Money amount
func Zero() Money {
	return Money{decimal.Zero}
}

// String returns the amount with two decimal places.
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}
