// Package money provides the fixed-point quantization used for every
// monetary field in the system. All amounts are stored and compared at
// exactly 2 fractional digits; arithmetic is done at full precision and
// only the final result is quantized.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for input that is not a finite,
// non-negative decimal.
var ErrInvalidAmount = errors.New("invalid monetary amount")

// Zero is the canonical 0.00 value.
var Zero = decimal.New(0, -2)

var hundred = decimal.NewFromInt(100)

// Quantize rounds v to 2 fractional digits with ties going away from
// zero (round-half-up for the non-negative amounts this system stores:
// 0.005 -> 0.01, never banker's rounding).
func Quantize(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// Parse converts a caller-supplied string into a quantized amount.
// Negative or non-numeric input fails with ErrInvalidAmount.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return Quantize(d), nil
}

// FromFloat converts a caller-supplied float into a quantized amount.
// Negative input fails with ErrInvalidAmount.
func FromFloat(f float64) (decimal.Decimal, error) {
	d := decimal.NewFromFloat(f)
	if d.IsNegative() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return Quantize(d), nil
}

// Percent computes pct% of base at full precision and quantizes the
// result once.
func Percent(base decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	return Quantize(base.Mul(pct).Div(hundred))
}
