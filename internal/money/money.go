// Package money provides a fixed-point currency type counted in cents.
//
// Amounts are parsed and rounded with shopspring/decimal and stored as int64
// cents, so sums never pass through a binary floating-point representation.
// Only percentages and display helpers produce float64 values.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a signed amount of minor currency units (cents).
type Money int64

// Zero is the zero amount.
const Zero Money = 0

var hundred = decimal.NewFromInt(100)

// FromCents wraps a cent count.
func FromCents(cents int64) Money {
	return Money(cents)
}

// Bounds on accepted amounts. Any amount within MaxAmount converts to cents,
// and sums of many such amounts, without leaving int64.
const (
	maxAmountLength = 32
	maxScale        = 18
)

// MaxAmount is the largest absolute amount, in major units, that InRange accepts.
var MaxAmount = decimal.New(1, 12)

var (
	// ErrAmountNotation is returned for amount strings that are too long or use
	// an exponent outside the supported scale.
	ErrAmountNotation = errors.New("amount has too many digits")
	// ErrAmountOutOfRange is returned for amounts beyond MaxAmount.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// ParseDecimal reads a major-unit decimal string. Overlong input and
// exponents outside ±18 are rejected before any arithmetic runs on the value.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if len(s) > maxAmountLength {
		return decimal.Zero, ErrAmountNotation
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !withinScale(d) {
		return decimal.Zero, ErrAmountNotation
	}
	return d, nil
}

func withinScale(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxScale && exp <= maxScale
}

// InRange reports whether d can be converted with FromDecimal.
func InRange(d decimal.Decimal) bool {
	return withinScale(d) && d.Abs().LessThanOrEqual(MaxAmount)
}

// ExceedsMax reports whether d is a representable decimal whose magnitude is
// beyond MaxAmount.
func ExceedsMax(d decimal.Decimal) bool {
	return withinScale(d) && d.Abs().GreaterThan(MaxAmount)
}

// FromDecimal converts a major-unit decimal to cents, rounding half away from
// zero at two decimal places. d must satisfy InRange.
func FromDecimal(d decimal.Decimal) Money {
	return Money(d.Round(2).Shift(2).IntPart())
}

// Parse reads a major-unit decimal string such as "49.99" and rounds it to cents.
func Parse(s string) (Money, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if !InRange(d) {
		return 0, ErrAmountOutOfRange
	}
	return FromDecimal(d), nil
}

// Cents returns the raw cent count.
func (m Money) Cents() int64 {
	return int64(m)
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Float64 returns the amount in major units for display purposes only.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

// String formats the amount with exactly two decimals, e.g. "49.99".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool {
	return m > 0
}

// MarshalJSON encodes the amount as a fixed two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare decimal numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(strings.Trim(string(data), `"`))
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = parsed
	return nil
}

// Sum adds amounts together.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}

// Mean returns total/count in major units. The result keeps fractional cents
// instead of truncating them. A zero count yields zero.
func Mean(total Money, count int64) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Decimal().Div(decimal.NewFromInt(count))
}

// Percentage returns part/whole*100 rounded half away from zero to one decimal.
// A zero whole yields 0.
func Percentage(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Mul(hundred).Div(whole).Round(1).InexactFloat64()
}
