// Package core provides money parsing and handling utilities.
//
// Amounts travel as decimal numbers on the wire and as integer cents
// everywhere else, so sums stay exact.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MaxAmountCents is the largest amount accepted for an expense or a
// monthly limit (100 billion in currency units). Sums over any realistic
// number of such amounts stay well inside int64.
const MaxAmountCents int64 = 10_000_000_000_000

var maxAmount = decimal.NewFromInt(MaxAmountCents)

// MoneyFromDecimal converts a decimal amount to Money with half-up
// rounding to the cent, rejecting non-positive and out-of-range values.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents, err := roundCents(d)
	if err != nil {
		return Money{}, err
	}
	if cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}

// roundCents scales d to whole cents. Magnitudes above MaxAmountCents are
// rejected before the int64 conversion.
func roundCents(d decimal.Decimal) (int64, error) {
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxAmount) {
		return 0, ErrAmountTooLarge
	}
	return cents.IntPart(), nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount in currency units for display and percentages.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string, with a dot or a
// comma as the decimal separator. Zero and negative values decode without
// error so Validate can reject them; out-of-range values fail here.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(string(b)), `"`))
	if s == "" || strings.HasPrefix(s, "+") {
		return ErrInvalidAmount
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return ErrInvalidAmount
	}
	if d.IsPositive() {
		money, err := MoneyFromDecimal(d)
		if err != nil {
			return err
		}
		*m = money
		return nil
	}
	cents, err := roundCents(d)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}
