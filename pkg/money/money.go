// Package money is the single parsing and validation boundary for monetary
// amounts. Callers at the edges (HTTP handlers, CLI) parse raw input here and
// hand the resulting decimal to the ledger engine; nothing deeper in the call
// chain accepts ambiguous numeric representations.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// Scale is the number of decimal places carried by every balance and amount.
	Scale = 2
	// MaxIntegerDigits bounds the integer part of any amount or balance,
	// matching the numeric(15,2) columns in the store.
	MaxIntegerDigits = 13
)

var (
	// ErrInvalidFormat is returned when the input cannot be parsed as a decimal number.
	ErrInvalidFormat = errors.New("amount is not a valid decimal number")
	// ErrNotPositive is returned when the amount is zero or negative.
	ErrNotPositive = errors.New("amount must be greater than zero")
	// ErrTooManyDecimals is returned when the amount carries more than two decimal places.
	ErrTooManyDecimals = errors.New("amount must have at most two decimal places")
	// ErrTooLarge is returned when the integer part of the amount exceeds 13 digits.
	ErrTooLarge = errors.New("amount exceeds the maximum supported value")
)

var maxAmount = decimal.New(1, MaxIntegerDigits)

// Parse converts a raw string into a validated transaction amount.
func Parse(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidFormat
	}
	if err := Validate(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Validate checks that a decimal is usable as a transaction amount:
// strictly positive, at most two decimal places, at most 13 integer digits.
func Validate(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrNotPositive
	}
	if !d.Equal(d.Round(Scale)) {
		return ErrTooManyDecimals
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return ErrTooLarge
	}
	return nil
}
