package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100", "100"},
		{"0.01", "0.01"},
		{"99.99", "99.99"},
		{"1234567890123.45", "1234567890123.45"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"not a number", "abc", ErrInvalidFormat},
		{"empty", "", ErrInvalidFormat},
		{"zero", "0", ErrNotPositive},
		{"negative", "-1.00", ErrNotPositive},
		{"three decimals", "1.005", ErrTooManyDecimals},
		{"fourteen integer digits", "10000000000000", ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_BoundaryValues(t *testing.T) {
	// The largest storable amount is 13 nines dot 99.
	max := decimal.RequireFromString("9999999999999.99")
	assert.NoError(t, Validate(max))

	overflow := decimal.New(1, MaxIntegerDigits)
	assert.ErrorIs(t, Validate(overflow), ErrTooLarge)

	cent := decimal.New(1, -2)
	assert.NoError(t, Validate(cent))
}
