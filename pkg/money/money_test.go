package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		european bool
		want     string
	}{
		{"plain integer", "500", false, "500"},
		{"thousands separator", "1,200.50", false, "1200.5"},
		{"currency symbol", "₹ 1,999.00", false, "1999"},
		{"negative sign", "-45.10", false, "-45.1"},
		{"parentheses", "(250.00)", false, "-250"},
		{"european", "1.234,56", true, "1234.56"},
		{"european negative", "-12,30 €", true, "-12.3"},
		{"trailing code", "75.25 INR", false, "75.25"},
		{"rupee prefix with dot", "Rs.500", false, "500"},
		{"rupee prefix with space", "Rs. 1,200.00", false, "1200"},
		{"INR prefix", "INR.250.75", false, "250.75"},
		{"leading decimal", ".50", false, "0.5"},
		{"european rupee prefix", "Rs. 1.200,50", true, "1200.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimal(tt.input, tt.european)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseDecimal_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "N/A", "-", ".", "Rs."} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDecimal(input, false)
			assert.ErrorIs(t, err, ErrEmptyAmount)
		})
	}
}

func TestParseDecimal_Invalid(t *testing.T) {
	_, err := ParseDecimal("1.2.3", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.NotErrorIs(t, err, ErrEmptyAmount)
}

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     int64
	}{
		{"rupees", "1234.56", INR, 123456},
		{"rounds half up", "0.125", USD, 13},
		{"yen has no minor unit", "1500", JPY, 1500},
		{"negative", "-10.5", EUR, -1050},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFromDecimal(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.want, m.Amount())
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestMoney_AddAndBack(t *testing.T) {
	a := NewFromDecimal(decimal.RequireFromString("100.25"), INR)
	b := NewFromDecimal(decimal.RequireFromString("0.75"), INR)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(10100), sum.Amount())
	assert.True(t, decimal.NewFromInt(101).Equal(sum.ToDecimal()))

	_, err = a.Add(Zero(USD))
	assert.Error(t, err)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "$1,234.50", Display(decimal.RequireFromString("1234.5"), USD))
	assert.Contains(t, Display(decimal.NewFromInt(500), INR), "500.00")
	assert.Equal(t, "0.00", (*Money)(nil).Display())
}
