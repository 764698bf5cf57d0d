// Package money provides currency-safe amounts for statement analytics.
// Amounts are held as integer minor units by go-money and converted through
// shopspring/decimal so no float rounding leaks into totals.
package money

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	INR = "INR" // Indian Rupee
	USD = "USD" // US Dollar
	EUR = "EUR" // Euro
	GBP = "GBP" // British Pound
	JPY = "JPY" // Japanese Yen (no decimal places)
)

var (
	// ErrEmptyAmount is returned when a cell holds no digits at all.
	ErrEmptyAmount = errors.New("empty amount")
	// ErrInvalidAmount is returned when a cell holds digits that do not form a number.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units and a currency code.
func New(amountMinor int64, currencyCode string) *Money {
	return &Money{m: money.New(amountMinor, currencyCode)}
}

// NewFromDecimal creates Money from a decimal amount, rounding to the
// currency's minor unit. Unknown currencies fall back to two decimals.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	fraction := 2
	if c := money.GetCurrency(currencyCode); c != nil {
		fraction = c.Fraction
	}
	minor := amount.Mul(decimal.New(1, int32(fraction))).Round(0).IntPart()
	return New(minor, currencyCode)
}

// Zero returns a zero Money value for the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the amount in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Add returns the sum of two amounts in the same currency.
func (m *Money) Add(other *Money) (*Money, error) {
	sum, err := m.m.Add(other.m)
	if err != nil {
		return nil, fmt.Errorf("add %s to %s: %w", other.Currency(), m.Currency(), err)
	}
	return &Money{m: sum}, nil
}

// Display returns the amount formatted for people, e.g. "₹1,234.56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "0.00"
	}
	return m.m.Display()
}

// ToDecimal converts back to decimal.Decimal.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.New(m.m.Amount(), -int32(m.m.Currency().Fraction))
}

// Display formats a decimal amount in the given currency.
func Display(amount decimal.Decimal, currencyCode string) string {
	return NewFromDecimal(amount, currencyCode).Display()
}

// separatesDigits reports whether the separator at i belongs to a number: a
// digit precedes it, or a digit follows it and no letter precedes it. This drops
// the dot of prefixes such as "Rs.".
func separatesDigits(runes []rune, i int) bool {
	if i > 0 {
		prev := runes[i-1]
		if isDigit(prev) {
			return true
		}
		if unicode.IsLetter(prev) {
			return false
		}
	}
	return i+1 < len(runes) && isDigit(runes[i+1])
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// ParseDecimal reads an amount as it appears in a spreadsheet cell. Currency
// symbols, spaces and thousands separators are dropped; a leading "-" or
// surrounding parentheses make the value negative. europeanFormat treats ","
// as the decimal separator (1.234,56).
func ParseDecimal(s string, europeanFormat bool) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}

	decimalSep := '.'
	if europeanFormat {
		decimalSep = ','
	}

	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case isDigit(r):
			b.WriteRune(r)
		case r == '-':
			negative = !negative
		case r == decimalSep && separatesDigits(runes, i):
			b.WriteRune('.')
		}
	}

	cleaned := b.String()
	if cleaned == "" || strings.Trim(cleaned, ".") == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q: %v", ErrInvalidAmount, s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
