package valueobject

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CNY Currency = "CNY"
	JPY Currency = "JPY"
)

// DefaultCurrency is used when an account does not choose one
const DefaultCurrency = USD

// AmountScale is the number of decimal places stored for money amounts
const AmountScale int32 = 2

// QuantityScale is the number of decimal places stored for quantities and
// unit prices. RateScale is the same for percentage rates.
const (
	QuantityScale int32 = 4
	RateScale     int32 = 2
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ParseCurrency normalizes and validates a currency code
func ParseCurrency(code string) (Currency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !currencyPattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid currency code %q", code)
	}
	return Currency(normalized), nil
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// Money is an immutable monetary amount in a currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustMoney is NewMoney for values known to be valid
func MustMoney(amount decimal.Decimal, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns the sum of both amounts; currencies must match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns the difference of both amounts; currencies must match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Round rounds the amount to AmountScale places
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(AmountScale), currency: m.currency}
}

// Equals reports whether both values have the same amount and currency
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// GreaterThan compares amounts of the same currency
func (m Money) GreaterThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	return m.amount.GreaterThan(other.amount), nil
}

// String formats the amount as "12.50 USD"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(AmountScale), m.currency)
}

// RoundAmount rounds a raw decimal amount to AmountScale places
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

// Percentage returns d × rate / 100
func Percentage(d, rate decimal.Decimal) decimal.Decimal {
	return d.Mul(rate).Div(decimal.NewFromInt(100))
}

// FitsScale reports whether d has no more than places decimal digits
func FitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
