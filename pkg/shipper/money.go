package shipper

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	minSubunits = decimal.NewFromInt(math.MinInt64)
	maxSubunits = decimal.NewFromInt(math.MaxInt64)
)

// Currency describes an ISO 4217 currency and its minor unit.
type Currency struct {
	Code          string
	SubunitToUnit int64
}

// Supported currencies.
var (
	USD = Currency{Code: "USD", SubunitToUnit: 100}
	CAD = Currency{Code: "CAD", SubunitToUnit: 100}
)

// Money is an amount expressed in integer subunits of a currency.
type Money struct {
	Subunits int64
	Currency Currency
}

// NewMoney builds a Money value from subunits.
func NewMoney(subunits int64, currency Currency) Money {
	return Money{Subunits: subunits, Currency: currency}
}

// ParseMoney parses a decimal string such as "26.40" into subunits of the
// given currency, rounding half away from zero. Exponents and amounts that
// do not fit in int64 subunits are rejected.
func ParseMoney(amount string, currency Currency) (Money, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	if strings.ContainsAny(s, "eE") {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	d = d.Mul(decimal.NewFromInt(currency.SubunitToUnit)).Round(0)
	if d.LessThan(minSubunits) || d.GreaterThan(maxSubunits) {
		return Money{}, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, amount)
	}

	return Money{Subunits: d.IntPart(), Currency: currency}, nil
}

// MustParseMoney is like ParseMoney but panics on error. Intended for tables
// and tests.
func MustParseMoney(amount string, currency Currency) Money {
	m, err := ParseMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Subunits == 0
}

// Add returns the sum of two amounts in the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency.Code != other.Currency.Code {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency.Code, other.Currency.Code)
	}
	return Money{Subunits: m.Subunits + other.Subunits, Currency: m.Currency}, nil
}

// Decimal formats the amount in major units, e.g. "26.40".
func (m Money) Decimal() string {
	unit := m.Currency.SubunitToUnit
	if unit <= 1 {
		return fmt.Sprint(m.Subunits)
	}

	digits := int32(len(fmt.Sprint(unit)) - 1)
	return decimal.NewFromInt(m.Subunits).Div(decimal.NewFromInt(unit)).StringFixed(digits)
}

// String formats the amount with its currency code, e.g. "26.40 USD".
func (m Money) String() string {
	return m.Decimal() + " " + m.Currency.Code
}
