package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for totals of carts that have no regular items yet.
const DefaultCurrency = "THB"

// Money is an immutable currency-tagged amount. The zero amount is valid,
// negative amounts are not; every operation returns a new value.
type Money struct {
	amount   decimal.Decimal
	currency string
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if currency == "" {
		return Money{}, fmt.Errorf("%w: currency is required", ErrValidation)
	}
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: money amount cannot be negative", ErrValidation)
	}
	return Money{amount: amount, currency: currency}, nil
}

// ZeroMoney returns the zero amount in the given currency.
func ZeroMoney(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() string { return m.currency }

func (m Money) IsZero() bool { return m.amount.IsZero() }

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub fails if the result would be negative; callers that want a floor at
// zero must check with LessThan first.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	res := m.amount.Sub(other.amount)
	if res.IsNegative() {
		return Money{}, fmt.Errorf("%w: subtraction result cannot be negative", ErrValidation)
	}
	return Money{amount: res, currency: m.currency}, nil
}

// MulQuantity scales the amount by an item count.
func (m Money) MulQuantity(q Quantity) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(q.Value()))), currency: m.currency}
}

func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) LessThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.amount.LessThan(other.amount), nil
}

func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(other.amount), nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.String(), m.currency)
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: currency mismatch %s vs %s", ErrValidation, m.currency, other.currency)
	}
	return nil
}
