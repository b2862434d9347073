package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported discount strategies.
type DiscountType string

const (
	// DiscountFixed subtracts a fixed currency amount, capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
	// DiscountPercentage subtracts a percentage of the subtotal, optionally
	// capped at a fixed amount.
	DiscountPercentage DiscountType = "percentage"
)

const maxDiscountNameLength = 50

var oneHundred = decimal.NewFromInt(100)

// Discount is an immutable price reduction. Its name is the uniqueness key
// within a cart; a discount is never mutated, only removed and reapplied.
type Discount struct {
	name      string
	kind      DiscountType
	amount    decimal.Decimal
	capAmount decimal.Decimal
	hasCap    bool
}

// NewFixedDiscount creates a discount subtracting a fixed currency amount.
func NewFixedDiscount(name string, amount decimal.Decimal) (Discount, error) {
	if err := validateDiscountName(name); err != nil {
		return Discount{}, err
	}
	if !amount.IsPositive() {
		return Discount{}, fmt.Errorf("%w: fixed discount amount must be positive", ErrValidation)
	}
	return Discount{name: name, kind: DiscountFixed, amount: amount}, nil
}

// NewPercentageDiscount creates a percentage discount. The percentage must be
// in (0,100]; capAmount, when non-zero, bounds the computed discount and must
// be positive.
func NewPercentageDiscount(name string, percentage, capAmount decimal.Decimal) (Discount, error) {
	if err := validateDiscountName(name); err != nil {
		return Discount{}, err
	}
	if !percentage.IsPositive() || percentage.GreaterThan(oneHundred) {
		return Discount{}, fmt.Errorf("%w: percentage must be greater than 0 and at most 100", ErrValidation)
	}
	d := Discount{name: name, kind: DiscountPercentage, amount: percentage}
	if !capAmount.IsZero() {
		if capAmount.IsNegative() {
			return Discount{}, fmt.Errorf("%w: discount cap must be positive", ErrValidation)
		}
		d.capAmount = capAmount
		d.hasCap = true
	}
	return d, nil
}

func (d Discount) Name() string { return d.name }

func (d Discount) Kind() DiscountType { return d.kind }

// Amount is the fixed currency amount for DiscountFixed and the percentage
// for DiscountPercentage.
func (d Discount) Amount() decimal.Decimal { return d.amount }

func (d Discount) Cap() (decimal.Decimal, bool) { return d.capAmount, d.hasCap }

func validateDiscountName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: discount name cannot be empty", ErrValidation)
	}
	if len(name) > maxDiscountNameLength {
		return fmt.Errorf("%w: discount name cannot exceed %d characters", ErrValidation, maxDiscountNameLength)
	}
	return nil
}
