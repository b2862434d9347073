package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// maxReasonableFixedDiscount is a sanity ceiling for fixed amounts, flagged
// by ValidateDiscount rather than rejected at construction.
var maxReasonableFixedDiscount = decimal.NewFromInt(999999)

// CalculateFixedDiscount returns the effective fixed discount against the
// subtotal: the amount itself, capped so it never exceeds the subtotal.
func CalculateFixedDiscount(subtotal Money, amount decimal.Decimal) (Money, error) {
	if !amount.IsPositive() {
		return Money{}, fmt.Errorf("%w: fixed discount amount must be positive", ErrValidation)
	}
	if subtotal.IsZero() {
		return ZeroMoney(subtotal.Currency()), nil
	}
	if amount.GreaterThan(subtotal.Amount()) {
		return subtotal, nil
	}
	return NewMoney(amount, subtotal.Currency())
}

// CalculatePercentageDiscount computes subtotal x percentage / 100, clamps it
// to capAmount when a positive cap is given, then clamps it to the subtotal.
// The percentage must be in (0,100]. Pass a zero capAmount for no cap.
func CalculatePercentageDiscount(subtotal Money, percentage, capAmount decimal.Decimal) (Money, error) {
	if !percentage.IsPositive() || percentage.GreaterThan(oneHundred) {
		return Money{}, fmt.Errorf("%w: percentage must be greater than 0 and at most 100", ErrValidation)
	}
	if capAmount.IsNegative() {
		return Money{}, fmt.Errorf("%w: discount cap must be positive", ErrValidation)
	}
	discounted := subtotal.Amount().Mul(percentage).Div(oneHundred).Round(2)
	if !capAmount.IsZero() && discounted.GreaterThan(capAmount) {
		discounted = capAmount
	}
	if discounted.GreaterThan(subtotal.Amount()) {
		discounted = subtotal.Amount()
	}
	return NewMoney(discounted, subtotal.Currency())
}

// CalculateSequentialDiscount applies each discount against the subtotal
// remaining after the previous ones, so stacked percentages compound on the
// reduced amount. Each step is capped at the remaining subtotal, so the
// result never exceeds the original subtotal. Stops once nothing remains.
func CalculateSequentialDiscount(subtotal Money, discounts []Discount) (Money, error) {
	remaining := subtotal
	total := ZeroMoney(subtotal.Currency())
	for _, d := range discounts {
		if remaining.IsZero() {
			break
		}
		var (
			step Money
			err  error
		)
		switch d.Kind() {
		case DiscountFixed:
			step, err = CalculateFixedDiscount(remaining, d.Amount())
		case DiscountPercentage:
			capAmount, _ := d.Cap()
			step, err = CalculatePercentageDiscount(remaining, d.Amount(), capAmount)
		default:
			err = fmt.Errorf("%w: unknown discount type %q", ErrValidation, d.Kind())
		}
		if err != nil {
			return Money{}, err
		}
		if remaining, err = remaining.Sub(step); err != nil {
			return Money{}, err
		}
		if total, err = total.Add(step); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// ValidateDiscount lists suspicious but constructible properties of a
// discount. An empty result means the discount looks sane.
func ValidateDiscount(d Discount) []string {
	var issues []string
	switch d.Kind() {
	case DiscountPercentage:
		if d.Amount().GreaterThanOrEqual(oneHundred) {
			issues = append(issues, fmt.Sprintf("discount %q: percentage of %s wipes out the whole subtotal", d.Name(), d.Amount()))
		}
		if capAmount, ok := d.Cap(); ok && !capAmount.IsPositive() {
			issues = append(issues, fmt.Sprintf("discount %q: cap must be positive", d.Name()))
		}
	case DiscountFixed:
		if d.Amount().GreaterThan(maxReasonableFixedDiscount) {
			issues = append(issues, fmt.Sprintf("discount %q: fixed amount %s exceeds the sanity ceiling of %s", d.Name(), d.Amount(), maxReasonableFixedDiscount))
		}
	}
	return issues
}
