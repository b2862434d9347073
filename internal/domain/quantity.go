package domain

import "fmt"

// MaxQuantity is the upper bound for any single line item count.
const MaxQuantity = 999999

// Quantity is an immutable non-negative item count bounded by MaxQuantity.
type Quantity struct {
	value int
}

func NewQuantity(value int) (Quantity, error) {
	if value < 0 {
		return Quantity{}, fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}
	if value > MaxQuantity {
		return Quantity{}, fmt.Errorf("%w: quantity cannot exceed %d", ErrValidation, MaxQuantity)
	}
	return Quantity{value: value}, nil
}

func (q Quantity) Value() int { return q.value }

func (q Quantity) IsZero() bool { return q.value == 0 }

func (q Quantity) Add(other Quantity) (Quantity, error) {
	return NewQuantity(q.value + other.value)
}

func (q Quantity) Sub(other Quantity) (Quantity, error) {
	return NewQuantity(q.value - other.value)
}
