package domain

import "errors"

// Error kinds for the cart core. Call sites add context with
// fmt.Errorf("%w: ...") so callers can match the kind via errors.Is.
var (
	// ErrValidation - a value fails its own construction invariants.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound - the referenced item, discount or rule is not in the cart.
	ErrNotFound = errors.New("not found")

	// ErrConflict - the operation would violate a uniqueness invariant.
	ErrConflict = errors.New("conflict")

	// ErrInvalidOperation - the operation is disallowed in the current state,
	// e.g. setting the quantity of a derived freebie item.
	ErrInvalidOperation = errors.New("invalid operation")
)
