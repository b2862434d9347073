package domain

import "fmt"

const maxProductIDLength = 100

// ProductID is a validated opaque product identity. It is comparable and
// usable as a map key; construct it through NewProductID.
type ProductID string

func NewProductID(value string) (ProductID, error) {
	if value == "" {
		return "", fmt.Errorf("%w: product id cannot be empty", ErrValidation)
	}
	if len(value) > maxProductIDLength {
		return "", fmt.Errorf("%w: product id cannot exceed %d characters", ErrValidation, maxProductIDLength)
	}
	for i := 0; i < len(value); i++ {
		if !isProductIDChar(value[i]) {
			return "", fmt.Errorf("%w: product id contains invalid character %q", ErrValidation, value[i])
		}
	}
	return ProductID(value), nil
}

func (p ProductID) String() string { return string(p) }

func isProductIDChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-':
		return true
	}
	return false
}
