package domain

import "fmt"

const maxRuleNameLength = 100

// FreebieRule is an immutable promotion: buying the trigger product grants a
// number of units of the freebie product for free. Its name is the uniqueness
// key within a cart.
type FreebieRule struct {
	name     string
	trigger  ProductID
	freebie  ProductID
	quantity Quantity
}

// NewFreebieRule creates a rule. A zero quantity defaults to one unit.
func NewFreebieRule(name string, trigger, freebie ProductID, quantity Quantity) (FreebieRule, error) {
	if name == "" {
		return FreebieRule{}, fmt.Errorf("%w: rule name cannot be empty", ErrValidation)
	}
	if len(name) > maxRuleNameLength {
		return FreebieRule{}, fmt.Errorf("%w: rule name cannot exceed %d characters", ErrValidation, maxRuleNameLength)
	}
	if trigger == "" || freebie == "" {
		return FreebieRule{}, fmt.Errorf("%w: rule requires both a trigger and a freebie product", ErrValidation)
	}
	if trigger == freebie {
		return FreebieRule{}, fmt.Errorf("%w: trigger and freebie product must differ", ErrValidation)
	}
	if quantity.IsZero() {
		quantity = Quantity{value: 1}
	}
	return FreebieRule{name: name, trigger: trigger, freebie: freebie, quantity: quantity}, nil
}

func (r FreebieRule) Name() string { return r.name }

func (r FreebieRule) TriggerProduct() ProductID { return r.trigger }

func (r FreebieRule) FreebieProduct() ProductID { return r.freebie }

func (r FreebieRule) FreebieQuantity() Quantity { return r.quantity }
