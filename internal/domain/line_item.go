package domain

import "fmt"

// CartLineItem is a quantity of one product at a fixed unit price. Freebie
// items are derived by the aggregate from freebie rules; only the aggregate
// creates them or flips the flag. Quantity is the only externally mutable
// field, and only through the aggregate.
type CartLineItem struct {
	productID     ProductID
	quantity      Quantity
	unitPrice     Money
	isFreebie     bool
	freebieSource ProductID
}

func newLineItem(productID ProductID, quantity Quantity, unitPrice Money) (*CartLineItem, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: line item requires a product id", ErrValidation)
	}
	if quantity.IsZero() {
		return nil, fmt.Errorf("%w: line item quantity must be positive", ErrValidation)
	}
	return &CartLineItem{productID: productID, quantity: quantity, unitPrice: unitPrice}, nil
}

func newFreebieLineItem(productID ProductID, quantity Quantity, currency string, source ProductID) *CartLineItem {
	return &CartLineItem{
		productID:     productID,
		quantity:      quantity,
		unitPrice:     ZeroMoney(currency),
		isFreebie:     true,
		freebieSource: source,
	}
}

func (li *CartLineItem) ProductID() ProductID { return li.productID }

func (li *CartLineItem) Quantity() Quantity { return li.quantity }

func (li *CartLineItem) UnitPrice() Money { return li.unitPrice }

func (li *CartLineItem) IsFreebie() bool { return li.isFreebie }

// FreebieSource returns the product that triggered this freebie item; the
// second return is false for regular items.
func (li *CartLineItem) FreebieSource() (ProductID, bool) {
	return li.freebieSource, li.isFreebie
}

// LineTotal is unit price times quantity; always zero for freebie items
// regardless of the stored unit price.
func (li *CartLineItem) LineTotal() Money {
	if li.isFreebie {
		return ZeroMoney(li.unitPrice.Currency())
	}
	return li.unitPrice.MulQuantity(li.quantity)
}
