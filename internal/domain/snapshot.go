package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot records are the plain serialized form of the aggregate, suitable
// for storage or transmission. Field names are stable; round-tripping a cart
// through Snapshot and FromSnapshot reproduces an equal aggregate.

type CartSnapshot struct {
	ID           string                `json:"id"`
	Items        []LineItemSnapshot    `json:"items"`
	Discounts    []DiscountSnapshot    `json:"discounts"`
	FreebieRules []FreebieRuleSnapshot `json:"freebieRules"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

type LineItemSnapshot struct {
	ProductID     string `json:"productId"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unitPrice"`
	Currency      string `json:"currency"`
	IsFreebie     bool   `json:"isFreebie"`
	FreebieSource string `json:"freebieSource,omitempty"`
}

type DiscountSnapshot struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
	CapAmount string `json:"capAmount,omitempty"`
}

type FreebieRuleSnapshot struct {
	Name            string `json:"name"`
	TriggerProduct  string `json:"triggerProduct"`
	FreebieProduct  string `json:"freebieProduct"`
	FreebieQuantity int    `json:"freebieQuantity"`
}

// Snapshot produces the plain record form of the cart. Items, discounts and
// rules keep their insertion order.
func (c *Cart) Snapshot() CartSnapshot {
	snap := CartSnapshot{
		ID:           c.id,
		Items:        make([]LineItemSnapshot, 0, len(c.itemOrder)),
		Discounts:    make([]DiscountSnapshot, 0, len(c.discountOrder)),
		FreebieRules: make([]FreebieRuleSnapshot, 0, len(c.ruleOrder)),
		CreatedAt:    c.createdAt,
		UpdatedAt:    c.updatedAt,
	}
	for _, item := range c.Items() {
		li := LineItemSnapshot{
			ProductID: item.ProductID().String(),
			Quantity:  item.Quantity().Value(),
			UnitPrice: item.UnitPrice().Amount().String(),
			Currency:  item.UnitPrice().Currency(),
			IsFreebie: item.IsFreebie(),
		}
		if src, ok := item.FreebieSource(); ok {
			li.FreebieSource = src.String()
		}
		snap.Items = append(snap.Items, li)
	}
	for _, d := range c.Discounts() {
		ds := DiscountSnapshot{
			Name:   d.Name(),
			Kind:   string(d.Kind()),
			Amount: d.Amount().String(),
		}
		if capAmount, ok := d.Cap(); ok {
			ds.CapAmount = capAmount.String()
		}
		snap.Discounts = append(snap.Discounts, ds)
	}
	for _, r := range c.FreebieRules() {
		snap.FreebieRules = append(snap.FreebieRules, FreebieRuleSnapshot{
			Name:            r.Name(),
			TriggerProduct:  r.TriggerProduct().String(),
			FreebieProduct:  r.FreebieProduct().String(),
			FreebieQuantity: r.FreebieQuantity().Value(),
		})
	}
	return snap
}

// FromSnapshot rehydrates a cart from its persisted record. Every value goes
// back through its constructor, so a tampered snapshot fails with a
// validation error. Items are loaded verbatim; the snapshot is trusted to be
// the consistent state the aggregate last produced.
func FromSnapshot(snap CartSnapshot) (*Cart, error) {
	if snap.ID == "" {
		return nil, fmt.Errorf("%w: snapshot requires a cart id", ErrValidation)
	}
	cart := &Cart{
		id:        snap.ID,
		items:     make(map[ProductID]*CartLineItem),
		discounts: make(map[string]Discount),
		rules:     make(map[string]FreebieRule),
		createdAt: snap.CreatedAt,
		updatedAt: snap.UpdatedAt,
	}

	for _, li := range snap.Items {
		pid, err := NewProductID(li.ProductID)
		if err != nil {
			return nil, err
		}
		qty, err := NewQuantity(li.Quantity)
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(li.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("%w: item %s unit price: %v", ErrValidation, li.ProductID, err)
		}
		price, err := NewMoney(amount, li.Currency)
		if err != nil {
			return nil, err
		}
		var item *CartLineItem
		if li.IsFreebie {
			if li.FreebieSource == "" {
				return nil, fmt.Errorf("%w: freebie item %s is missing its source product", ErrValidation, li.ProductID)
			}
			src, err2 := NewProductID(li.FreebieSource)
			if err2 != nil {
				return nil, err2
			}
			item = newFreebieLineItem(pid, qty, price.Currency(), src)
		} else {
			if item, err = newLineItem(pid, qty, price); err != nil {
				return nil, err
			}
		}
		if _, ok := cart.items[pid]; ok {
			return nil, fmt.Errorf("%w: duplicate item %s in snapshot", ErrValidation, pid)
		}
		cart.items[pid] = item
		cart.itemOrder = append(cart.itemOrder, pid)
	}

	for _, ds := range snap.Discounts {
		d, err := discountFromSnapshot(ds)
		if err != nil {
			return nil, err
		}
		if _, ok := cart.discounts[d.Name()]; ok {
			return nil, fmt.Errorf("%w: duplicate discount %q in snapshot", ErrValidation, d.Name())
		}
		cart.discounts[d.Name()] = d
		cart.discountOrder = append(cart.discountOrder, d.Name())
	}

	for _, rs := range snap.FreebieRules {
		trigger, err := NewProductID(rs.TriggerProduct)
		if err != nil {
			return nil, err
		}
		freebie, err := NewProductID(rs.FreebieProduct)
		if err != nil {
			return nil, err
		}
		qty, err := NewQuantity(rs.FreebieQuantity)
		if err != nil {
			return nil, err
		}
		rule, err := NewFreebieRule(rs.Name, trigger, freebie, qty)
		if err != nil {
			return nil, err
		}
		if _, ok := cart.rules[rule.Name()]; ok {
			return nil, fmt.Errorf("%w: duplicate freebie rule %q in snapshot", ErrValidation, rule.Name())
		}
		cart.rules[rule.Name()] = rule
		cart.ruleOrder = append(cart.ruleOrder, rule.Name())
	}

	return cart, nil
}

func discountFromSnapshot(ds DiscountSnapshot) (Discount, error) {
	amount, err := decimal.NewFromString(ds.Amount)
	if err != nil {
		return Discount{}, fmt.Errorf("%w: discount %q amount: %v", ErrValidation, ds.Name, err)
	}
	switch DiscountType(ds.Kind) {
	case DiscountFixed:
		return NewFixedDiscount(ds.Name, amount)
	case DiscountPercentage:
		capAmount := decimal.Zero
		if ds.CapAmount != "" {
			if capAmount, err = decimal.NewFromString(ds.CapAmount); err != nil {
				return Discount{}, fmt.Errorf("%w: discount %q cap: %v", ErrValidation, ds.Name, err)
			}
		}
		return NewPercentageDiscount(ds.Name, amount, capAmount)
	default:
		return Discount{}, fmt.Errorf("%w: unknown discount type %q", ErrValidation, ds.Kind)
	}
}
