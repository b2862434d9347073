package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cart is the aggregate root: it exclusively owns its line items, discounts
// and freebie rules. Freebie line items are derived state and are recomputed
// from scratch after every structural mutation; callers never create or edit
// them directly. Insertion order is preserved for items (display), discounts
// (application order) and rules (evaluation order).
type Cart struct {
	id string

	items     map[ProductID]*CartLineItem
	itemOrder []ProductID

	discounts     map[string]Discount
	discountOrder []string

	rules     map[string]FreebieRule
	ruleOrder []string

	createdAt time.Time
	updatedAt time.Time
}

// NewCart creates an empty cart with a fresh identifier.
func NewCart() *Cart {
	now := time.Now()
	return &Cart{
		id:        uuid.NewString(),
		items:     make(map[ProductID]*CartLineItem),
		discounts: make(map[string]Discount),
		rules:     make(map[string]FreebieRule),
		createdAt: now,
		updatedAt: now,
	}
}

func (c *Cart) ID() string { return c.id }

func (c *Cart) CreatedAt() time.Time { return c.createdAt }

func (c *Cart) UpdatedAt() time.Time { return c.updatedAt }

// AddItem adds a regular line item. Adding a product that is already a
// regular item merges the quantities; adding a product that currently exists
// only as a freebie converts it to a regular purchase (a regular purchase
// always wins). All regular items must share one currency.
func (c *Cart) AddItem(productID ProductID, quantity Quantity, unitPrice Money) error {
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrValidation)
	}
	if quantity.IsZero() {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if cur, ok := c.currency(); ok && cur != unitPrice.Currency() {
		return fmt.Errorf("%w: cart currency is %s, item priced in %s", ErrValidation, cur, unitPrice.Currency())
	}

	if existing, ok := c.items[productID]; ok && !existing.isFreebie {
		merged, err := existing.quantity.Add(quantity)
		if err != nil {
			return err
		}
		existing.quantity = merged
	} else {
		item, err := newLineItem(productID, quantity, unitPrice)
		if err != nil {
			return err
		}
		if !ok {
			c.itemOrder = append(c.itemOrder, productID)
		}
		c.items[productID] = item
	}

	c.reevaluateFreebies()
	c.touch()
	return nil
}

// UpdateItem replaces the quantity of a regular line item. Freebie quantities
// are derived from rules and cannot be set directly.
func (c *Cart) UpdateItem(productID ProductID, quantity Quantity) error {
	if quantity.IsZero() {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	item, ok := c.items[productID]
	if !ok {
		return fmt.Errorf("%w: item %s is not in the cart", ErrNotFound, productID)
	}
	if item.isFreebie {
		return fmt.Errorf("%w: freebie item %s quantity is derived and cannot be updated", ErrInvalidOperation, productID)
	}
	item.quantity = quantity

	c.reevaluateFreebies()
	c.touch()
	return nil
}

// RemoveItem removes a line item. Freebie items sourced from the removed
// product are removed unconditionally before re-evaluation.
func (c *Cart) RemoveItem(productID ProductID) error {
	if _, ok := c.items[productID]; !ok {
		return fmt.Errorf("%w: item %s is not in the cart", ErrNotFound, productID)
	}
	c.deleteItem(productID)
	for _, pid := range c.orderedProducts() {
		item := c.items[pid]
		if item.isFreebie && item.freebieSource == productID {
			c.deleteItem(pid)
		}
	}

	c.reevaluateFreebies()
	c.touch()
	return nil
}

// Clear empties items, discounts and freebie rules in one step.
func (c *Cart) Clear() {
	c.items = make(map[ProductID]*CartLineItem)
	c.itemOrder = nil
	c.discounts = make(map[string]Discount)
	c.discountOrder = nil
	c.rules = make(map[string]FreebieRule)
	c.ruleOrder = nil
	c.touch()
}

// ApplyDiscount activates a discount. Discounts do not affect freebies, so no
// re-evaluation runs.
func (c *Cart) ApplyDiscount(d Discount) error {
	if _, ok := c.discounts[d.Name()]; ok {
		return fmt.Errorf("%w: discount %q is already applied", ErrConflict, d.Name())
	}
	c.discounts[d.Name()] = d
	c.discountOrder = append(c.discountOrder, d.Name())
	c.touch()
	return nil
}

func (c *Cart) RemoveDiscount(name string) error {
	if _, ok := c.discounts[name]; !ok {
		return fmt.Errorf("%w: discount %q is not applied", ErrNotFound, name)
	}
	delete(c.discounts, name)
	c.discountOrder = removeString(c.discountOrder, name)
	c.touch()
	return nil
}

// ApplyFreebieRule activates a rule and re-evaluates freebies.
func (c *Cart) ApplyFreebieRule(r FreebieRule) error {
	if _, ok := c.rules[r.Name()]; ok {
		return fmt.Errorf("%w: freebie rule %q is already applied", ErrConflict, r.Name())
	}
	c.rules[r.Name()] = r
	c.ruleOrder = append(c.ruleOrder, r.Name())

	c.reevaluateFreebies()
	c.touch()
	return nil
}

// RemoveFreebieRule removes the rule and the freebie items it sourced.
// Removal is final for that rule; remaining rules are not re-evaluated here.
func (c *Cart) RemoveFreebieRule(name string) error {
	rule, ok := c.rules[name]
	if !ok {
		return fmt.Errorf("%w: freebie rule %q is not applied", ErrNotFound, name)
	}
	delete(c.rules, name)
	c.ruleOrder = removeString(c.ruleOrder, name)
	for _, pid := range c.orderedProducts() {
		item := c.items[pid]
		if item.isFreebie && item.freebieSource == rule.TriggerProduct() {
			c.deleteItem(pid)
		}
	}
	c.touch()
	return nil
}

// Items returns copies of all line items in display order.
func (c *Cart) Items() []CartLineItem {
	out := make([]CartLineItem, 0, len(c.itemOrder))
	for _, pid := range c.itemOrder {
		out = append(out, *c.items[pid])
	}
	return out
}

// RegularItems returns copies of the non-freebie line items in display order.
func (c *Cart) RegularItems() []CartLineItem {
	var out []CartLineItem
	for _, pid := range c.itemOrder {
		if item := c.items[pid]; !item.isFreebie {
			out = append(out, *item)
		}
	}
	return out
}

// FreebieItems returns copies of the derived freebie line items.
func (c *Cart) FreebieItems() []CartLineItem {
	var out []CartLineItem
	for _, pid := range c.itemOrder {
		if item := c.items[pid]; item.isFreebie {
			out = append(out, *item)
		}
	}
	return out
}

// UniqueItemCount is the number of line items, freebies included.
func (c *Cart) UniqueItemCount() int { return len(c.items) }

// TotalItemCount is the summed quantity across all line items.
func (c *Cart) TotalItemCount() int {
	total := 0
	for _, item := range c.items {
		total += item.quantity.Value()
	}
	return total
}

// IsEmpty reports whether the cart has zero regular items. A cart holding
// only freebie leftovers still counts as empty.
func (c *Cart) IsEmpty() bool {
	for _, item := range c.items {
		if !item.isFreebie {
			return false
		}
	}
	return true
}

// Subtotal sums the regular line totals before discounts. An empty cart has a
// zero subtotal in the default currency.
func (c *Cart) Subtotal() Money {
	cur, ok := c.currency()
	if !ok {
		return ZeroMoney(DefaultCurrency)
	}
	subtotal := ZeroMoney(cur)
	for _, pid := range c.itemOrder {
		item := c.items[pid]
		if item.isFreebie {
			continue
		}
		// currencies match by the AddItem invariant
		subtotal, _ = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// TotalDiscount applies the active discounts sequentially, each against the
// subtotal remaining after the previous one.
func (c *Cart) TotalDiscount() Money {
	total, err := CalculateSequentialDiscount(c.Subtotal(), c.Discounts())
	if err != nil {
		// active discounts passed construction validation, so the
		// sequential calculation cannot reject them
		return ZeroMoney(c.Subtotal().Currency())
	}
	return total
}

// Total is subtotal minus total discount, floored at zero.
func (c *Cart) Total() Money {
	subtotal := c.Subtotal()
	total, err := subtotal.Sub(c.TotalDiscount())
	if err != nil {
		return ZeroMoney(subtotal.Currency())
	}
	return total
}

// Discounts returns the active discounts in application order.
func (c *Cart) Discounts() []Discount {
	out := make([]Discount, 0, len(c.discountOrder))
	for _, name := range c.discountOrder {
		out = append(out, c.discounts[name])
	}
	return out
}

// FreebieRules returns the active rules in evaluation order.
func (c *Cart) FreebieRules() []FreebieRule {
	out := make([]FreebieRule, 0, len(c.ruleOrder))
	for _, name := range c.ruleOrder {
		out = append(out, c.rules[name])
	}
	return out
}

// Validate lists human-readable issues with the currently active discounts
// and rules. An empty result means nothing is suspicious.
func (c *Cart) Validate() []string {
	var issues []string
	for _, d := range c.Discounts() {
		issues = append(issues, ValidateDiscount(d)...)
	}
	rules := c.FreebieRules()
	for i, r := range rules {
		issues = append(issues, FindRuleConflicts(rules[:i], r)...)
	}
	return issues
}

// reevaluateFreebies rebuilds the derived freebie items from scratch: only
// the regular items survive, then each rule in evaluation order materializes
// its freebie if the trigger is a regular item and the freebie product is not
// already bought regularly. When two rules grant the same freebie product the
// later rule wins.
func (c *Cart) reevaluateFreebies() {
	regularOrder := make([]ProductID, 0, len(c.itemOrder))
	for _, pid := range c.itemOrder {
		if !c.items[pid].isFreebie {
			regularOrder = append(regularOrder, pid)
		} else {
			delete(c.items, pid)
		}
	}
	c.itemOrder = regularOrder

	cur, ok := c.currency()
	if !ok {
		cur = DefaultCurrency
	}
	for _, name := range c.ruleOrder {
		rule := c.rules[name]
		if !c.isRegularItem(rule.TriggerProduct()) || c.isRegularItem(rule.FreebieProduct()) {
			continue
		}
		pid := rule.FreebieProduct()
		if _, exists := c.items[pid]; !exists {
			c.itemOrder = append(c.itemOrder, pid)
		}
		c.items[pid] = newFreebieLineItem(pid, rule.FreebieQuantity(), cur, rule.TriggerProduct())
	}
}

func (c *Cart) isRegularItem(productID ProductID) bool {
	item, ok := c.items[productID]
	return ok && !item.isFreebie
}

// currency returns the shared currency of the regular items, false if there
// are none.
func (c *Cart) currency() (string, bool) {
	for _, pid := range c.itemOrder {
		if item := c.items[pid]; !item.isFreebie {
			return item.unitPrice.Currency(), true
		}
	}
	return "", false
}

func (c *Cart) deleteItem(productID ProductID) {
	delete(c.items, productID)
	for i, pid := range c.itemOrder {
		if pid == productID {
			c.itemOrder = append(c.itemOrder[:i], c.itemOrder[i+1:]...)
			return
		}
	}
}

func (c *Cart) orderedProducts() []ProductID {
	out := make([]ProductID, len(c.itemOrder))
	copy(out, c.itemOrder)
	return out
}

func (c *Cart) touch() {
	c.updatedAt = time.Now()
}

func removeString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
