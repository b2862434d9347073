package domain

import "fmt"

// RuleState describes a freebie rule's effect on a cart.
type RuleState string

const (
	// RuleStateInactive - the rule is not applied to the cart.
	RuleStateInactive RuleState = "inactive"
	// RuleStateDormant - the rule is applied but its trigger product is not a
	// regular item, so no freebie is materialized.
	RuleStateDormant RuleState = "dormant"
	// RuleStateActive - the rule is applied and its freebie item exists.
	RuleStateActive RuleState = "active"
)

// CanApplyFreebieRule reports whether the rule would materialize a freebie
// right now: the trigger is bought regularly and the freebie product is not.
func CanApplyFreebieRule(cart *Cart, rule FreebieRule) bool {
	return cart.isRegularItem(rule.TriggerProduct()) && !cart.isRegularItem(rule.FreebieProduct())
}

// FindRuleConflicts checks a candidate rule against the already-active ones:
// duplicate names, identical trigger-freebie pairings and two-rule cycles
// (A grants B free while B grants A free). An empty result means the
// candidate may be applied.
func FindRuleConflicts(existing []FreebieRule, candidate FreebieRule) []string {
	var conflicts []string
	for _, r := range existing {
		if r.Name() == candidate.Name() {
			conflicts = append(conflicts, fmt.Sprintf("rule %q already exists", candidate.Name()))
		}
		if r.TriggerProduct() == candidate.TriggerProduct() && r.FreebieProduct() == candidate.FreebieProduct() {
			conflicts = append(conflicts, fmt.Sprintf("rule %q duplicates the %s->%s pairing of rule %q",
				candidate.Name(), candidate.TriggerProduct(), candidate.FreebieProduct(), r.Name()))
		}
		if r.TriggerProduct() == candidate.FreebieProduct() && r.FreebieProduct() == candidate.TriggerProduct() {
			conflicts = append(conflicts, fmt.Sprintf("rule %q forms a circular pairing with rule %q (%s<->%s)",
				candidate.Name(), r.Name(), candidate.TriggerProduct(), candidate.FreebieProduct()))
		}
	}
	return conflicts
}

// FreebieRuleState classifies the rule against the cart's current items.
func FreebieRuleState(cart *Cart, rule FreebieRule) RuleState {
	if _, ok := cart.rules[rule.Name()]; !ok {
		return RuleStateInactive
	}
	for _, item := range cart.FreebieItems() {
		src, _ := item.FreebieSource()
		if item.ProductID() == rule.FreebieProduct() && src == rule.TriggerProduct() {
			return RuleStateActive
		}
	}
	return RuleStateDormant
}

// ActiveFreebie pairs a materialized freebie item with the rule that granted
// it and the money the customer saved on it.
type ActiveFreebie struct {
	Rule    FreebieRule
	Item    CartLineItem
	Savings Money
}

// ActiveFreebies matches every freebie item in the cart to the rule whose
// trigger-freebie pairing produced it. Savings come from the item's stored
// unit price, which is zero by construction for freebie items.
func ActiveFreebies(cart *Cart) []ActiveFreebie {
	var out []ActiveFreebie
	for _, item := range cart.FreebieItems() {
		src, _ := item.FreebieSource()
		for _, rule := range cart.FreebieRules() {
			if rule.TriggerProduct() == src && rule.FreebieProduct() == item.ProductID() {
				out = append(out, ActiveFreebie{
					Rule:    rule,
					Item:    item,
					Savings: item.UnitPrice().MulQuantity(item.Quantity()),
				})
				break
			}
		}
	}
	return out
}

// TotalFreebieSavings sums the savings across the cart's active freebies.
func TotalFreebieSavings(cart *Cart) Money {
	cur, ok := cart.currency()
	if !ok {
		cur = DefaultCurrency
	}
	total := ZeroMoney(cur)
	for _, f := range ActiveFreebies(cart) {
		// freebie items share the cart currency by construction
		total, _ = total.Add(f.Savings)
	}
	return total
}
