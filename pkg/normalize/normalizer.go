// Package normalize collapses high-cardinality SKU descriptions into a small
// set of stable display categories. Rules are ordered and first-match-wins,
// so mapping every (service, sku) pair is deterministic and total.
package normalize

import (
	"fmt"
	"strings"
)

// Normalizer maps (service, sku) pairs to display categories.
// Safe for concurrent use after construction.
type Normalizer struct {
	rules map[string][]Rule
}

// NewNormalizer builds a Normalizer with the built-in rule tables.
func NewNormalizer() *Normalizer {
	return &Normalizer{rules: DefaultRules()}
}

// NewNormalizerWithRules builds a Normalizer from explicit rule tables,
// typically loaded from configuration. A nil map behaves like no rules.
func NewNormalizerWithRules(rules map[string][]Rule) *Normalizer {
	if rules == nil {
		rules = map[string][]Rule{}
	}
	return &Normalizer{rules: rules}
}

// AddRules appends rules for a service after the existing ones, so built-in
// rules keep precedence over configured extensions.
func (n *Normalizer) AddRules(service string, rules []Rule) {
	n.rules[service] = append(n.rules[service], rules...)
}

// Normalize returns the display category for a SKU under a service.
//
// Services with a rule table get first-match-wins categorization and an
// "Other <service>" bucket for SKUs no rule claims. Services without rules
// keep the cleaned SKU description as its own category, so per-SKU detail
// survives for services nobody wrote rules for. Every input yields a
// non-empty label; cost is never dropped on the floor.
func (n *Normalizer) Normalize(service, sku string) string {
	service = strings.TrimSpace(service)
	cleaned := cleanSKU(sku)

	rules, hasRules := n.rules[service]
	if hasRules {
		// pad so boundary patterns like " ram " can match at the edges
		padded := " " + cleaned + " "
		for _, r := range rules {
			if r.matches(padded) {
				return r.Label
			}
		}
		return fallbackLabel(service)
	}

	if cleaned == "" {
		return fallbackLabel(service)
	}
	return strings.TrimSpace(sku)
}

// fallbackLabel is the catch-all bucket for a service
func fallbackLabel(service string) string {
	if service == "" {
		return "Other"
	}
	return fmt.Sprintf("Other %s", service)
}

// cleanSKU lowercases and collapses whitespace so rule patterns never have
// to care about casing or formatting noise in billing exports
func cleanSKU(sku string) string {
	return strings.Join(strings.Fields(strings.ToLower(sku)), " ")
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(haystack, strings.ToLower(needle))
}
