package core

import (
	"slices"
	"strings"
)

// Taxonomy is the allow-list of categories and payment methods an expense
// or budget may use.
type Taxonomy struct {
	Categories     []string
	PaymentMethods []string
}

var (
	DefaultCategories     = []string{"Food", "Transport", "Shopping", "Bills", "Other"}
	DefaultPaymentMethods = []string{"Cash", "Credit Card", "Debit Card", "UPI", "Net Banking"}
)

// DefaultTaxonomy returns the built-in categories and payment methods.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Categories:     slices.Clone(DefaultCategories),
		PaymentMethods: slices.Clone(DefaultPaymentMethods),
	}
}

// ParseList splits a comma-separated list, trimming blanks and dropping
// empty and duplicate entries while keeping order.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(out, part) {
			continue
		}
		out = append(out, part)
	}
	return out
}

// HasCategory reports whether name is an allowed category (exact match).
func (t Taxonomy) HasCategory(name string) bool {
	return slices.Contains(t.Categories, name)
}

// HasPaymentMethod reports whether name is an allowed payment method (exact match).
func (t Taxonomy) HasPaymentMethod(name string) bool {
	return slices.Contains(t.PaymentMethods, name)
}
