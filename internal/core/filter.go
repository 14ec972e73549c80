package core

import (
	"fmt"
	"sort"
	"strings"
)

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start Date
	End   Date
}

// Contains reports whether d lies in [Start, End].
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// Filter narrows an owner's expenses. Zero-valued fields impose no constraint;
// active fields combine with AND.
type Filter struct {
	Range         *DateRange
	Category      string
	PaymentMethod string
	Search        string
}

// NewFilter builds a Filter from raw query values. A date range must have
// both bounds, both must parse, and start must not be after end; anything
// else is rejected rather than ignored.
func NewFilter(start, end, category, paymentMethod, search string) (Filter, error) {
	f := Filter{
		Category:      strings.TrimSpace(category),
		PaymentMethod: strings.TrimSpace(paymentMethod),
		Search:        strings.TrimSpace(search),
	}
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return f, nil
	case start == "" || end == "":
		return Filter{}, ErrIncompleteDateRange
	}
	s, err := ParseDate(start)
	if err != nil {
		return Filter{}, fmt.Errorf("start date: %w", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return Filter{}, fmt.Errorf("end date: %w", err)
	}
	if s.After(e.Time) {
		return Filter{}, ErrInvertedDateRange
	}
	f.Range = &DateRange{Start: s, End: e}
	return f, nil
}

// Match reports whether e satisfies every active dimension of f.
func (f Filter) Match(e Expense) bool {
	if f.Range != nil && !f.Range.Contains(e.Date) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.PaymentMethod != "" && e.PaymentMethod != f.PaymentMethod {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		return strings.Contains(strings.ToLower(e.Category), needle) ||
			strings.Contains(strings.ToLower(e.PaymentMethod), needle) ||
			strings.Contains(strings.ToLower(e.Description), needle)
	}
	return true
}

// Apply returns the expenses matching f. The input slice is not modified.
func (f Filter) Apply(expenses []Expense) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// SortByDateDesc orders expenses newest date first. Expenses must be passed
// in insertion order; equal dates keep the most recently inserted first.
func SortByDateDesc(expenses []Expense) {
	// Reverse first so a stable sort yields newest insertion first on ties.
	for i, j := 0, len(expenses)-1; i < j; i, j = i+1, j-1 {
		expenses[i], expenses[j] = expenses[j], expenses[i]
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date.Time)
	})
}
