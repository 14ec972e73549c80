package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleExpenses() []Expense {
	return []Expense{
		{ID: "1", Amount: Money{Cents: 1000}, Category: "Food", PaymentMethod: "Cash", Date: NewDate(2024, 6, 5), Description: "groceries"},
		{ID: "2", Amount: Money{Cents: 4000}, Category: "Food", PaymentMethod: "UPI", Date: NewDate(2024, 6, 10)},
		{ID: "3", Amount: Money{Cents: 2500}, Category: "Bills", PaymentMethod: "Net Banking", Date: NewDate(2024, 5, 31), Description: "paid via Upi app"},
		{ID: "4", Amount: Money{Cents: 700}, Category: "Transport", PaymentMethod: "Debit Card", Date: NewDate(2024, 6, 10), Description: "metro"},
		{ID: "5", Amount: Money{Cents: 300}, Category: "Other", PaymentMethod: "Credit Card", Date: NewDate(2024, 7, 1), Description: "SUPIMA socks"},
	}
}

func ids(es []Expense) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestNewFilterFailsClosed(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		want       error
	}{
		{"only start", "2024-06-01", "", ErrIncompleteDateRange},
		{"only end", "", "2024-06-30", ErrIncompleteDateRange},
		{"malformed start", "06/01/2024", "2024-06-30", ErrInvalidDate},
		{"malformed end", "2024-06-01", "tomorrow", ErrInvalidDate},
		{"inverted", "2024-06-30", "2024-06-01", ErrInvertedDateRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFilter(tc.start, tc.end, "", "", "")
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	f, err := NewFilter("", "", "", "", "")
	require.NoError(t, err)
	assert.Nil(t, f.Range)
}

func TestFilterDateRangeInclusive(t *testing.T) {
	f, err := NewFilter("2024-06-05", "2024-06-10", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "4"}, ids(f.Apply(sampleExpenses())))

	single, err := NewFilter("2024-06-10", "2024-06-10", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4"}, ids(single.Apply(sampleExpenses())))
}

func TestFilterExactMatches(t *testing.T) {
	f, err := NewFilter("", "", "Food", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(f.Apply(sampleExpenses())))

	f, err = NewFilter("", "", "food", "", "")
	require.NoError(t, err)
	assert.Empty(t, f.Apply(sampleExpenses()), "category is an exact match")

	f, err = NewFilter("", "", "Food", "UPI", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(f.Apply(sampleExpenses())))
}

func TestFilterSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	f, err := NewFilter("", "", "", "", "upi")
	require.NoError(t, err)
	got := f.Apply(sampleExpenses())
	// 2 by payment method, 3 by description, 5 by "SUPIMA".
	assert.Equal(t, []string{"2", "3", "5"}, ids(got))

	for _, e := range sampleExpenses() {
		if !contains(ids(got), e.ID) {
			assert.False(t, f.Match(e), e.ID)
		}
	}

	f, err = NewFilter("", "", "", "", "BILLS")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(f.Apply(sampleExpenses())))
}

func TestFilterCombinesWithAnd(t *testing.T) {
	f, err := NewFilter("2024-06-01", "2024-06-30", "", "", "upi")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(f.Apply(sampleExpenses())))
}

func TestSortByDateDesc(t *testing.T) {
	es := sampleExpenses()
	SortByDateDesc(es)
	// 2 and 4 share a date; 4 was inserted later so it comes first.
	assert.Equal(t, []string{"5", "4", "2", "1", "3"}, ids(es))
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
