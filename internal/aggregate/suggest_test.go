package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fintrack/internal/core"
)

func TestSuggest(t *testing.T) {
	now := time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		expenses []core.Expense
		want     []string
	}{
		{
			name: "empty",
			want: []string{NoExpensesMessage},
		},
		{
			name: "increase and heavy share",
			expenses: []core.Expense{
				exp(10000, "food", "2024-05-10", "Cash"),
				exp(15000, "food", "2024-06-10", "Cash"),
			},
			want: []string{
				"Food expenses increased 50% this month.",
				"Consider reducing food expenses by 15%.",
			},
		},
		{
			name: "decrease",
			expenses: []core.Expense{
				exp(10000, "Transport", "2024-05-10", "Cash"),
				exp(5000, "Transport", "2024-06-10", "Cash"),
				exp(100000, "Bills", "2023-01-10", "Cash"),
			},
			want: []string{"Good job! Transport expenses decreased 50% this month."},
		},
		{
			name: "new category this month",
			expenses: []core.Expense{
				exp(1050, "Shopping", "2024-06-01", "Cash"),
				exp(100000, "Bills", "2023-01-10", "Cash"),
			},
			want: []string{"You spent 10.50 on Shopping this month."},
		},
		{
			name: "stable",
			expenses: []core.Expense{
				exp(10000, "Food", "2024-05-10", "Cash"),
				exp(10500, "Food", "2024-06-10", "Cash"),
				exp(900000, "Bills", "2023-01-10", "Cash"),
			},
			want: []string{StableMessage},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Suggest(tc.expenses, now))
		})
	}
}

func TestSuggestOrdersCategoriesByName(t *testing.T) {
	now := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	got := Suggest([]core.Expense{
		exp(100, "Transport", "2024-06-01", "Cash"),
		exp(100, "Bills", "2024-06-01", "Cash"),
	}, now)
	assert.Equal(t, []string{
		"You spent 1.00 on Bills this month.",
		"Consider reducing Bills expenses by 15%.",
		"You spent 1.00 on Transport this month.",
		"Consider reducing Transport expenses by 15%.",
	}, got)
}
