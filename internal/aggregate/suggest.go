package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"fintrack/internal/core"
)

const (
	increaseThreshold = 20.0
	decreaseThreshold = -15.0
	heavyShare        = 0.2
)

const (
	NoExpensesMessage = "No expenses to analyze."
	StableMessage     = "Spending is stable. Keep it up!"
)

// Suggest compares each category's spend in the month containing now with
// the previous month and returns plain-language hints. Categories are
// visited in name order.
func Suggest(expenses []core.Expense, now time.Time) []string {
	if len(expenses) == 0 {
		return []string{NoExpensesMessage}
	}

	current := core.CurrentPeriod(now)
	previous := current.AddMonths(-1)

	curr := SumBy(InPeriod(expenses, current), func(e core.Expense) string { return e.Category })
	prev := SumBy(InPeriod(expenses, previous), func(e core.Expense) string { return e.Category })

	var total int64
	seen := make(map[string]struct{})
	var categories []string
	for _, e := range expenses {
		total += e.Amount.Cents
		if _, ok := seen[e.Category]; !ok {
			seen[e.Category] = struct{}{}
			categories = append(categories, e.Category)
		}
	}
	sort.Strings(categories)

	var out []string
	for _, cat := range categories {
		c, p := curr[cat].Cents, prev[cat].Cents
		switch {
		case p > 0:
			change := Percent(c-p, p)
			if change > increaseThreshold {
				out = append(out, fmt.Sprintf("%s expenses increased %.0f%% this month.", capitalize(cat), change))
			} else if change < decreaseThreshold {
				out = append(out, fmt.Sprintf("Good job! %s expenses decreased %.0f%% this month.", capitalize(cat), math.Abs(change)))
			}
		case c > 0:
			out = append(out, fmt.Sprintf("You spent %s on %s this month.", curr[cat], cat))
		}
		if c > 0 && float64(c) > heavyShare*float64(total) {
			out = append(out, fmt.Sprintf("Consider reducing %s expenses by 15%%.", cat))
		}
	}

	if len(out) == 0 {
		return []string{StableMessage}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
