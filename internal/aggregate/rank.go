package aggregate

import (
	"sort"

	"fintrack/internal/core"
)

// Rank orders totals by amount descending. Equal amounts are ordered by
// name ascending so the result never depends on map iteration.
func Rank(totals map[string]core.Money) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(totals))
	for name, amt := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Top returns at most n entries of Rank(totals).
func Top(totals map[string]core.Money, n int) []core.CategoryAmount {
	ranked := Rank(totals)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
