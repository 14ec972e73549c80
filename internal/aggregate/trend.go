package aggregate

import (
	"sort"

	"fintrack/internal/core"
)

// Trend sums every expense into the n calendar months ending at end
// (inclusive), oldest first. Months without expenses report zero.
func Trend(expenses []core.Expense, end core.Period, n int) []TrendPoint {
	if n <= 0 {
		return []TrendPoint{}
	}
	start := end.AddMonths(-(n - 1))
	points := make([]TrendPoint, n)
	for i := range points {
		points[i].Month = start.AddMonths(i)
	}
	for _, e := range expenses {
		p := e.Date.Period()
		if p.Before(start) || end.Before(p) {
			continue
		}
		i := (p.Year-start.Year)*12 + int(p.Month-start.Month)
		points[i].Total.Cents += e.Amount.Cents
	}
	return points
}

// AvailableMonths lists the distinct months present in expenses, newest first.
func AvailableMonths(expenses []core.Expense) []core.Period {
	seen := make(map[core.Period]struct{})
	var out []core.Period
	for _, e := range expenses {
		p := e.Date.Period()
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Before(out[i]) })
	return out
}
