// Package aggregate computes budget-versus-spend summaries from a user's
// expenses and budgets. Every function is pure and safe for concurrent use.
package aggregate

import (
	"sort"

	"fintrack/internal/core"
)

// Alert thresholds in percent of the monthly limit. A category at exactly
// a threshold belongs to the higher bucket.
const (
	WarningPercent  = 80.0
	ExceededPercent = 100.0
)

// TrendMonths is the length of the spend trend window.
const TrendMonths = 6

// DefaultTopPaymentMethods is how many payment methods Summarize ranks
// when Options leaves TopN unset.
const DefaultTopPaymentMethods = 3

// Alert classifies how much of a category budget has been consumed.
type Alert string

const (
	AlertNone     Alert = "none"
	AlertWarning  Alert = "warning"
	AlertExceeded Alert = "exceeded"
)

// Classify maps a percent-used value to an alert level.
func Classify(percent float64) Alert {
	switch {
	case percent >= ExceededPercent:
		return AlertExceeded
	case percent >= WarningPercent:
		return AlertWarning
	default:
		return AlertNone
	}
}

// CategoryStatus is the budget usage of one category.
type CategoryStatus struct {
	Spent       core.Money `json:"spent"`
	Limit       core.Money `json:"limit"`
	PercentUsed float64    `json:"percentUsed"`
	Alert       Alert      `json:"alert"`
}

// TrendPoint is the total spend of one calendar month.
type TrendPoint struct {
	Month core.Period `json:"month"`
	Total core.Money  `json:"total"`
}

// Summary is the derived view over one period. It is never persisted.
type Summary struct {
	Period             core.Period               `json:"period"`
	PeriodExpenses     []core.Expense            `json:"-"`
	SpendByCategory    map[string]core.Money     `json:"spendByCategory"`
	TotalSpend         core.Money                `json:"totalSpend"`
	TotalBudget        core.Money                `json:"totalBudget"`
	PercentUsedOverall float64                   `json:"percentUsedOverall"`
	PerCategory        map[string]CategoryStatus `json:"perCategory"`
	MostSpentCategory  string                    `json:"mostSpentCategory"`
	TopPaymentMethods  []core.CategoryAmount     `json:"topPaymentMethods"`
	Trend              []TrendPoint              `json:"trend"`
}

// Options tunes Summarize.
type Options struct {
	// TopN bounds TopPaymentMethods. Zero or negative means DefaultTopPaymentMethods.
	TopN int
}

// Summarize builds the summary of expenses and budgets for period. Inputs
// are assumed valid; absent categories count as zero spend.
func Summarize(expenses []core.Expense, budgets []core.Budget, period core.Period, opts Options) Summary {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopPaymentMethods
	}

	inPeriod := InPeriod(expenses, period)
	byCategory := SumBy(inPeriod, func(e core.Expense) string { return e.Category })
	byMethod := SumBy(inPeriod, func(e core.Expense) string { return e.PaymentMethod })

	var totalSpend int64
	for _, m := range byCategory {
		totalSpend += m.Cents
	}
	var totalBudget int64
	for _, b := range budgets {
		totalBudget += b.MonthlyLimit.Cents
	}

	perCategory := make(map[string]CategoryStatus, len(budgets))
	for _, b := range budgets {
		spent := byCategory[b.Category]
		pct := Percent(spent.Cents, b.MonthlyLimit.Cents)
		perCategory[b.Category] = CategoryStatus{
			Spent:       spent,
			Limit:       b.MonthlyLimit,
			PercentUsed: pct,
			Alert:       Classify(pct),
		}
	}

	var most string
	if ranked := Rank(byCategory); len(ranked) > 0 {
		most = ranked[0].Name
	}

	return Summary{
		Period:             period,
		PeriodExpenses:     inPeriod,
		SpendByCategory:    byCategory,
		TotalSpend:         core.Money{Cents: totalSpend},
		TotalBudget:        core.Money{Cents: totalBudget},
		PercentUsedOverall: Percent(totalSpend, totalBudget),
		PerCategory:        perCategory,
		MostSpentCategory:  most,
		TopPaymentMethods:  Top(byMethod, topN),
		Trend:              Trend(expenses, period, TrendMonths),
	}
}

// Alerts returns the categories at warning or exceeded level, sorted by name.
func (s Summary) Alerts() []string {
	var out []string
	for name, st := range s.PerCategory {
		if st.Alert != AlertNone {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Percent returns part/whole*100, or 0 when whole is not positive.
func Percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// InPeriod returns the expenses dated within period, in input order.
func InPeriod(expenses []core.Expense, period core.Period) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if period.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// SumBy totals amounts grouped by key.
func SumBy(expenses []core.Expense, key func(core.Expense) string) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, e := range expenses {
		k := key(e)
		out[k] = core.Money{Cents: out[k].Cents + e.Amount.Cents}
	}
	return out
}
