package services

import (
	"context"

	"fintrack/internal/aggregate"
	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// alertNotifier recomputes the owner's current month after a change and
// publishes one budget.alert event per category at warning or above.
type alertNotifier struct {
	deps   Deps
	logger *log.Logger
}

func newAlertNotifier(deps Deps) *alertNotifier {
	return &alertNotifier{deps: deps, logger: deps.Logger.WithComponent(log.ComponentBudget)}
}

func (n *alertNotifier) notify(ctx context.Context, userID string) {
	if n.deps.Budgets == nil {
		return
	}
	period := core.CurrentPeriod(n.deps.Now())
	budgets, err := n.deps.Budgets.ListBudgets(ctx, userID)
	if err != nil {
		n.logger.WarnContext(ctx, "Skipping budget alerts", log.FieldUserID, userID, log.FieldError, err)
		return
	}
	if len(budgets) == 0 {
		return
	}
	f := core.Filter{Range: &core.DateRange{Start: period.Start(), End: period.End()}}
	expenses, err := n.deps.Expenses.ListExpenses(ctx, userID, f)
	if err != nil {
		n.logger.WarnContext(ctx, "Skipping budget alerts", log.FieldUserID, userID, log.FieldError, err)
		return
	}

	summary := aggregate.Summarize(expenses, budgets, period, aggregate.Options{})
	for _, category := range summary.Alerts() {
		st := summary.PerCategory[category]
		n.deps.Metrics.BudgetAlert(string(st.Alert))
		n.logger.InfoContext(ctx, "Budget alert",
			append([]any{log.FieldUserID, userID},
				log.NewFields().WithBudgetAlert(category, string(st.Alert), st.PercentUsed).ToSlice()...)...)
		publish(ctx, n.deps, n.logger, amqp.NewAlertEvent(userID, amqp.AlertPayload{
			Period:      period.String(),
			Category:    category,
			Spent:       st.Spent,
			Limit:       st.Limit,
			PercentUsed: st.PercentUsed,
			Level:       string(st.Alert),
		}))
	}
}
