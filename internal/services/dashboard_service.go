package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Dashboard is the summary for one period plus the months that have data.
type Dashboard struct {
	aggregate.Summary
	AvailableMonths []core.Period `json:"availableMonths"`
}

// DashboardService loads a user's data and runs the aggregation engine.
type DashboardService struct {
	deps   Deps
	topN   int
	logger *log.Logger
}

func NewDashboardService(deps Deps, topN int) *DashboardService {
	deps = deps.withDefaults()
	return &DashboardService{
		deps:   deps,
		topN:   topN,
		logger: deps.Logger.WithComponent(log.ComponentDashboard),
	}
}

// DefaultPeriod is the calendar month containing the service clock's now.
func (s *DashboardService) DefaultPeriod() core.Period {
	return core.CurrentPeriod(s.deps.Now())
}

func (s *DashboardService) load(ctx context.Context, userID string) ([]core.Expense, []core.Budget, error) {
	var (
		expenses []core.Expense
		budgets  []core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.deps.Expenses.ListExpenses(gctx, userID, core.Filter{})
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budgets, err = s.deps.Budgets.ListBudgets(gctx, userID)
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return expenses, budgets, nil
}

// Summary aggregates the owner's data for period. topN overrides the
// configured number of payment methods when positive.
func (s *DashboardService) Summary(ctx context.Context, userID string, period core.Period, topN int) (Dashboard, error) {
	expenses, budgets, err := s.load(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	if topN <= 0 {
		topN = s.topN
	}
	summary := aggregate.Summarize(expenses, budgets, period, aggregate.Options{TopN: topN})
	s.logger.DebugContext(ctx, "Dashboard computed",
		log.FieldUserID, userID,
		log.FieldPeriod, period.String(),
		"expenses", len(summary.PeriodExpenses))
	return Dashboard{
		Summary:         summary,
		AvailableMonths: aggregate.AvailableMonths(expenses),
	}, nil
}

// Suggestions returns spending hints comparing this month with the last.
func (s *DashboardService) Suggestions(ctx context.Context, userID string) ([]string, error) {
	expenses, err := s.deps.Expenses.ListExpenses(ctx, userID, core.Filter{})
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return aggregate.Suggest(expenses, s.deps.Now()), nil
}
