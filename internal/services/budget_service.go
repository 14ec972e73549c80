package services

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// BudgetService sets and lists monthly category limits.
type BudgetService struct {
	deps   Deps
	alerts *alertNotifier
	logger *log.Logger
}

func NewBudgetService(deps Deps) *BudgetService {
	deps = deps.withDefaults()
	return &BudgetService{
		deps:   deps,
		alerts: newAlertNotifier(deps),
		logger: deps.Logger.WithComponent(log.ComponentBudget),
	}
}

// Set creates or replaces the owner's limit for category in one atomic step.
func (s *BudgetService) Set(ctx context.Context, userID, category string, limit core.Money) (core.Budget, error) {
	b := core.Budget{UserID: userID, Category: strings.TrimSpace(category), MonthlyLimit: limit}
	if err := b.Validate(s.deps.Taxonomy); err != nil {
		return core.Budget{}, err
	}
	saved, err := s.deps.Budgets.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}
	s.deps.Metrics.BudgetUpserted()
	s.logger.InfoContext(ctx, "Budget set",
		log.FieldUserID, userID,
		log.FieldCategory, saved.Category,
		log.FieldAmountCents, saved.MonthlyLimit.Cents,
		log.FieldOperation, log.OpUpsert)
	s.alerts.notify(ctx, userID)
	return saved, nil
}

// List returns the owner's budgets ordered by category.
func (s *BudgetService) List(ctx context.Context, userID string) ([]core.Budget, error) {
	out, err := s.deps.Budgets.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}
