// Package services orchestrates the stores, the aggregation engine and the
// event bus for each user-facing operation.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/store"
)

// Publisher sends events to the broker. *amqp.Client implements it.
type Publisher interface {
	Publish(ctx context.Context, ev amqp.Event) error
}

// Deps are shared by every service.
type Deps struct {
	Expenses  store.ExpenseStore
	Budgets   store.BudgetStore
	Publisher Publisher // optional
	Taxonomy  core.Taxonomy
	Metrics   *metrics.Metrics // optional
	Logger    *log.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = log.New(log.DefaultConfig())
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if len(d.Taxonomy.Categories) == 0 && len(d.Taxonomy.PaymentMethods) == 0 {
		d.Taxonomy = core.DefaultTaxonomy()
	}
	return d
}

// ExpenseInput is the user-editable part of an expense.
type ExpenseInput struct {
	Amount        core.Money
	Category      string
	Date          core.Date
	PaymentMethod string
	Description   string
}

func (in ExpenseInput) toExpense(userID string) core.Expense {
	return core.Expense{
		UserID:        userID,
		Amount:        in.Amount,
		Category:      strings.TrimSpace(in.Category),
		Date:          in.Date,
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		Description:   strings.TrimSpace(in.Description),
	}
}

// ExpenseService validates and persists expenses and announces changes.
type ExpenseService struct {
	deps   Deps
	alerts *alertNotifier
	logger *log.Logger
	events *log.StructuredLogger
}

func NewExpenseService(deps Deps) *ExpenseService {
	deps = deps.withDefaults()
	logger := deps.Logger.WithComponent(log.ComponentExpense)
	return &ExpenseService{
		deps:   deps,
		alerts: newAlertNotifier(deps),
		logger: logger,
		events: log.NewStructuredLogger(logger),
	}
}

// List returns the owner's expenses matching f, newest first.
func (s *ExpenseService) List(ctx context.Context, userID string, f core.Filter) ([]core.Expense, error) {
	out, err := s.deps.Expenses.ListExpenses(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

// Create validates and stores a new expense.
func (s *ExpenseService) Create(ctx context.Context, userID string, in ExpenseInput) (core.Expense, error) {
	e := in.toExpense(userID)
	if err := e.Validate(s.deps.Taxonomy); err != nil {
		return core.Expense{}, err
	}
	created, err := s.deps.Expenses.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.afterMutation(ctx, log.OpCreate, amqp.EventExpenseCreated, created)
	return created, nil
}

// Update replaces every editable field of the owner's expense id.
func (s *ExpenseService) Update(ctx context.Context, userID, id string, in ExpenseInput) (core.Expense, error) {
	e := in.toExpense(userID)
	e.ID = id
	if err := e.Validate(s.deps.Taxonomy); err != nil {
		return core.Expense{}, err
	}
	updated, err := s.deps.Expenses.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.afterMutation(ctx, log.OpUpdate, amqp.EventExpenseUpdated, updated)
	return updated, nil
}

// Delete removes the owner's expense id.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.deps.Expenses.GetExpense(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if err := s.deps.Expenses.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.afterMutation(ctx, log.OpDelete, amqp.EventExpenseDeleted, existing)
	return nil
}

// afterMutation never fails the request: the expense is already stored.
func (s *ExpenseService) afterMutation(ctx context.Context, op string, t amqp.EventType, e core.Expense) {
	s.deps.Metrics.ExpenseMutation(op)
	s.events.LogExpenseMutation(ctx, op, e.UserID, e.ID, e.Amount.Cents, e.Category, e.PaymentMethod, e.Date.String())
	publish(ctx, s.deps, s.logger, amqp.NewExpenseEvent(t, e))
	s.alerts.notify(ctx, e.UserID)
}

func publish(ctx context.Context, deps Deps, logger *log.Logger, ev amqp.Event) {
	if deps.Publisher == nil {
		logger.DebugContext(ctx, "AMQP client not available, skipping event", log.FieldRoutingKey, ev.Type)
		return
	}
	err := deps.Publisher.Publish(ctx, ev)
	deps.Metrics.EventPublished(string(ev.Type), err)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to publish event",
			log.FieldRoutingKey, ev.Type,
			log.FieldUserID, ev.UserID,
			log.FieldError, err)
	}
}
