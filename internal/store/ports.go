// Package store declares the persistence ports used by the services. Every
// method is scoped to an owner where the data has one; a record owned by
// somebody else is reported as not found.
package store

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// ExpenseStore persists expense records.
type ExpenseStore interface {
	// CreateExpense assigns an ID and timestamps and returns the stored record.
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
	// UpdateExpense replaces amount, category, date, payment method and
	// description of the owner's expense e.ID.
	UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, userID, id string) error
	// ListExpenses returns the owner's expenses matching f, newest date
	// first; equal dates list the most recently created first.
	ListExpenses(ctx context.Context, userID string, f core.Filter) ([]core.Expense, error)
}

// BudgetStore persists one monthly limit per (owner, category).
type BudgetStore interface {
	// UpsertBudget creates the budget or replaces its limit in one atomic
	// step and returns the record as stored.
	UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	// ListBudgets returns the owner's budgets ordered by category.
	ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
}

// UserStore persists accounts. Emails are stored normalized and unique.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	GetUserByID(ctx context.Context, id string) (core.User, error)
}

// SessionStore persists login sessions keyed by token.
type SessionStore interface {
	CreateSession(ctx context.Context, s core.Session) error
	GetSession(ctx context.Context, token string) (core.Session, error)
	DeleteSession(ctx context.Context, token string) error
	// DeleteExpiredSessions removes sessions expired at now and reports how many.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Store is a complete backend.
type Store interface {
	ExpenseStore
	BudgetStore
	UserStore
	SessionStore
	Ping(ctx context.Context) error
	Close() error
}
