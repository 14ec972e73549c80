// Package storage is the SQLite implementation of store.Store.
package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

var _ store.Store = (*SQLiteRepository)(nil)

// unicode_lower folds case like strings.ToLower. SQLite's lower() and
// LIKE fold ASCII only.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// DSN builds the connection string used for both the repository and migrations.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return core.StoreError("ping", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Amount.Validate(); err != nil {
		return core.Expense{}, err
	}
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		ID:            uuid.NewString(),
		UserID:        e.UserID,
		AmountCents:   e.Amount.Cents,
		Category:      e.Category,
		Date:          e.Date.String(),
		PaymentMethod: e.PaymentMethod,
		Description:   e.Description,
		CreatedAt:     r.now().UnixMilli(),
	})
	if err != nil {
		return core.Expense{}, core.StoreError("create expense", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", row.ID,
		"user_id", row.UserID,
		"amount_cents", row.AmountCents,
		"date", row.Date)

	return toExpense(row)
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	if err != nil {
		return core.Expense{}, core.StoreError("get expense", err)
	}
	return toExpense(row)
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Amount.Validate(); err != nil {
		return core.Expense{}, err
	}
	row, err := r.queries.UpdateExpense(ctx, UpdateExpenseParams{
		AmountCents:   e.Amount.Cents,
		Category:      e.Category,
		Date:          e.Date.String(),
		PaymentMethod: e.PaymentMethod,
		Description:   e.Description,
		UpdatedAt:     r.now().UnixMilli(),
		ID:            e.ID,
		UserID:        e.UserID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	if err != nil {
		return core.Expense{}, core.StoreError("update expense", err)
	}
	return toExpense(row)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteExpense(ctx, id, userID)
	if err != nil {
		return core.StoreError("delete expense", err)
	}
	if n == 0 {
		return core.ErrExpenseNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string, f core.Filter) ([]core.Expense, error) {
	params := ListExpensesParams{
		UserID:        userID,
		Category:      f.Category,
		PaymentMethod: f.PaymentMethod,
	}
	if f.Range != nil {
		params.StartDate = f.Range.Start.String()
		params.EndDate = f.Range.End.String()
	}
	if f.Search != "" {
		params.Pattern = "%" + escapeLike(strings.ToLower(f.Search)) + "%"
	}

	rows, err := r.queries.ListExpenses(ctx, params)
	if err != nil {
		return nil, core.StoreError("list expenses", err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := toExpense(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.MonthlyLimit.Cents <= 0 {
		return core.Budget{}, core.ErrInvalidLimit
	}
	row, err := r.queries.UpsertBudget(ctx, UpsertBudgetParams{
		ID:                uuid.NewString(),
		UserID:            b.UserID,
		Category:          b.Category,
		MonthlyLimitCents: b.MonthlyLimit.Cents,
		Now:               r.now().UnixMilli(),
	})
	if err != nil {
		return core.Budget{}, core.StoreError("upsert budget", err)
	}
	return toBudget(row), nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx, userID)
	if err != nil {
		return nil, core.StoreError("list budgets", err)
	}
	out := make([]core.Budget, len(rows))
	for i, row := range rows {
		out[i] = toBudget(row)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	row, err := r.queries.CreateUser(ctx, CreateUserParams{
		ID:           uuid.NewString(),
		Name:         u.Name,
		Email:        core.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		CreatedAt:    r.now().UnixMilli(),
	})
	if isUniqueViolation(err) {
		return core.User{}, core.ErrEmailTaken
	}
	if err != nil {
		return core.User{}, core.StoreError("create user", err)
	}
	return toUser(row), nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, core.NormalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, core.StoreError("get user by email", err)
	}
	return toUser(row), nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	row, err := r.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, core.StoreError("get user by id", err)
	}
	return toUser(row), nil
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, s core.Session) error {
	err := r.queries.CreateSession(ctx, Session{
		Token:     s.Token,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt.UnixMilli(),
		ExpiresAt: s.ExpiresAt.UnixMilli(),
	})
	if err != nil {
		return core.StoreError("create session", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, token string) (core.Session, error) {
	row, err := r.queries.GetSession(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, core.ErrSessionNotFound
	}
	if err != nil {
		return core.Session{}, core.StoreError("get session", err)
	}
	return core.Session{
		Token:     row.Token,
		UserID:    row.UserID,
		CreatedAt: time.UnixMilli(row.CreatedAt).UTC(),
		ExpiresAt: time.UnixMilli(row.ExpiresAt).UTC(),
	}, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	if err := r.queries.DeleteSession(ctx, token); err != nil {
		return core.StoreError("delete session", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.queries.DeleteExpiredSessions(ctx, now.UnixMilli())
	if err != nil {
		return 0, core.StoreError("delete expired sessions", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Expired sessions removed", "count", n)
	}
	return n, nil
}

func toExpense(row Expense) (core.Expense, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Expense{}, core.StoreError("decode expense date", err)
	}
	return core.Expense{
		ID:            row.ID,
		UserID:        row.UserID,
		Amount:        core.Money{Cents: row.AmountCents},
		Category:      row.Category,
		Date:          d,
		PaymentMethod: row.PaymentMethod,
		Description:   row.Description,
		CreatedAt:     time.UnixMilli(row.CreatedAt).UTC(),
		UpdatedAt:     time.UnixMilli(row.UpdatedAt).UTC(),
	}, nil
}

func toBudget(row Budget) core.Budget {
	return core.Budget{
		ID:           row.ID,
		UserID:       row.UserID,
		Category:     row.Category,
		MonthlyLimit: core.Money{Cents: row.MonthlyLimitCents},
		CreatedAt:    time.UnixMilli(row.CreatedAt).UTC(),
		UpdatedAt:    time.UnixMilli(row.UpdatedAt).UTC(),
	}
}

func toUser(row User) core.User {
	return core.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    time.UnixMilli(row.CreatedAt).UTC(),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE wildcards so s matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return strings.Contains(se.Error(), "UNIQUE constraint failed")
}
