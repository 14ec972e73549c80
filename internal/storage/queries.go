package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type Expense struct {
	Seq           int64
	ID            string
	UserID        string
	AmountCents   int64
	Category      string
	Date          string
	PaymentMethod string
	Description   string
	CreatedAt     int64
	UpdatedAt     int64
}

type Budget struct {
	ID                string
	UserID            string
	Category          string
	MonthlyLimitCents int64
	CreatedAt         int64
	UpdatedAt         int64
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    int64
}

type Session struct {
	Token     string
	UserID    string
	CreatedAt int64
	ExpiresAt int64
}

const expenseColumns = `seq, id, user_id, amount_cents, category, date, payment_method, description, created_at, updated_at`

func scanExpense(row interface{ Scan(...interface{}) error }) (Expense, error) {
	var i Expense
	err := row.Scan(
		&i.Seq,
		&i.ID,
		&i.UserID,
		&i.AmountCents,
		&i.Category,
		&i.Date,
		&i.PaymentMethod,
		&i.Description,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (id, user_id, amount_cents, category, date, payment_method, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + expenseColumns

type CreateExpenseParams struct {
	ID            string
	UserID        string
	AmountCents   int64
	Category      string
	Date          string
	PaymentMethod string
	Description   string
	CreatedAt     int64
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.ID,
		arg.UserID,
		arg.AmountCents,
		arg.Category,
		arg.Date,
		arg.PaymentMethod,
		arg.Description,
		arg.CreatedAt,
		arg.CreatedAt,
	)
	return scanExpense(row)
}

const getExpense = `-- name: GetExpense :one
SELECT ` + expenseColumns + ` FROM expenses WHERE id = ? AND user_id = ?`

func (q *Queries) GetExpense(ctx context.Context, id, userID string) (Expense, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id, userID))
}

const updateExpense = `-- name: UpdateExpense :one
UPDATE expenses
SET amount_cents = ?, category = ?, date = ?, payment_method = ?, description = ?, updated_at = ?
WHERE id = ? AND user_id = ?
RETURNING ` + expenseColumns

type UpdateExpenseParams struct {
	AmountCents   int64
	Category      string
	Date          string
	PaymentMethod string
	Description   string
	UpdatedAt     int64
	ID            string
	UserID        string
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, updateExpense,
		arg.AmountCents,
		arg.Category,
		arg.Date,
		arg.PaymentMethod,
		arg.Description,
		arg.UpdatedAt,
		arg.ID,
		arg.UserID,
	)
	return scanExpense(row)
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id, userID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Empty string parameters disable the corresponding condition.
const listExpenses = `-- name: ListExpenses :many
SELECT ` + expenseColumns + ` FROM expenses
WHERE user_id = ?
  AND (? = '' OR date >= ?)
  AND (? = '' OR date <= ?)
  AND (? = '' OR category = ?)
  AND (? = '' OR payment_method = ?)
  AND (? = ''
       OR unicode_lower(category) LIKE ? ESCAPE '\'
       OR unicode_lower(payment_method) LIKE ? ESCAPE '\'
       OR unicode_lower(description) LIKE ? ESCAPE '\')
ORDER BY date DESC, seq DESC`

type ListExpensesParams struct {
	UserID        string
	StartDate     string
	EndDate       string
	Category      string
	PaymentMethod string
	// Pattern is a lower-cased LIKE pattern with '\' as escape character.
	Pattern string
}

func (q *Queries) ListExpenses(ctx context.Context, arg ListExpensesParams) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses,
		arg.UserID,
		arg.StartDate, arg.StartDate,
		arg.EndDate, arg.EndDate,
		arg.Category, arg.Category,
		arg.PaymentMethod, arg.PaymentMethod,
		arg.Pattern, arg.Pattern, arg.Pattern, arg.Pattern,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		i, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertBudget = `-- name: UpsertBudget :one
INSERT INTO budgets (id, user_id, category, monthly_limit_cents, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, category) DO UPDATE SET
    monthly_limit_cents = excluded.monthly_limit_cents,
    updated_at = excluded.updated_at
RETURNING id, user_id, category, monthly_limit_cents, created_at, updated_at`

type UpsertBudgetParams struct {
	ID                string
	UserID            string
	Category          string
	MonthlyLimitCents int64
	Now               int64
}

func (q *Queries) UpsertBudget(ctx context.Context, arg UpsertBudgetParams) (Budget, error) {
	row := q.db.QueryRowContext(ctx, upsertBudget,
		arg.ID,
		arg.UserID,
		arg.Category,
		arg.MonthlyLimitCents,
		arg.Now,
		arg.Now,
	)
	var i Budget
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Category,
		&i.MonthlyLimitCents,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listBudgets = `-- name: ListBudgets :many
SELECT id, user_id, category, monthly_limit_cents, created_at, updated_at
FROM budgets WHERE user_id = ? ORDER BY category`

func (q *Queries) ListBudgets(ctx context.Context, userID string) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Budget
	for rows.Next() {
		var i Budget
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Category,
			&i.MonthlyLimitCents,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, name, email, password_hash, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, name, email, password_hash, created_at`

type CreateUserParams struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.ID,
		arg.Name,
		arg.Email,
		arg.PasswordHash,
		arg.CreatedAt,
	)
	var i User
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var i User
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const createSession = `-- name: CreateSession :exec
INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`

func (q *Queries) CreateSession(ctx context.Context, arg Session) error {
	_, err := q.db.ExecContext(ctx, createSession, arg.Token, arg.UserID, arg.CreatedAt, arg.ExpiresAt)
	return err
}

const getSession = `-- name: GetSession :one
SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?`

func (q *Queries) GetSession(ctx context.Context, token string) (Session, error) {
	row := q.db.QueryRowContext(ctx, getSession, token)
	var i Session
	err := row.Scan(&i.Token, &i.UserID, &i.CreatedAt, &i.ExpiresAt)
	return i, err
}

const deleteSession = `-- name: DeleteSession :exec
DELETE FROM sessions WHERE token = ?`

func (q *Queries) DeleteSession(ctx context.Context, token string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, token)
	return err
}

const deleteExpiredSessions = `-- name: DeleteExpiredSessions :execrows
DELETE FROM sessions WHERE expires_at <= ?`

func (q *Queries) DeleteExpiredSessions(ctx context.Context, now int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpiredSessions, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
