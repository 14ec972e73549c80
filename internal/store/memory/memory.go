// Package memory is an in-process Store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	expenses []core.Expense // creation order
	budgets  map[budgetKey]core.Budget
	users    map[string]core.User
	emails   map[string]string // email -> user id
	sessions map[string]core.Session
}

type budgetKey struct {
	userID   string
	category string
}

type Option func(*Store)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		budgets:  make(map[budgetKey]core.Budget),
		users:    make(map[string]core.User),
		emails:   make(map[string]string),
		sessions: make(map[string]core.Session),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Amount.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	e.ID = uuid.NewString()
	e.CreatedAt, e.UpdatedAt = now, now
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) GetExpense(_ context.Context, userID, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(userID, id)
	if i < 0 {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	return s.expenses[i], nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Amount.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(e.UserID, e.ID)
	if i < 0 {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	cur := &s.expenses[i]
	cur.Amount = e.Amount
	cur.Category = e.Category
	cur.Date = e.Date
	cur.PaymentMethod = e.PaymentMethod
	cur.Description = e.Description
	cur.UpdatedAt = s.now().UTC()
	return *cur, nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(userID, id)
	if i < 0 {
		return core.ErrExpenseNotFound
	}
	s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, userID string, f core.Filter) ([]core.Expense, error) {
	s.mu.Lock()
	var owned []core.Expense
	for _, e := range s.expenses {
		if e.UserID == userID {
			owned = append(owned, e)
		}
	}
	s.mu.Unlock()

	out := f.Apply(owned)
	core.SortByDateDesc(out)
	return out, nil
}

func (s *Store) indexOf(userID, id string) int {
	for i, e := range s.expenses {
		if e.ID == id && e.UserID == userID {
			return i
		}
	}
	return -1
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if b.MonthlyLimit.Cents <= 0 {
		return core.Budget{}, core.ErrInvalidLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	key := budgetKey{userID: b.UserID, category: b.Category}
	cur, ok := s.budgets[key]
	if !ok {
		cur = core.Budget{
			ID:        uuid.NewString(),
			UserID:    b.UserID,
			Category:  b.Category,
			CreatedAt: now,
		}
	}
	cur.MonthlyLimit = b.MonthlyLimit
	cur.UpdatedAt = now
	s.budgets[key] = cur
	return cur, nil
}

func (s *Store) ListBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Budget{}
	for k, b := range s.budgets {
		if k.userID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = core.NormalizeEmail(u.Email)
	if _, taken := s.emails[u.Email]; taken {
		return core.User{}, core.ErrEmailTaken
	}
	u.ID = uuid.NewString()
	u.CreatedAt = s.now().UTC()
	s.users[u.ID] = u
	s.emails[u.Email] = u.ID
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.emails[core.NormalizeEmail(email)]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) CreateSession(_ context.Context, sess core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return core.Session{}, core.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for tok, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, tok)
			n++
		}
	}
	return n, nil
}
