// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Suite runs the shared store contract. NewStore must return an empty store.
type Suite struct {
	suite.Suite
	NewStore func(t *testing.T) store.Store

	Store store.Store
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.Store = s.NewStore(s.T())
	s.T().Cleanup(func() { _ = s.Store.Close() })
}

func (s *Suite) expense(user string, cents int64, category, date, method, desc string) core.Expense {
	d, err := core.ParseDate(date)
	s.Require().NoError(err)
	e, err := s.Store.CreateExpense(s.ctx, core.Expense{
		UserID:        user,
		Amount:        core.Money{Cents: cents},
		Category:      category,
		Date:          d,
		PaymentMethod: method,
		Description:   desc,
	})
	s.Require().NoError(err)
	return e
}

func ids(es []core.Expense) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func (s *Suite) TestPing() {
	s.NoError(s.Store.Ping(s.ctx))
}

func (s *Suite) TestCreateAndGetExpense() {
	e := s.expense("u1", 1250, "Food", "2024-06-05", "Cash", "lunch")
	s.NotEmpty(e.ID)
	s.False(e.CreatedAt.IsZero())

	got, err := s.Store.GetExpense(s.ctx, "u1", e.ID)
	s.Require().NoError(err)
	s.Equal(e.Amount, got.Amount)
	s.Equal("2024-06-05", got.Date.String())
	s.Equal("lunch", got.Description)

	_, err = s.Store.GetExpense(s.ctx, "u2", e.ID)
	s.ErrorIs(err, core.ErrNotFound)
	_, err = s.Store.GetExpense(s.ctx, "u1", "missing")
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *Suite) TestUpdateExpenseIsOwnerScoped() {
	e := s.expense("u1", 1000, "Food", "2024-06-05", "Cash", "")

	e.Amount = core.Money{Cents: 2000}
	e.Category = "Bills"
	e.PaymentMethod = "UPI"
	e.Date = core.NewDate(2024, 6, 7)
	e.Description = "power"
	updated, err := s.Store.UpdateExpense(s.ctx, e)
	s.Require().NoError(err)
	s.Equal(int64(2000), updated.Amount.Cents)
	s.Equal("Bills", updated.Category)
	s.Equal("2024-06-07", updated.Date.String())
	s.Equal("power", updated.Description)

	foreign := e
	foreign.UserID = "u2"
	_, err = s.Store.UpdateExpense(s.ctx, foreign)
	s.ErrorIs(err, core.ErrNotFound)

	got, err := s.Store.GetExpense(s.ctx, "u1", e.ID)
	s.Require().NoError(err)
	s.Equal(int64(2000), got.Amount.Cents)
}

func (s *Suite) TestDeleteExpenseIsOwnerScoped() {
	e := s.expense("u1", 1000, "Food", "2024-06-05", "Cash", "")

	s.ErrorIs(s.Store.DeleteExpense(s.ctx, "u2", e.ID), core.ErrNotFound)
	s.Require().NoError(s.Store.DeleteExpense(s.ctx, "u1", e.ID))
	s.ErrorIs(s.Store.DeleteExpense(s.ctx, "u1", e.ID), core.ErrNotFound)

	list, err := s.Store.ListExpenses(s.ctx, "u1", core.Filter{})
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *Suite) TestListExpensesOrderAndScope() {
	a := s.expense("u1", 100, "Food", "2024-06-05", "Cash", "")
	b := s.expense("u1", 200, "Food", "2024-06-10", "UPI", "")
	c := s.expense("u1", 300, "Bills", "2024-06-10", "Cash", "")
	d := s.expense("u1", 400, "Other", "2024-05-01", "Cash", "")
	s.expense("u2", 500, "Food", "2024-06-10", "Cash", "")

	list, err := s.Store.ListExpenses(s.ctx, "u1", core.Filter{})
	s.Require().NoError(err)
	s.Equal([]string{c.ID, b.ID, a.ID, d.ID}, ids(list))
}

func (s *Suite) TestListExpensesFilters() {
	a := s.expense("u1", 100, "Food", "2024-06-05", "Cash", "groceries")
	b := s.expense("u1", 200, "Food", "2024-06-10", "UPI", "")
	c := s.expense("u1", 300, "Bills", "2024-05-31", "Net Banking", "paid via Upi app")
	d := s.expense("u1", 400, "Transport", "2024-06-30", "Debit Card", "metro 50%_off")
	s.expense("u2", 500, "Food", "2024-06-10", "UPI", "not mine")

	filter := func(start, end, cat, pm, search string) []string {
		f, err := core.NewFilter(start, end, cat, pm, search)
		s.Require().NoError(err)
		list, err := s.Store.ListExpenses(s.ctx, "u1", f)
		s.Require().NoError(err)
		return ids(list)
	}

	s.Equal([]string{d.ID, b.ID, a.ID}, filter("2024-06-01", "2024-06-30", "", "", ""))
	s.Equal([]string{b.ID, a.ID}, filter("2024-06-05", "2024-06-10", "", "", ""))
	s.Equal([]string{b.ID, a.ID}, filter("", "", "Food", "", ""))
	s.Equal([]string{b.ID}, filter("", "", "Food", "UPI", ""))
	s.Empty(filter("", "", "food", "", ""))
	s.Equal([]string{b.ID, c.ID}, filter("", "", "", "", "upi"))
	s.Equal([]string{c.ID}, filter("", "", "", "", "BILLS"))
	s.Equal([]string{a.ID}, filter("", "", "", "", "Grocer"))
	s.Equal([]string{d.ID}, filter("", "", "", "", "50%_"))
	s.Empty(filter("", "", "", "", "%"+"x"))
	s.Equal([]string{b.ID}, filter("2024-06-01", "2024-06-30", "", "", "upi"))
}

func (s *Suite) TestSearchFoldsNonASCIICase() {
	e := s.expense("u1", 100, "Food", "2024-06-05", "Cash", "Café École")
	s.expense("u1", 200, "Food", "2024-06-06", "Cash", "cafe")

	for _, term := range []string{"CAFÉ", "école", "ÉCOLE"} {
		f, err := core.NewFilter("", "", "", "", term)
		s.Require().NoError(err)
		list, err := s.Store.ListExpenses(s.ctx, "u1", f)
		s.Require().NoError(err)
		s.Equal([]string{e.ID}, ids(list), term)
	}
}

func (s *Suite) TestUpsertBudgetReplacesLimit() {
	first, err := s.Store.UpsertBudget(s.ctx, core.Budget{UserID: "u1", Category: "Food", MonthlyLimit: core.Money{Cents: 50000}})
	s.Require().NoError(err)
	s.Equal(int64(50000), first.MonthlyLimit.Cents)

	second, err := s.Store.UpsertBudget(s.ctx, core.Budget{UserID: "u1", Category: "Food", MonthlyLimit: core.Money{Cents: 70000}})
	s.Require().NoError(err)
	s.Equal(int64(70000), second.MonthlyLimit.Cents)
	s.Equal(first.ID, second.ID)

	list, err := s.Store.ListBudgets(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("Food", list[0].Category)
	s.Equal(int64(70000), list[0].MonthlyLimit.Cents)
}

func (s *Suite) TestUpsertBudgetRejectsNonPositiveLimit() {
	_, err := s.Store.UpsertBudget(s.ctx, core.Budget{UserID: "u1", Category: "Food"})
	s.ErrorIs(err, core.ErrValidation)

	list, err := s.Store.ListBudgets(s.ctx, "u1")
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *Suite) TestConcurrentUpsertsKeepOneRecord() {
	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go func(limit int64) {
			defer wg.Done()
			_, err := s.Store.UpsertBudget(s.ctx, core.Budget{UserID: "u1", Category: "Bills", MonthlyLimit: core.Money{Cents: limit}})
			errs <- err
		}(int64(i * 100))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	list, err := s.Store.ListBudgets(s.ctx, "u1")
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *Suite) TestListBudgetsScopedAndSorted() {
	for _, b := range []core.Budget{
		{UserID: "u1", Category: "Transport", MonthlyLimit: core.Money{Cents: 100}},
		{UserID: "u1", Category: "Bills", MonthlyLimit: core.Money{Cents: 200}},
		{UserID: "u2", Category: "Food", MonthlyLimit: core.Money{Cents: 300}},
	} {
		_, err := s.Store.UpsertBudget(s.ctx, b)
		s.Require().NoError(err)
	}
	list, err := s.Store.ListBudgets(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Bills", list[0].Category)
	s.Equal("Transport", list[1].Category)

	none, err := s.Store.ListBudgets(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *Suite) TestUsers() {
	u, err := s.Store.CreateUser(s.ctx, core.User{Name: "Ada", Email: "Ada@Example.com", PasswordHash: "hash"})
	s.Require().NoError(err)
	s.NotEmpty(u.ID)
	s.Equal("ada@example.com", u.Email)

	_, err = s.Store.CreateUser(s.ctx, core.User{Name: "Other", Email: "ada@example.com", PasswordHash: "x"})
	s.ErrorIs(err, core.ErrEmailTaken)

	byEmail, err := s.Store.GetUserByEmail(s.ctx, " ADA@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
	s.Equal("hash", byEmail.PasswordHash)

	byID, err := s.Store.GetUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Ada", byID.Name)

	_, err = s.Store.GetUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, core.ErrNotFound)
	_, err = s.Store.GetUserByID(s.ctx, "missing")
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *Suite) TestSessions() {
	u, err := s.Store.CreateUser(s.ctx, core.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"})
	s.Require().NoError(err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	live := core.Session{Token: "live", UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	dead := core.Session{Token: "dead", UserID: u.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	s.Require().NoError(s.Store.CreateSession(s.ctx, live))
	s.Require().NoError(s.Store.CreateSession(s.ctx, dead))

	got, err := s.Store.GetSession(s.ctx, "live")
	s.Require().NoError(err)
	s.Equal(u.ID, got.UserID)
	s.True(got.ExpiresAt.Equal(live.ExpiresAt))

	n, err := s.Store.DeleteExpiredSessions(s.ctx, now)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	_, err = s.Store.GetSession(s.ctx, "dead")
	s.ErrorIs(err, core.ErrNotFound)

	s.Require().NoError(s.Store.DeleteSession(s.ctx, "live"))
	_, err = s.Store.GetSession(s.ctx, "live")
	s.ErrorIs(err, core.ErrNotFound)
}
