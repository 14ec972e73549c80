package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/services"
	"fintrack/internal/store/memory"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, rateLimit int) *Server {
	t.Helper()
	st := memory.New()
	logger := log.Discard()
	deps := services.Deps{
		Expenses: st,
		Budgets:  st,
		Taxonomy: core.DefaultTaxonomy(),
		Logger:   logger,
		Now:      func() time.Time { return testNow },
	}
	svc := Services{
		Auth:      auth.NewService(st, auth.WithBcryptCost(bcrypt.MinCost), auth.WithLogger(logger)),
		Expenses:  services.NewExpenseService(deps),
		Budgets:   services.NewBudgetService(deps),
		Dashboard: services.NewDashboardService(deps, 3),
	}
	srv := NewServer(Config{Addr: ":0", RateLimitPerMinute: rateLimit}, svc, st, metrics.New(), logger)
	t.Cleanup(srv.rateLimiter.Stop)
	return srv
}

func do(t *testing.T, srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// signup registers and logs in a user, returning the bearer token.
func signup(t *testing.T, srv *Server, email string) string {
	t.Helper()
	rr := do(t, srv, http.MethodPost, "/api/users/register", "",
		`{"name":"Test","email":"`+email+`","password":"correct horse"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = do(t, srv, http.MethodPost, "/api/users/login", "",
		`{"email":"`+email+`","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[loginResponse](t, rr).Token
}

func TestHealthReadyMetrics(t *testing.T) {
	srv := newTestServer(t, 100)

	rr := do(t, srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rr)["status"])
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = do(t, srv, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ready", decode[map[string]any](t, rr)["status"])

	rr = do(t, srv, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "fintrack_http_requests_total")
}

func TestReadyWithoutStore(t *testing.T) {
	srv := newTestServer(t, 100)
	srv.store = nil
	rr := do(t, srv, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, 100)

	rr := do(t, srv, http.MethodPost, "/api/users/register", "", `{"name":"Ana","email":"Ana@Example.com","password":"secret-pass"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	user := decode[map[string]any](t, rr)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.NotContains(t, rr.Body.String(), "password")

	rr = do(t, srv, http.MethodPost, "/api/users/register", "", `{"name":"Ana","email":"ana@example.com","password":"secret-pass"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "conflict_error", decode[ErrorBody](t, rr).Type)

	rr = do(t, srv, http.MethodPost, "/api/users/register", "", `{"name":"","email":"nope","password":"short"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "validation_error", decode[ErrorBody](t, rr).Type)

	rr = do(t, srv, http.MethodPost, "/api/users/register", "",
		`{"name":"Bo","email":"bo@example.com","password":"`+strings.Repeat("x", core.MaxPasswordLen+1)+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "validation_error", decode[ErrorBody](t, rr).Type)

	rr = do(t, srv, http.MethodPost, "/api/users/register", "", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "bad_request", decode[ErrorBody](t, rr).Type)

	rr = do(t, srv, http.MethodPost, "/api/users/login", "", `{"email":"ana@example.com","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "auth_error", decode[ErrorBody](t, rr).Type)
	assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))

	rr = do(t, srv, http.MethodPost, "/api/users/login", "", `{"email":"ana@example.com","password":"secret-pass"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	login := decode[loginResponse](t, rr)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "Ana", login.User.Name)

	rr = do(t, srv, http.MethodGet, "/api/users/me", login.Token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, login.User.ID, decode[userResponse](t, rr).ID)

	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodGet, "/api/users/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodGet, "/api/users/me", "bogus", "").Code)

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodPost, "/api/users/logout", login.Token, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodGet, "/api/users/me", login.Token, "").Code)
}

func TestExpenseEndpoints(t *testing.T) {
	srv := newTestServer(t, 100)
	token := signup(t, srv, "a@example.com")
	other := signup(t, srv, "b@example.com")

	rr := do(t, srv, http.MethodPost, "/api/expenses", token,
		`{"amount":"12.50","category":"Food","date":"2024-06-03","paymentMethod":"UPI","description":"Lunch"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[map[string]any](t, rr)
	id := created["id"].(string)
	assert.Equal(t, 12.5, created["amount"])
	assert.Equal(t, "2024-06-03", created["date"])
	assert.Equal(t, "/api/expenses/"+id, rr.Header().Get("Location"))

	rr = do(t, srv, http.MethodPost, "/api/expenses", token,
		`{"amount":20,"category":"Bills","date":"2024-05-20","paymentMethod":"Cash","description":"Power"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"unknown category", `{"amount":1,"category":"Rent","date":"2024-06-03","paymentMethod":"UPI"}`, http.StatusUnprocessableEntity},
		{"zero amount", `{"amount":0,"category":"Food","date":"2024-06-03","paymentMethod":"UPI"}`, http.StatusUnprocessableEntity},
		{"amount not a number", `{"amount":"lots","category":"Food","date":"2024-06-03","paymentMethod":"UPI"}`, http.StatusUnprocessableEntity},
		{"amount past int64", `{"amount":184467440737095517.16,"category":"Food","date":"2024-06-03","paymentMethod":"UPI"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"amount":1,"category":"Food","date":"03/06/2024","paymentMethod":"UPI"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{"amount":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/expenses", token, tc.body)
			assert.Equal(t, tc.code, rr.Code, rr.Body.String())
		})
	}

	rr = do(t, srv, http.MethodGet, "/api/expenses", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	all := decode[[]expenseResponse](t, rr)
	require.Len(t, all, 2)
	assert.Equal(t, "2024-06-03", all[0].Date.String())

	rr = do(t, srv, http.MethodGet, "/api/expenses?startDate=2024-06-01&endDate=2024-06-30&search=lun", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]expenseResponse](t, rr), 1)

	rr = do(t, srv, http.MethodGet, "/api/expenses?startDate=2024-06-01", token, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/expenses", other, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())

	update := `{"amount":15,"category":"Food","date":"2024-06-04","paymentMethod":"Cash","description":"Dinner"}`
	rr = do(t, srv, http.MethodPut, "/api/expenses/"+id, other, update)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found_error", decode[ErrorBody](t, rr).Type)

	rr = do(t, srv, http.MethodPut, "/api/expenses/"+id, token, update)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Dinner", decode[expenseResponse](t, rr).Description)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/api/expenses/"+id, other, "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/api/expenses/"+id, token, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/api/expenses/"+id, token, "").Code)

	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodGet, "/api/expenses", "", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodPatch, "/api/expenses/"+id, token, "").Code)
}

func TestBudgetAndDashboardEndpoints(t *testing.T) {
	srv := newTestServer(t, 100)
	token := signup(t, srv, "a@example.com")

	rr := do(t, srv, http.MethodPost, "/api/budgets", token, `{"category":"Food","monthlyLimit":500}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	first := decode[budgetResponse](t, rr)

	rr = do(t, srv, http.MethodPost, "/api/budgets", token, `{"category":"Food","monthlyLimit":700}`)
	require.Equal(t, http.StatusOK, rr.Code)
	second := decode[budgetResponse](t, rr)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(70000), second.MonthlyLimit.Cents)

	assert.Equal(t, http.StatusUnprocessableEntity,
		do(t, srv, http.MethodPost, "/api/budgets", token, `{"category":"Food","monthlyLimit":0}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		do(t, srv, http.MethodPost, "/api/budgets", token, `{"category":"Holidays","monthlyLimit":10}`).Code)

	rr = do(t, srv, http.MethodGet, "/api/budgets", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]budgetResponse](t, rr), 1)

	for _, body := range []string{
		`{"amount":400,"category":"Food","date":"2024-06-02","paymentMethod":"UPI"}`,
		`{"amount":300,"category":"Food","date":"2024-06-09","paymentMethod":"Cash"}`,
		`{"amount":50,"category":"Transport","date":"2024-04-09","paymentMethod":"Cash"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/expenses", token, body).Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/dashboard", token, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	dash := decode[map[string]any](t, rr)
	assert.Equal(t, "2024-06", dash["period"])
	assert.Equal(t, 700.0, dash["totalSpend"])
	assert.Equal(t, 100.0, dash["percentUsedOverall"])
	food := dash["perCategory"].(map[string]any)["Food"].(map[string]any)
	assert.Equal(t, "exceeded", food["alert"])
	assert.Equal(t, "Food", dash["mostSpentCategory"])
	assert.Len(t, dash["trend"], 6)
	assert.Equal(t, []any{"2024-06", "2024-04"}, dash["availableMonths"])
	period := dash["periodExpenses"].([]any)
	require.Len(t, period, 2)
	assert.Equal(t, "2024-06-09", period[0].(map[string]any)["date"])

	rr = do(t, srv, http.MethodGet, "/api/dashboard?year=2024&month=4&top=1", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	dash = decode[map[string]any](t, rr)
	assert.Equal(t, "Transport", dash["mostSpentCategory"])
	assert.Len(t, dash["topPaymentMethods"], 1)

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, srv, http.MethodGet, "/api/dashboard?month=13", token, "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, srv, http.MethodGet, "/api/dashboard?top=0", token, "").Code)

	rr = do(t, srv, http.MethodGet, "/api/suggestions", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, decode[map[string][]string](t, rr)["suggestions"])
}

func TestLoginIsRateLimited(t *testing.T) {
	srv := newTestServer(t, 2)
	body := `{"email":"x@example.com","password":"whatever1"}`
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodPost, "/api/users/login", "", body).Code)
	}
	rr := do(t, srv, http.MethodPost, "/api/users/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "rate_limit_error", decode[ErrorBody](t, rr).Type)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}
