package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/cache"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorders(t *testing.T) {
	m := New()
	m.ExpenseMutation("create")
	m.ExpenseMutation("create")
	m.BudgetUpserted()
	m.BudgetAlert("warning")
	m.EventPublished("expense.created", nil)
	m.EventPublished("expense.created", errors.New("down"))
	m.RateLimitHit()
	m.SheetsRowAppended()
	m.ObserveHTTP("GET", "/api/expenses", 200, 15*time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `fintrack_expense_mutations_total{operation="create"} 2`)
	assert.Contains(t, out, `fintrack_budget_upserts_total 1`)
	assert.Contains(t, out, `fintrack_budget_alerts_total{level="warning"} 1`)
	assert.Contains(t, out, `fintrack_events_published_total{result="error",type="expense.created"} 1`)
	assert.Contains(t, out, `fintrack_events_published_total{result="ok",type="expense.created"} 1`)
	assert.Contains(t, out, `fintrack_rate_limited_total 1`)
	assert.Contains(t, out, `fintrack_sheets_rows_appended_total 1`)
	assert.Contains(t, out, `fintrack_http_requests_total{method="GET",route="/api/expenses",status="200"} 1`)
	assert.Contains(t, out, `fintrack_http_request_duration_seconds_count{method="GET",route="/api/expenses"} 1`)
	assert.Contains(t, out, "go_goroutines")
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.ExpenseMutation("create")
	m.BudgetUpserted()
	m.BudgetAlert("exceeded")
	m.EventPublished("x", nil)
	m.RateLimitHit()
	m.SheetsRowAppended()
	m.ObserveHTTP("GET", "/", 200, time.Second)
	m.ObserveCache("sessions", func() cache.Stats { return cache.Stats{} })
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestSeparateInstancesDoNotCollide(t *testing.T) {
	a, b := New(), New()
	a.BudgetUpserted()
	assert.Contains(t, scrape(t, a), "fintrack_budget_upserts_total 1")
	assert.Contains(t, scrape(t, b), "fintrack_budget_upserts_total 0")
}

func TestObserveCache(t *testing.T) {
	m := New()
	c := cache.NewLRUCache[string](10, time.Minute)
	m.ObserveCache("sessions", c.Stats)

	c.Set("a", "1")
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	out := scrape(t, m)
	assert.Contains(t, out, `fintrack_cache_hits_total{cache="sessions"} 2`)
	assert.Contains(t, out, `fintrack_cache_misses_total{cache="sessions"} 1`)
	assert.Contains(t, out, `fintrack_cache_entries{cache="sessions"} 1`)
}
