// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fintrack/internal/cache"
)

// Metrics is safe to use as a nil pointer; every recorder is then a no-op.
//
// All metrics are prefixed with "fintrack_":
//   - fintrack_http_requests_total{method,route,status}
//   - fintrack_http_request_duration_seconds{method,route}
//   - fintrack_expense_mutations_total{operation}
//   - fintrack_budget_upserts_total
//   - fintrack_budget_alerts_total{level}
//   - fintrack_events_published_total{type,result}
//   - fintrack_rate_limited_total
//   - fintrack_sheets_rows_appended_total
//   - fintrack_cache_hits_total, fintrack_cache_misses_total, fintrack_cache_entries{cache}
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	ExpenseMutations *prometheus.CounterVec
	BudgetUpserts    prometheus.Counter
	BudgetAlerts     *prometheus.CounterVec
	EventsPublished  *prometheus.CounterVec
	RateLimited      prometheus.Counter
	SheetsAppended   prometheus.Counter
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fintrack_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fintrack_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ExpenseMutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fintrack_expense_mutations_total",
			Help: "Expenses created, updated or deleted",
		}, []string{"operation"}),
		BudgetUpserts: f.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_budget_upserts_total",
			Help: "Budget limits set",
		}),
		BudgetAlerts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fintrack_budget_alerts_total",
			Help: "Budget alerts raised by level",
		}, []string{"level"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fintrack_events_published_total",
			Help: "Events published to the broker by type and result",
		}, []string{"type", "result"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
		SheetsAppended: f.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_sheets_rows_appended_total",
			Help: "Expense rows mirrored to the spreadsheet",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ExpenseMutation(op string) {
	if m == nil {
		return
	}
	m.ExpenseMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) BudgetUpserted() {
	if m == nil {
		return
	}
	m.BudgetUpserts.Inc()
}

func (m *Metrics) BudgetAlert(level string) {
	if m == nil {
		return
	}
	m.BudgetAlerts.WithLabelValues(level).Inc()
}

func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}

func (m *Metrics) RateLimitHit() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

func (m *Metrics) SheetsRowAppended() {
	if m == nil {
		return
	}
	m.SheetsAppended.Inc()
}

// ObserveCache exports the lookup counters and size of a cache, read at
// scrape time.
func (m *Metrics) ObserveCache(name string, stats func() cache.Stats) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"cache": name}
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "fintrack_cache_hits_total",
			Help:        "Cache lookups that found a live entry",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "fintrack_cache_misses_total",
			Help:        "Cache lookups that found nothing or an expired entry",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Misses) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "fintrack_cache_entries",
			Help:        "Entries currently held in the cache",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Size) }),
	)
}
