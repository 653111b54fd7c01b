// Package metrics exposes Prometheus collectors for HTTP traffic and
// checkout outcomes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

type Metrics struct {
	registry *prometheus.Registry

	httpDuration  *prometheus.HistogramVec
	checkouts     *prometheus.CounterVec
	revenue       *prometheus.CounterVec
	failures      *prometheus.CounterVec
	compensations *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pos",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "checkouts_total",
			Help:      "Completed checkouts by payment method.",
		}, []string{"payment_method"}),
		revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "revenue_total",
			Help:      "Revenue of completed checkouts by payment method.",
		}, []string{"payment_method"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "checkout_failures_total",
			Help:      "Failed checkouts by stage.",
		}, []string{"reason"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "stock_compensations_total",
			Help:      "Stock lines given back after a failed checkout, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpDuration,
		m.checkouts,
		m.revenue,
		m.failures,
		m.compensations,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) CheckoutCompleted(method string, total decimal.Decimal) {
	m.checkouts.WithLabelValues(method).Inc()
	m.revenue.WithLabelValues(method).Add(total.InexactFloat64())
}

func (m *Metrics) CheckoutFailed(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) StockCompensated(lines int, failed int) {
	m.compensations.WithLabelValues("ok").Add(float64(lines - failed))
	if failed > 0 {
		m.compensations.WithLabelValues("failed").Add(float64(failed))
	}
}

// Noop discards every observation.
type Noop struct{}

func (Noop) ObserveHTTP(string, string, int, time.Duration) {}
func (Noop) CheckoutCompleted(string, decimal.Decimal)     {}
func (Noop) CheckoutFailed(string)                         {}
func (Noop) StockCompensated(int, int)                     {}
