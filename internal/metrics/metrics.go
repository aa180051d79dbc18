package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics は専用レジストリに登録したコレクタをまとめたもの。
// テストごとに New できるようにグローバルレジストリは使わない。
type Metrics struct {
	reg *prometheus.Registry

	// QueriesTotal counts catalog queries by scope (public/admin/cli).
	QueriesTotal *prometheus.CounterVec
	// QueryDuration is the latency of snapshot load + engine query.
	QueryDuration *prometheus.HistogramVec
	// QueryResults is the distribution of totalCount per query.
	QueryResults prometheus.Histogram
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		QueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_queries_total",
				Help: "Total number of catalog queries",
			},
			[]string{"scope"},
		),
		QueryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_query_duration_seconds",
				Help:    "Catalog query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"scope"},
		),
		QueryResults: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_query_results",
				Help:    "Number of matching items per catalog query",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		RequestTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
	}
}

// nil でも呼べる（メトリクス無効時）
func (m *Metrics) ObserveQuery(scope string, d time.Duration, total int) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(scope).Inc()
	m.QueryDuration.WithLabelValues(scope).Observe(d.Seconds())
	m.QueryResults.Observe(float64(total))
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.RequestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// /metrics 用
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
