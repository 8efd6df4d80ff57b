// Package metrics exposes verification and ledger collectors for Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roshannn-07/fairpass/internal/domain"
)

type Metrics struct {
	registry        *prometheus.Registry
	verdicts        *prometheus.CounterVec
	ledgerQueries   *prometheus.CounterVec
	ledgerLatency   prometheus.Histogram
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers every collector on a private registry so several servers can
// live in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fairpass",
			Name:      "verdicts_total",
			Help:      "Ticket verification verdicts by reason.",
		}, []string{"reason", "signature_checked"}),
		ledgerQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fairpass",
			Name:      "ledger_queries_total",
			Help:      "Ledger holding lookups by outcome.",
		}, []string{"outcome"}),
		ledgerLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fairpass",
			Name:      "ledger_query_seconds",
			Help:      "Ledger holding lookup latency.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		requestCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fairpass",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fairpass",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveVerdict(v domain.Verdict) {
	m.verdicts.WithLabelValues(string(v.Reason), strconv.FormatBool(v.SignatureChecked)).Inc()
}

func (m *Metrics) ObserveLedgerQuery(elapsed time.Duration, err error) {
	m.ledgerLatency.Observe(elapsed.Seconds())
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	default:
		outcome = "error"
	}
	m.ledgerQueries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts requests per matched route. Routes dispatched from the
// no-route handler label themselves through the "route" context key.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if v, ok := c.Get(RouteKey); ok {
			if s, ok := v.(string); ok {
				route = s
			}
		}
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requestCounter.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

const RouteKey = "route"
