// Package metrics collects and exposes prometheus metrics for the web frontend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records backend traffic, identity operations and the visitor count.
type Collector struct {
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	authOperations  *prometheus.CounterVec
	activeVisitors  prometheus.Gauge
	pageRenders     *prometheus.CounterVec
}

// creates a collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_backend_requests_total",
			Help: "Requests sent to the REST backend by operation and status code.",
		}, []string{"op", "status_code"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsdesk_backend_request_duration_seconds",
			Help:    "Latency of REST backend requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		authOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_auth_operations_total",
			Help: "Identity provider operations by name and outcome.",
		}, []string{"op", "outcome"}),
		activeVisitors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newsdesk_active_visitors",
			Help: "Visitors currently held in the session registry.",
		}),
		pageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_page_renders_total",
			Help: "Rendered pages by route name and guard outcome.",
		}, []string{"route", "outcome"}),
	}

	reg.MustRegister(
		c.backendRequests,
		c.backendLatency,
		c.authOperations,
		c.activeVisitors,
		c.pageRenders,
	)

	return c
}

// status 0 means the request never got a response
func (c *Collector) RecordBackendRequest(op string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}

	c.backendRequests.WithLabelValues(op, code).Inc()
	c.backendLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (c *Collector) RecordAuthOperation(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	c.authOperations.WithLabelValues(op, outcome).Inc()
}

func (c *Collector) SetActiveVisitors(n int) {
	c.activeVisitors.Set(float64(n))
}

// outcome is one of rendered, loading, redirected
func (c *Collector) RecordPage(route, outcome string) {
	c.pageRenders.WithLabelValues(route, outcome).Inc()
}

// returns the scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
