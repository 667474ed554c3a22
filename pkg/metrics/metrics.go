package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	WebhooksReceived *prometheus.CounterVec
	LeadsIngested    *prometheus.CounterVec
	DuplicatesMerged *prometheus.CounterVec
	LoginAttempts    *prometheus.CounterVec
	ExportsCreated   prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		WebhooksReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketing_webhooks_received_total",
				Help: "Total number of marketing webhooks received",
			},
			[]string{"platform", "outcome"}, // created, merged, failed
		),
		LeadsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_ingested_total",
				Help: "Total number of new leads created via webhook ingestion",
			},
			[]string{"platform"},
		),
		DuplicatesMerged: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_duplicates_merged_total",
				Help: "Total number of duplicate leads merged as re-engagements",
			},
			[]string{"platform"},
		),
		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success, failed
		),
		ExportsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "exports_created_total",
			Help: "Total number of lead exports created",
		}),
	}

	return m
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // Use route pattern, not actual path (e.g., /api/v1/leads/:id)

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)

			return err
		}
	}
}

// RecordWebhook increments the webhook counter with its processing outcome.
func (m *Metrics) RecordWebhook(platform, outcome string) {
	m.WebhooksReceived.WithLabelValues(platform, outcome).Inc()
}

// RecordLeadIngested increments the new-lead counter
func (m *Metrics) RecordLeadIngested(platform string) {
	m.LeadsIngested.WithLabelValues(platform).Inc()
}

// RecordDuplicateMerged increments the re-engagement counter
func (m *Metrics) RecordDuplicateMerged(platform string) {
	m.DuplicatesMerged.WithLabelValues(platform).Inc()
}

// RecordLoginAttempt increments login attempts counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// RecordExportCreated increments exports created counter
func (m *Metrics) RecordExportCreated() {
	m.ExportsCreated.Inc()
}
