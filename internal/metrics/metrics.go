package metrics

import (
	"strconv"
	"time"

	"codeberg.org/incdrops/server/internal/quota"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "incdrops"

// the server's prometheus collectors. it satisfies the observer interfaces of
// the quota tracker, the generator and the billing webhook
type Metrics struct {
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	quotaDecisions   *prometheus.CounterVec
	quotaStoreErrors *prometheus.CounterVec

	generationDuration *prometheus.HistogramVec
	generationsTotal   *prometheus.CounterVec

	webhookEvents   *prometheus.CounterVec
	webhookDuration *prometheus.HistogramVec
}

// registers all collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		quotaDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "quota",
				Name:      "decisions_total",
				Help:      "Quota decisions by tier and outcome",
			},
			[]string{"tier", "outcome"},
		),
		quotaStoreErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "quota",
				Name:      "store_errors_total",
				Help:      "Quota store operations that failed and were served degraded",
			},
			[]string{"op"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "generator",
				Name:      "duration_seconds",
				Help:      "Time spent waiting for the generation provider",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 60},
			},
			[]string{"provider"},
		),
		generationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generator",
				Name:      "generations_total",
				Help:      "Generations by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		webhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "webhook_events_total",
				Help:      "Payment webhook events by type and status",
			},
			[]string{"event_type", "status"},
		),
		webhookDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "webhook_duration_seconds",
				Help:      "Payment webhook processing time",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"event_type"},
		),
	}
}

func (m *Metrics) ObserveDecision(d quota.Decision) {
	outcome := "allowed"

	switch {
	case !d.Allowed:
		outcome = "denied"
	case d.Degraded:
		outcome = "allowed_degraded"
	}

	m.quotaDecisions.WithLabelValues(tierLabel(d.Tier), outcome).Inc()
}

func (m *Metrics) ObserveStoreError(op string) {
	m.quotaStoreErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveGeneration(provider, outcome string, d time.Duration) {
	m.generationDuration.WithLabelValues(provider).Observe(d.Seconds())
	m.generationsTotal.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ObserveWebhook(eventType, status string, d time.Duration) {
	m.webhookEvents.WithLabelValues(eventType, status).Inc()
	m.webhookDuration.WithLabelValues(eventType).Observe(d.Seconds())
}

// records request duration and count per route pattern
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		status := strconv.Itoa(c.Writer.Status())

		m.httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// keeps label cardinality bounded when clients send arbitrary tiers
func tierLabel(tier string) string {
	if quota.ValidTier(tier) {
		return tier
	}

	return "other"
}
