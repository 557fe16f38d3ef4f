package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/incdrops/server/internal/quota"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveDecision(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveDecision(quota.Decision{Allowed: true, Tier: "free"})
	m.ObserveDecision(quota.Decision{Allowed: true, Tier: "free", Degraded: true})
	m.ObserveDecision(quota.Decision{Allowed: false, Tier: "free"})
	m.ObserveDecision(quota.Decision{Allowed: false, Tier: "platinum"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaDecisions.WithLabelValues("free", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaDecisions.WithLabelValues("free", "allowed_degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaDecisions.WithLabelValues("free", "denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaDecisions.WithLabelValues("other", "denied")))
}

func TestObserveStoreErrorAndGeneration(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveStoreError("get")
	m.ObserveStoreError("get")
	m.ObserveGeneration("gemini", "ok", 2*time.Second)
	m.ObserveWebhook("checkout.session.completed", "processed", 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.quotaStoreErrors.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationsTotal.WithLabelValues("gemini", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhookEvents.WithLabelValues("checkout.session.completed", "processed")))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/items/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "unknown", "404")))
}
