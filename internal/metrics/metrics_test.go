package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveResolution("ai", true)
		m.ObserveStrategyError("user_memory")
		m.ObserveAICall("failed", time.Second)
		m.ObserveConfirmation("recorded")
		m.ObserveHTTPRequest("/add", "200", time.Millisecond)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveResolution("static_rule", false)
	m.ObserveResolution("static_rule", false)
	m.ObserveResolution("ai", true)
	m.ObserveStrategyError("dynamic_rule")
	m.ObserveAICall("answered", 20*time.Millisecond)
	m.ObserveAICall("disabled", 0)
	m.ObserveConfirmation("recorded")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("static_rule", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("ai", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategyErrors.WithLabelValues("dynamic_rule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AICalls.WithLabelValues("disabled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Confirmations.WithLabelValues("recorded")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.AILatency))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest("/add", "200", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `expense_categorizer_http_requests_total{code="200",route="/add"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
