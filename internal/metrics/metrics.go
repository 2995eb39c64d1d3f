// Package metrics exposes Prometheus instrumentation for the categorizer, the
// ledger and the HTTP API. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "expense_categorizer"

// Metrics holds every collector of the application on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	Resolutions    *prometheus.CounterVec
	StrategyErrors *prometheus.CounterVec
	AICalls        *prometheus.CounterVec
	AILatency      prometheus.Histogram
	Confirmations  *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPLatency    *prometheus.HistogramVec
}

// New registers all collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Category resolutions by the cascade stage that produced the category.",
		}, []string{"source", "tentative"}),
		StrategyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_errors_total",
			Help:      "Cascade stages that failed and were treated as no answer.",
		}, []string{"strategy"}),
		AICalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_calls_total",
			Help:      "AI classifier calls by outcome.",
		}, []string{"outcome"}),
		AILatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_call_duration_seconds",
			Help:      "AI classifier call latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirmations_total",
			Help:      "Confirmation write-backs to the learning stores by status.",
		}, []string{"status"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Resolutions,
		m.StrategyErrors,
		m.AICalls,
		m.AILatency,
		m.Confirmations,
		m.HTTPRequests,
		m.HTTPLatency,
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveResolution counts one finished resolution.
func (m *Metrics) ObserveResolution(source string, tentative bool) {
	if m == nil {
		return
	}
	t := "false"
	if tentative {
		t = "true"
	}
	m.Resolutions.WithLabelValues(source, t).Inc()
}

// ObserveStrategyError counts a failed cascade stage.
func (m *Metrics) ObserveStrategyError(strategy string) {
	if m == nil {
		return
	}
	m.StrategyErrors.WithLabelValues(strategy).Inc()
}

// ObserveAICall counts an AI call and records its latency. Calls that never
// reached the classifier pass a zero duration and are not timed.
func (m *Metrics) ObserveAICall(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.AICalls.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.AILatency.Observe(d.Seconds())
	}
}

// ObserveConfirmation counts a confirmation write-back.
func (m *Metrics) ObserveConfirmation(status string) {
	if m == nil {
		return
	}
	m.Confirmations.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest counts a served request and records its latency.
func (m *Metrics) ObserveHTTPRequest(route, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(d.Seconds())
}
