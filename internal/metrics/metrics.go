// Package metrics holds the Prometheus collectors for token refreshes,
// directory requests, approval decisions and tool calls.
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

// Metrics holds all Prometheus metrics for the server.
type Metrics struct {
	registry *prometheus.Registry

	TokenRefreshes      *prometheus.CounterVec
	TokenRefreshLatency *prometheus.HistogramVec
	DirectoryRequests   *prometheus.CounterVec
	DirectoryLatency    *prometheus.HistogramVec
	GateDecisions       *prometheus.CounterVec
	ToolCalls           *prometheus.CounterVec
}

// New creates and registers all metrics on a fresh registry, so several
// instances can coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TokenRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelmind_token_refreshes_total",
			Help: "Token requests made to identity providers, labeled by provider and outcome",
		}, []string{"provider", "outcome"}),
		TokenRefreshLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentinelmind_token_refresh_seconds",
			Help:    "Latency of token requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		DirectoryRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelmind_directory_requests_total",
			Help: "Directory API requests, labeled by directory, method and status code",
		}, []string{"directory", "method", "code"}),
		DirectoryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentinelmind_directory_request_seconds",
			Help:    "Latency of directory API requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"directory", "method"}),
		GateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelmind_gate_decisions_total",
			Help: "Approval gate decisions, labeled by action and result",
		}, []string{"action", "result"}),
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelmind_tool_calls_total",
			Help: "MCP tool invocations, labeled by tool and outcome",
		}, []string{"tool", "outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveTokenRefresh records one token request. Its signature matches
// oauth.RefreshObserver.
func (m *Metrics) ObserveTokenRefresh(provider string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.TokenRefreshes.WithLabelValues(provider, outcome).Inc()
	m.TokenRefreshLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveDirectoryRequest records one directory API call. status is 0 when no
// response was received.
func (m *Metrics) ObserveDirectoryRequest(directory, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.DirectoryRequests.WithLabelValues(directory, method, code).Inc()
	m.DirectoryLatency.WithLabelValues(directory, method).Observe(elapsed.Seconds())
}

// ObserveGateDecision records an approval gate evaluation.
func (m *Metrics) ObserveGateDecision(action string, canExecute bool) {
	if m == nil {
		return
	}
	result := "blocked"
	if canExecute {
		result = "allowed"
	}
	m.GateDecisions.WithLabelValues(action, result).Inc()
}

// ObserveToolCall records a tool invocation outcome ("success", "error" or
// "invalid").
func (m *Metrics) ObserveToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
}
