// Package metrics provides Prometheus metrics for the infofact server.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/infofact/internal/model"
)

const namespace = "infofact"

// Metrics holds the collectors and the registry they are registered on
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts HTTP requests by route, method and status code.
	RequestsTotal *prometheus.CounterVec

	// AgentRunsTotal counts agent runs by agent and outcome (ok, error).
	AgentRunsTotal *prometheus.CounterVec

	// AgentDuration measures agent run latency.
	AgentDuration *prometheus.HistogramVec

	// TrustScore observes factual-consistency scores.
	TrustScore prometheus.Histogram

	// Sessions tracks the number of live sessions.
	Sessions prometheus.Gauge
}

// New creates metrics on a fresh registry that also carries the Go and
// process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		AgentRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_runs_total",
				Help:      "Total number of agent runs",
			},
			[]string{"agent", "outcome"},
		),
		AgentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "agent_duration_seconds",
				Help:      "Duration of agent runs in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"agent"},
		),
		TrustScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "trust_score",
				Help:      "Distribution of article trustworthiness scores",
				Buckets:   prometheus.LinearBuckets(10, 10, 10),
			},
		),
		Sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions",
				Help:      "Number of sessions held in memory",
			},
		),
	}

	reg.MustRegister(m.RequestsTotal, m.AgentRunsTotal, m.AgentDuration, m.TrustScore, m.Sessions)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRequest records one HTTP request
func (m *Metrics) RecordRequest(route, method string, status int) {
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// RecordReport records one finished agent run
func (m *Metrics) RecordReport(r *model.Report) {
	outcome := "ok"
	if r.Failed() {
		outcome = "error"
	}
	m.AgentRunsTotal.WithLabelValues(r.Agent, outcome).Inc()
	m.AgentDuration.WithLabelValues(r.Agent).Observe(r.Duration.Seconds())
	if r.Score != nil {
		m.TrustScore.Observe(float64(r.Score.Index))
	}
}

// SetSessions updates the session gauge
func (m *Metrics) SetSessions(n int) {
	m.Sessions.Set(float64(n))
}
