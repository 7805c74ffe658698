// Package metrics holds the Prometheus collectors for the chat server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use as a nil pointer; every Record method is then a no-op.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ProviderCallsTotal   *prometheus.CounterVec
	ProviderCallDuration *prometheus.HistogramVec

	MessagesPersistedTotal *prometheus.CounterVec
	IdempotentReplaysTotal prometheus.Counter
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in tests
// to avoid clashing with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_http_requests_total",
				Help: "HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chat_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		ProviderCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_provider_calls_total",
				Help: "Completion calls by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		ProviderCallDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chat_provider_call_duration_seconds",
				Help:    "Completion call latency by provider.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"provider"},
		),
		MessagesPersistedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_messages_persisted_total",
				Help: "Messages written to the message store by role.",
			},
			[]string{"role"},
		),
		IdempotentReplaysTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "chat_idempotent_replays_total",
				Help: "Chat requests answered from the idempotency store.",
			},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) RecordProviderCall(provider string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ProviderCallsTotal.WithLabelValues(provider, outcome).Inc()
	m.ProviderCallDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) RecordMessage(role string) {
	if m == nil {
		return
	}
	m.MessagesPersistedTotal.WithLabelValues(role).Inc()
}

func (m *Metrics) RecordReplay() {
	if m == nil {
		return
	}
	m.IdempotentReplaysTotal.Inc()
}
