// Package metrics exposes Prometheus counters for resume requests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes recorded by ObserveRequest.
const (
	OutcomeSent         = "sent"
	OutcomeSimulated    = "simulated"
	OutcomeInvalid      = "invalid"
	OutcomeNotAllowed   = "method_not_allowed"
	OutcomeTooLarge     = "too_large"
	OutcomeUnconfigured = "unconfigured"
	OutcomeUnexpected   = "unexpected_response"
	OutcomeError        = "error"
)

// Metrics holds the collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	DeliveryDuration *prometheus.HistogramVec
	AttachmentTotal  *prometheus.CounterVec
}

// New registers the collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_requests_total",
				Help: "Total number of resume requests by delivery policy and outcome",
			},
			[]string{"policy", "outcome"},
		),

		DeliveryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resume_delivery_duration_seconds",
				Help:    "Time spent in the delivery provider call",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),

		AttachmentTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_attachment_total",
				Help: "Resume attachment load results",
			},
			[]string{"result"},
		),
	}
}

// ObserveRequest counts a finished request.
func (m *Metrics) ObserveRequest(policy, outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(policy, outcome).Inc()
}

// ObserveDelivery records how long a provider call took.
func (m *Metrics) ObserveDelivery(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.DeliveryDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveAttachment counts an attachment load result.
func (m *Metrics) ObserveAttachment(result string) {
	if m == nil {
		return
	}
	m.AttachmentTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
