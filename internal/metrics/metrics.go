// Package metrics holds the Prometheus instrumentation for the assistant:
// text generation outcomes and latency, and the phase mix of inbound messages.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements nlg.Observer and the orchestrator's phase observer.
// All methods are safe on a nil receiver so components can run uninstrumented.
type Metrics struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	phases      *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wayfarer",
			Name:      "generations_total",
			Help:      "Text generation calls by purpose and outcome (ok or failure kind).",
		}, []string{"purpose", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wayfarer",
			Name:      "generation_duration_seconds",
			Help:      "Latency of text generation calls, including failed ones.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"purpose"}),
		phases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wayfarer",
			Name:      "messages_total",
			Help:      "Inbound messages by classified trip phase.",
		}, []string{"phase"}),
	}
	m.registry.MustRegister(m.generations, m.latency, m.phases)
	return m
}

// ObserveGeneration records one guarded generation call.
func (m *Metrics) ObserveGeneration(purpose, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(purpose, outcome).Inc()
	m.latency.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

// ObservePhase records the phase an inbound message was routed to.
func (m *Metrics) ObservePhase(phase string) {
	if m == nil {
		return
	}
	m.phases.WithLabelValues(phase).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
