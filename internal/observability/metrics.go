// Package observability exposes Prometheus metrics for the consensus engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements the engine's Observer against Prometheus collectors.
type Metrics struct {
	deliberations *prometheus.CounterVec
	fallbacks     prometheus.Counter
	duration      prometheus.Histogram
	active        prometheus.Gauge
}

// NewMetrics registers the consensus collectors on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		deliberations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consensus_deliberations_total",
			Help: "Completed deliberations by strategy and consensus level.",
		}, []string{"strategy", "level"}),
		fallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consensus_fallbacks_total",
			Help: "Deliberations that degraded to the fallback consensus.",
		}),
		duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "consensus_deliberation_duration_seconds",
			Help:    "End-to-end deliberation duration.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		}),
		active: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "consensus_active_deliberations",
			Help: "Deliberations currently in flight.",
		}),
	}
}

// ObserveDeliberation records a completed deliberation's outcome.
func (m *Metrics) ObserveDeliberation(strategy string, level string, seconds float64, fellBack bool) {
	m.deliberations.WithLabelValues(strategy, level).Inc()
	m.duration.Observe(seconds)
	if fellBack {
		m.fallbacks.Inc()
	}
}

// SetActiveDeliberations updates the in-flight gauge.
func (m *Metrics) SetActiveDeliberations(n int) {
	m.active.Set(float64(n))
}
