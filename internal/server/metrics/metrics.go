// Package metrics exposes Prometheus counters for session operations and
// the HTTP listener that serves them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AuthMetrics counts session operations by outcome. Outcome is the error
// kind name, "ok" on success.
type AuthMetrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accountkeeper_auth_operations_total",
				Help: "Total number of session operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "accountkeeper_auth_operation_duration_seconds",
				Help:    "Session operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	reg.MustRegister(m.Operations)
	reg.MustRegister(m.Duration)

	return m
}

// Observe records one finished operation.
func (m *AuthMetrics) Observe(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.Duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
