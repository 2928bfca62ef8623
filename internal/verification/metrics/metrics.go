// Package metrics holds the Prometheus instruments for the verification
// engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all engine instruments. The verification service takes it
// optionally; a nil *Metrics disables recording.
type Metrics struct {
	VerificationsTotal *prometheus.CounterVec
	CheckDuration      *prometheus.HistogramVec
	ForensicPenalty    prometheus.Histogram
	OverridesTotal     *prometheus.CounterVec
}

// New registers the engine metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the engine metrics on reg. Tests pass a fresh registry
// to avoid duplicate registration across cases.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_verifications_total",
			Help: "Verifications completed, by document type and decision.",
		}, []string{"document_type", "decision"}),
		CheckDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veridoc_check_duration_seconds",
			Help:    "Wall time of individual forensic checks.",
			Buckets: prometheus.DefBuckets,
		}, []string{"check"}),
		ForensicPenalty: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridoc_forensic_penalty",
			Help:    "Aggregated forensic penalty per verification.",
			Buckets: prometheus.LinearBuckets(0, 1.5, 11),
		}),
		OverridesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_overrides_total",
			Help: "Decision overrides fired, by kind.",
		}, []string{"kind"}),
	}
}

// ObserveVerification records one completed verification.
func (m *Metrics) ObserveVerification(documentType, decision string, penalty float64) {
	m.VerificationsTotal.WithLabelValues(documentType, decision).Inc()
	m.ForensicPenalty.Observe(penalty)
}

// ObserveCheck records one forensic check execution.
func (m *Metrics) ObserveCheck(check string, elapsed time.Duration) {
	m.CheckDuration.WithLabelValues(check).Observe(elapsed.Seconds())
}

// ObserveOverride records one decision override firing.
func (m *Metrics) ObserveOverride(kind string) {
	m.OverridesTotal.WithLabelValues(kind).Inc()
}
