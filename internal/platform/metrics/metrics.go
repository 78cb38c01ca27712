package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	MinesCreated       prometheus.Counter
	MinesDeleted       prometheus.Counter
	Verifications      prometheus.Counter
	LicenseTransitions *prometheus.CounterVec
	UsersRegistered    prometheus.Counter

	EnrichmentRequests  prometheus.Counter
	EnrichmentFallbacks prometheus.Counter
	EnrichmentLatency   prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		MinesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minetrack_mines_created_total",
			Help: "Total number of mine submissions accepted",
		}),
		MinesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minetrack_mines_deleted_total",
			Help: "Total number of mine records deleted",
		}),
		Verifications: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minetrack_verifications_total",
			Help: "Total number of verification status changes applied",
		}),
		LicenseTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "minetrack_license_transitions_total",
			Help: "Total number of license status transitions by target state",
		}, []string{"to"}),
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minetrack_users_registered_total",
			Help: "Total number of registered users",
		}),
		EnrichmentRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minetrack_enrichment_requests_total",
			Help: "Total number of weather enrichment lookups attempted",
		}),
		EnrichmentFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minetrack_enrichment_fallbacks_total",
			Help: "Total number of enrichment lookups that used the fallback snapshot",
		}),
		EnrichmentLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "minetrack_enrichment_latency_seconds",
			Help:    "Latency of upstream weather provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveEnrichment records one upstream lookup and whether it degraded to the
// fallback snapshot.
func (m *Metrics) ObserveEnrichment(d time.Duration, degraded bool) {
	if m == nil {
		return
	}
	m.EnrichmentRequests.Inc()
	m.EnrichmentLatency.Observe(d.Seconds())
	if degraded {
		m.EnrichmentFallbacks.Inc()
	}
}

// IncrementLicenseTransition records a license change to the given state.
func (m *Metrics) IncrementLicenseTransition(to string) {
	if m == nil {
		return
	}
	m.LicenseTransitions.WithLabelValues(to).Inc()
}
