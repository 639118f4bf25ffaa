package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RecordsProcessed   *prometheus.CounterVec
	CollaboratorErrors *prometheus.CounterVec
	RequestSeconds     *prometheus.HistogramVec
	ActiveRuns         prometheus.Gauge
	StaleRunsDiscarded prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RecordsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "enrichment_records_processed_total",
			Help: "Total number of restaurants processed by the enrichment pipeline.",
		}, []string{"status"}),
		CollaboratorErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "enrichment_collaborator_errors_total",
			Help: "Total number of errors received from external collaborators.",
		}, []string{"collaborator"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enrichment_collaborator_request_duration_seconds",
			Help:    "Duration of requests to external collaborators.",
			Buckets: prometheus.DefBuckets,
		}, []string{"collaborator"}),
		ActiveRuns: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "enrichment_active_runs",
			Help: "Current number of pipeline runs in flight.",
		}),
		StaleRunsDiscarded: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "enrichment_stale_runs_discarded_total",
			Help: "Total number of pipeline runs discarded because a newer viewport superseded them.",
		}),
	}
}
