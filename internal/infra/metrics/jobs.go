package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(jobsProcessedTotal, jobsPending)
}

var (
	jobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_jobs_processed_total",
			Help: "Total number of deferred jobs processed, by name and outcome.",
		},
		[]string{"name", "status"}, // status: 'done' | 'failed'
	)

	jobsPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "retention_jobs_pending",
			Help: "Deferred jobs claimed in the last worker poll.",
		},
	)
)

func IncJobProcessed(name, status string) {
	jobsProcessedTotal.WithLabelValues(name, status).Inc()
}

func SetJobsClaimed(n int) {
	jobsPending.Set(float64(n))
}
