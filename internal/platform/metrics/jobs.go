package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(generationJobsTotal, generationAttempts, usersProvisionedTotal)
}

var generationJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "studyforge_generation_jobs_total",
		Help: "Total number of study generation jobs processed, labeled by outcome.",
	},
	[]string{"outcome"}, // 'completed', 'failed', 'noop'
)

var generationAttempts = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "studyforge_generation_attempts",
		Help:    "Generator attempts consumed per finished job.",
		Buckets: []float64{1, 2, 3},
	},
)

var usersProvisionedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "studyforge_users_provisioned_total",
		Help: "Total number of provisioning invocations, labeled by result.",
	},
	[]string{"result"}, // 'created', 'existing'
)

// ObserveGenerationJob records a finished generation job.
func ObserveGenerationJob(outcome string, attempts int) {
	generationJobsTotal.WithLabelValues(outcome).Inc()
	if attempts > 0 {
		generationAttempts.Observe(float64(attempts))
	}
}

// IncUserProvisioned records a provisioning invocation result.
func IncUserProvisioned(result string) {
	usersProvisionedTotal.WithLabelValues(result).Inc()
}
