package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SuggestionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_suggestions_created_total",
			Help: "Suggestions created, by lead priority",
		},
		[]string{"priority"},
	)

	SuggestionsApproved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_suggestions_approved_total",
			Help: "Suggestions approved and executed against the downstream stubs",
		},
	)

	RequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_requests_failed_total",
			Help: "Pipeline calls rejected or failed, by operation and error code",
		},
		[]string{"operation", "error_code"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triage_pipeline_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"stage"},
	)

	AuditEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "triage_audit_entries",
			Help: "Number of entries held in the in-memory audit log",
		},
	)

	AuditMirrorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_audit_mirror_failures_total",
			Help: "Audit entries a mirror sink failed to persist or dropped",
		},
		[]string{"sink"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
