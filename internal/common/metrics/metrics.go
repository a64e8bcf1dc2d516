// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"contract-query-workers/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlp_queries_total",
			Help: "Queries interpreted, by query and action type",
		},
		[]string{"query_type", "action_type"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nlp_query_duration_seconds",
			Help:    "Time spent interpreting one query",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
		[]string{"query_type"},
	)

	ValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlp_validation_errors_total",
			Help: "Validation errors attached to query results",
		},
		[]string{"code", "severity"},
	)

	SpellCorrections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlp_spell_corrections_total",
			Help: "Words replaced by the spell dictionary",
		},
	)
)

// QueryObserver records every interpreted query into the nlp_* series.
type QueryObserver struct{}

func (QueryObserver) ObserveQuery(result *models.QueryResult, corrections int) {
	qt := string(result.Metadata.QueryType)
	QueriesTotal.WithLabelValues(qt, string(result.Metadata.ActionType)).Inc()
	QueryDuration.WithLabelValues(qt).Observe(
		(time.Duration(result.Metadata.ProcessingTimeMs) * time.Millisecond).Seconds())
	for _, e := range result.Errors {
		ValidationErrors.WithLabelValues(e.Code, string(e.Severity)).Inc()
	}
	if corrections > 0 {
		SpellCorrections.Add(float64(corrections))
	}
}

// JobTimer tracks one job for the worker_* series.
type JobTimer struct {
	taskType string
	start    time.Time
}

func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

func (j *JobTimer) Completed() {
	j.finish()
	WorkerJobsCompleted.WithLabelValues(j.taskType).Inc()
}

func (j *JobTimer) Failed(errorCode string) {
	j.finish()
	WorkerJobsFailed.WithLabelValues(j.taskType, errorCode).Inc()
}

func (j *JobTimer) finish() {
	WorkerJobsActive.WithLabelValues(j.taskType).Dec()
	WorkerJobDuration.WithLabelValues(j.taskType).Observe(time.Since(j.start).Seconds())
}
