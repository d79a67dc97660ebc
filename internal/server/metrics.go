package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricEvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foilopt",
		Name:      "evaluations_total",
		Help:      "Total objective evaluations across all jobs.",
	})

	metricEvaluationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foilopt",
		Name:      "evaluation_failures_total",
		Help:      "Objective evaluations that failed in the solver or parser.",
	})

	metricJobsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "foilopt",
		Name:      "jobs_running",
		Help:      "Optimization jobs currently running.",
	})

	metricJobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "foilopt",
		Name:      "job_duration_seconds",
		Help:      "Wall-clock duration of completed optimization jobs.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
)
