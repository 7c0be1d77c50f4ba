package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photodisplay",
		Name:      "jobs_processed_total",
		Help:      "Total number of enrichment jobs processed, by kind and outcome",
	}, []string{"kind", "outcome"})

	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "photodisplay",
		Name:      "job_duration_seconds",
		Help:      "Duration of enrichment job execution",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"kind"})

	PhotosSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photodisplay",
		Name:      "photos_submitted_total",
		Help:      "Total number of photos accepted for enrichment",
	})

	PhotosConverged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photodisplay",
		Name:      "photos_converged_total",
		Help:      "Total number of photos reaching a terminal status",
	}, []string{"status"})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "photodisplay",
		Name:      "queue_depth",
		Help:      "Number of pending enrichment jobs in the queue",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "photodisplay",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
