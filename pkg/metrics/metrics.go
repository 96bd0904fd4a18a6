package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scheduler scan metrics
	ScanRuns          *prometheus.CounterVec
	ScanFailures      *prometheus.CounterVec
	ScanItemsNotified *prometheus.CounterVec
	ScanDuration      *prometheus.HistogramVec

	// Outbox metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		ScanRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_scan_runs_total",
			Help:      "Total number of scheduler scan executions",
		}, []string{"scan"}),
		ScanFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_scan_failures_total",
			Help:      "Total number of scheduler scan failures",
		}, []string{"scan"}),
		ScanItemsNotified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_scan_items_notified_total",
			Help:      "Total number of notifications emitted by scheduler scans",
		}, []string{"scan"}),
		ScanDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduler_scan_duration_seconds",
			Help:      "Duration of scheduler scans",
			Buckets:   prometheus.DefBuckets,
		}, []string{"scan"}),
		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox batches",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
