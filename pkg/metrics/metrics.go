// Package metrics provides Prometheus metrics for the tugfm background workers.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Filesystem task metrics
	tasksStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tugfm_tasks_started_total",
			Help: "Total number of filesystem tasks started",
		},
		[]string{"kind"},
	)

	tasksFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tugfm_tasks_finished_total",
			Help: "Total number of filesystem tasks that reached a terminal status",
		},
		[]string{"kind", "outcome"},
	)

	tasksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tugfm_tasks_in_flight",
			Help: "Number of filesystem tasks currently executing",
		},
	)

	// Preview pipeline metrics
	previewRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tugfm_preview_requests_total",
			Help: "Total number of rasterization requests enqueued",
		},
		[]string{"stage"},
	)

	previewEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tugfm_preview_events_total",
			Help: "Total number of preview events emitted by the worker",
		},
		[]string{"type"},
	)

	previewStaleEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tugfm_preview_stale_events_total",
			Help: "Total number of preview events dropped because the selection changed",
		},
	)

	rasterDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tugfm_raster_duration_seconds",
			Help:    "Time spent rasterizing a preview request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)

// Handler returns the HTTP handler for the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTaskStarted records a filesystem task being admitted into execution.
func RecordTaskStarted(kind string) {
	tasksStartedTotal.WithLabelValues(kind).Inc()
	tasksInFlight.Inc()
}

// RecordTaskFinished records a filesystem task reaching Completed or Failed.
func RecordTaskFinished(kind string, failed bool) {
	outcome := "completed"
	if failed {
		outcome = "failed"
	}
	tasksFinishedTotal.WithLabelValues(kind, outcome).Inc()
	tasksInFlight.Dec()
}

func RecordPreviewRequest(stage string) {
	previewRequestsTotal.WithLabelValues(stage).Inc()
}

func RecordPreviewEvent(eventType string, seconds float64, stage string) {
	previewEventsTotal.WithLabelValues(eventType).Inc()
	rasterDuration.WithLabelValues(stage).Observe(seconds)
}

func RecordStalePreviewEvent() {
	previewStaleEventsTotal.Inc()
}
