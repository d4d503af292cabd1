package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "condocare_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "condocare_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	reportsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "condocare_reports_created_total",
		Help: "Count of reports filed, by category",
	}, []string{"category"})

	reactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "condocare_reactions_total",
		Help: "Count of like/dislike operations by type and result",
	}, []string{"type", "result"})

	comments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "condocare_comments_total",
		Help: "Count of comments appended to reports",
	})

	reconcileRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "condocare_counter_reconcile_runs_total",
		Help: "Count of reaction-counter reconciliation sweeps by result",
	}, []string{"result"})

	reconcileCorrected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "condocare_counter_reconcile_corrected_total",
		Help: "Total counter rows corrected by reconciliation sweeps",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveReportCreated counts a newly filed report.
func ObserveReportCreated(category string) {
	reportsCreated.WithLabelValues(category).Inc()
}

// ObserveReaction counts a like/dislike operation with its outcome.
func ObserveReaction(typ, result string) {
	reactions.WithLabelValues(typ, result).Inc()
}

// ObserveComment counts an appended comment.
func ObserveComment() {
	comments.Inc()
}

// ObserveReconcile records one reconciliation sweep and how many counter
// rows it corrected.
func ObserveReconcile(result string, corrected int64) {
	reconcileRuns.WithLabelValues(result).Inc()
	if corrected > 0 {
		reconcileCorrected.Add(float64(corrected))
	}
}
