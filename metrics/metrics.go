package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// Intake metrics
	intakeSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Visitor form submissions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	notificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_notification_failures_total",
			Help: "Staff notifications that could not be delivered",
		},
		[]string{"kind"},
	)

	// Triage metrics
	triageActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_records_updated_total",
			Help: "Records changed by staff triage actions",
		},
		[]string{"resource", "action"},
	)

	contentViewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_views_total",
			Help: "Public detail views by catalog",
		},
		[]string{"catalog"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordIntakeSubmission counts a form submission; outcome is "accepted", "invalid" or "error"
func RecordIntakeSubmission(kind, outcome string) {
	intakeSubmissionsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordNotificationFailure counts a staff notification that failed after the record was saved
func RecordNotificationFailure(kind string) {
	notificationFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordTriageAction adds the number of records a staff action changed
func RecordTriageAction(resource, action string, updated int64) {
	if updated <= 0 {
		return
	}
	triageActionsTotal.WithLabelValues(resource, action).Add(float64(updated))
}

// RecordContentView counts a public detail view
func RecordContentView(catalog string) {
	contentViewsTotal.WithLabelValues(catalog).Inc()
}

// Handler exposes the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
