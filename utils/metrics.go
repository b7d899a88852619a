package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Current number of active HTTP requests",
		},
	)

	// Database Metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "collection"},
	)

	// Attendance Metrics
	AttendanceToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_toggles_total",
			Help: "Total number of attendance toggles by resulting transition",
		},
		[]string{"transition"}, // checked_in, checked_out
	)

	ToggleConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_toggle_conflicts_total",
			Help: "Conditional updates that lost a race and were retried",
		},
	)

	GeofenceRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_geofence_rejections_total",
			Help: "Toggles rejected by the location checks",
		},
		[]string{"reason"}, // invalid_location, too_far
	)

	AutoCheckouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_auto_checkouts_total",
			Help: "Sessions processed by the auto-checkout reconciler",
		},
		[]string{"result"}, // closed, failed
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Push notifications by outcome",
		},
		[]string{"result"}, // queued, sent, skipped, failed
	)

	// Cache Metrics
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache lookups by result",
		},
		[]string{"cache", "result"},
	)

	// Authentication Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status", "type"},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type", "reason"},
	)
)

// TrackDBOperation tracks database operation duration
func TrackDBOperation(operation, collection string) *prometheus.Timer {
	return prometheus.NewTimer(DBOperationDuration.WithLabelValues(operation, collection))
}

// TrackError increments the error counter by type
func TrackError(errorType, reason string) {
	ErrorsTotal.WithLabelValues(errorType, reason).Inc()
}

func TrackAuthAttempt(status, authType string) {
	AuthAttempts.WithLabelValues(status, authType).Inc()
}

func TrackCacheOperation(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheOperations.WithLabelValues(cache, result).Inc()
}
