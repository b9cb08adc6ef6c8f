// Package metrics defines the Prometheus metrics of the API.
//
// Metric naming follows Prometheus conventions:
//   - farmmarket_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts handled requests by route template, method and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmmarket_http_requests_total",
			Help: "Total HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDurationSeconds is a histogram of request latency by route.
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "farmmarket_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// LoginsTotal counts login attempts by outcome and matched role.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmmarket_logins_total",
			Help: "Total login attempts by outcome and role.",
		},
		[]string{"outcome", "role"},
	)

	// RegistrationsTotal counts registration attempts by role and outcome.
	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmmarket_registrations_total",
			Help: "Total registration attempts by role and outcome.",
		},
		[]string{"role", "outcome"},
	)

	// CartOperationsTotal counts cart engine operations by operation and outcome.
	CartOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmmarket_cart_operations_total",
			Help: "Total cart operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		LoginsTotal,
		RegistrationsTotal,
		CartOperationsTotal,
	)
}

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
)

// RecordRequest records one handled HTTP request.
func RecordRequest(route, method, status string, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RecordLogin records a login attempt. role is empty for failed attempts.
func RecordLogin(outcome, role string) {
	LoginsTotal.WithLabelValues(outcome, role).Inc()
}

// RecordRegistration records a registration attempt.
func RecordRegistration(role, outcome string) {
	RegistrationsTotal.WithLabelValues(role, outcome).Inc()
}

// RecordCartOperation records a cart engine call.
func RecordCartOperation(operation string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	CartOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
