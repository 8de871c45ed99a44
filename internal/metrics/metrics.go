// Package metrics holds the console's Prometheus collectors
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "Console HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_login_attempts_total",
			Help: "Console login attempts by outcome",
		},
		[]string{"outcome"},
	)
	loginLockouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_login_lockouts_total",
			Help: "Devices locked out after reaching the failed login limit",
		},
	)
	sessionExpirations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_session_expirations_total",
			Help: "Sessions found expired, by detecting component",
		},
		[]string{"source"},
	)
	notificationPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_notification_polls_total",
			Help: "Unread notification fetches by result",
		},
		[]string{"result"},
	)
	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_backend_request_duration_seconds",
			Help:    "Upstream REST call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)
)

// Login outcomes
const (
	LoginSuccess   = "success"
	LoginFailure   = "failure"
	LoginLocked    = "locked"
	LoginForbidden = "forbidden"
	LoginError     = "error"
)

func RecordLoginAttempt(outcome string) {
	loginAttempts.WithLabelValues(outcome).Inc()
}

func RecordLockout() {
	loginLockouts.Inc()
}

// RecordSessionExpired counts an expiry seen by "guard" or "request"
func RecordSessionExpired(source string) {
	sessionExpirations.WithLabelValues(source).Inc()
}

func RecordNotificationPoll(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notificationPolls.WithLabelValues(result).Inc()
}

// ObserveBackend records one upstream call; status 0 means a transport error
func ObserveBackend(endpoint string, status int, elapsed time.Duration) {
	backendRequestDuration.WithLabelValues(endpoint, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
