package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for auth operations.
type Metrics struct {
	Logins                  *prometheus.CounterVec
	AuthFailures            prometheus.Counter
	UsersCreated            prometheus.Counter
	PasswordChanges         prometheus.Counter
	OAuthCallbackDurationMs prometheus.Histogram
}

// New registers and returns auth metrics collectors.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "immich_logins_total",
			Help: "Total number of successful logins by method",
		}, []string{"method"}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "immich_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "immich_users_created_total",
			Help: "Total number of users created",
		}),
		PasswordChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "immich_password_changes_total",
			Help: "Total number of successful password changes",
		}),
		OAuthCallbackDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "immich_oauth_callback_duration_ms",
			Help:    "Duration of OAuth callback handling including the provider exchange",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
	}
}

// IncrementLogin records a successful login for the given method.
func (m *Metrics) IncrementLogin(method string) {
	m.Logins.WithLabelValues(method).Inc()
}

// IncrementAuthFailures records an authentication failure.
func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

// IncrementUsersCreated records a user creation.
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

// IncrementPasswordChanges records a successful password change.
func (m *Metrics) IncrementPasswordChanges() {
	m.PasswordChanges.Inc()
}

// ObserveOAuthCallback records the duration of a callback exchange in milliseconds.
func (m *Metrics) ObserveOAuthCallback(ms float64) {
	m.OAuthCallbackDurationMs.Observe(ms)
}
