package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Logins          prometheus.Counter
	AuthFailures    prometheus.Counter
	ActiveSessions  prometheus.Gauge
	TokenRefreshes  prometheus.Counter
	TokenValidates  *prometheus.CounterVec
	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on reg. Passing an
// explicit registerer keeps tests free of global-registry collisions.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Logins: factory.NewCounter(prometheus.CounterOpts{
			Name: "carddemo_logins_total",
			Help: "Total number of successful logins",
		}),
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "carddemo_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "carddemo_active_sessions",
			Help: "Current number of active sessions",
		}),
		TokenRefreshes: factory.NewCounter(prometheus.CounterOpts{
			Name: "carddemo_token_refreshes_total",
			Help: "Total number of access token refreshes",
		}),
		TokenValidates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carddemo_token_validations_total",
			Help: "Total number of token validation checks, labeled by verdict",
		}, []string{"verdict"}),
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carddemo_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) IncrementLogins() {
	m.Logins.Inc()
}

func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

func (m *Metrics) IncrementActiveSessions(count int) {
	m.ActiveSessions.Add(float64(count))
}

func (m *Metrics) DecrementActiveSessions(count int) {
	m.ActiveSessions.Sub(float64(count))
}

func (m *Metrics) IncrementTokenRefreshes() {
	m.TokenRefreshes.Inc()
}

func (m *Metrics) IncrementTokenValidations(valid bool) {
	verdict := "invalid"
	if valid {
		verdict = "valid"
	}
	m.TokenValidates.WithLabelValues(verdict).Inc()
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}
