// Package metrics defines the Prometheus collectors of the service. All
// methods are safe on a nil *Metrics so handlers can run without metrics in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "student_rating"

// Result labels.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

type Metrics struct {
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	awards        *prometheus.CounterVec
	pointsAwarded prometheus.Counter
	sessions      *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration and provisioning attempts by result.",
		}, []string{"result"}),
		awards: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "awards_total",
			Help:      "Point award requests by result.",
		}, []string{"result"}),
		pointsAwarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Sum of points granted to students.",
		}),
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Session lifecycle events.",
		}, []string{"event"}),
	}
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) Award(result string, points int) {
	if m == nil {
		return
	}
	m.awards.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		m.pointsAwarded.Add(float64(points))
	}
}

func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues("created").Inc()
}

func (m *Metrics) SessionDestroyed() {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues("destroyed").Inc()
}

// ResultOf classifies an operation error: nil is success, errors the caller
// treats as client mistakes are rejected, everything else is an error.
func ResultOf(err error, rejected func(error) bool) string {
	switch {
	case err == nil:
		return ResultSuccess
	case rejected != nil && rejected(err):
		return ResultRejected
	default:
		return ResultError
	}
}
