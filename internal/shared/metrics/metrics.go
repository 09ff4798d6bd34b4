package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Membership metrics
	MembershipOpsTotal   *prometheus.CounterVec
	RosterConflictsTotal prometheus.Counter
	InviteMailsTotal     *prometheus.CounterVec
}

// New registers all metrics on reg. A nil reg uses the default registerer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "roster"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		MembershipOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "membership",
				Name:      "operations_total",
				Help:      "Membership operations by outcome",
			},
			[]string{"operation", "result"}, // result: ok, error
		),
		RosterConflictsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "membership",
				Name:      "roster_conflicts_total",
				Help:      "Roster writes rejected by a concurrent update and retried",
			},
		),
		InviteMailsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "membership",
				Name:      "invite_mails_total",
				Help:      "Invite notifications by outcome",
			},
			[]string{"result"},
		),
	}
}

// RecordHTTPRequest records one HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOperation counts a membership operation outcome.
func (m *Metrics) RecordOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.MembershipOpsTotal.WithLabelValues(operation, result).Inc()
}

// RecordRosterConflict counts a lost compare-and-set.
func (m *Metrics) RecordRosterConflict() {
	m.RosterConflictsTotal.Inc()
}

// RecordInviteMail counts an invite notification outcome.
func (m *Metrics) RecordInviteMail(err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.InviteMailsTotal.WithLabelValues(result).Inc()
}
