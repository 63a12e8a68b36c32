// Package metrics holds the Prometheus collectors exported by the bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "welcomebot"

// Command outcome labels.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusPanic    = "panic"
	StatusDegraded = "degraded"
)

// Metrics is the set of collectors for one bot instance.
type Metrics struct {
	Updates          *prometheus.CounterVec
	Commands         *prometheus.CounterVec
	UpdateDuration   *prometheus.HistogramVec
	DeliveryAttempts *prometheus.CounterVec
	DeliveryResults  *prometheus.CounterVec
	ActivityMessages prometheus.Counter
	CounterResets    *prometheus.CounterVec
}

// New registers all collectors on reg. Use a fresh prometheus.NewRegistry()
// in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Updates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Updates received, by kind.",
		}, []string{"kind"}), // kind: command|text|joined|left|other

		Commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled, by command and status.",
		}, []string{"command", "status"}),

		UpdateDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_duration_seconds",
			Help:      "Time spent handling one update.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),

		DeliveryAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_attempts_total",
			Help:      "Resource delivery attempts, by tier and outcome.",
		}, []string{"tier", "outcome"}),

		DeliveryResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_results_total",
			Help:      "Completed delivery runs, by outcome.",
		}, []string{"outcome"}),

		ActivityMessages: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_messages_total",
			Help:      "Messages counted toward activity leaderboards.",
		}),

		CounterResets: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_resets_total",
			Help:      "Rolling activity counter resets, by period.",
		}, []string{"period"}),
	}
}

// ObserveAttempt implements delivery.Observer.
func (m *Metrics) ObserveAttempt(tier, outcome string) {
	m.DeliveryAttempts.WithLabelValues(tier, outcome).Inc()
}

// ObserveResult implements delivery.Observer.
func (m *Metrics) ObserveResult(outcome string) {
	m.DeliveryResults.WithLabelValues(outcome).Inc()
}

// RecordUpdate counts one update and how long it took.
func (m *Metrics) RecordUpdate(kind string, took time.Duration) {
	m.Updates.WithLabelValues(kind).Inc()
	m.UpdateDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// RecordCommand counts one handled command.
func (m *Metrics) RecordCommand(command, status string) {
	m.Commands.WithLabelValues(command, status).Inc()
}

// RecordActivity counts one tracked message.
func (m *Metrics) RecordActivity() {
	m.ActivityMessages.Inc()
}

// RecordReset counts a rolling counter reset. period is "weekly" or "monthly".
func (m *Metrics) RecordReset(period string) {
	m.CounterResets.WithLabelValues(period).Inc()
}
