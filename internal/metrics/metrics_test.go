package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/welcomebot/internal/delivery"
	"github.com/prilive-com/welcomebot/internal/metrics"
)

var _ delivery.Observer = (*metrics.Metrics)(nil)

func TestNew_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.RecordActivity()
	m.RecordUpdate("text", 10*time.Millisecond)
	m.RecordCommand("joke", metrics.StatusOK)
	m.ObserveAttempt("welcome", delivery.OutcomeFailed)
	m.ObserveResult(delivery.OutcomeDelivered)
	m.RecordReset("weekly")

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"welcomebot_updates_total",
		"welcomebot_commands_total",
		"welcomebot_update_duration_seconds",
		"welcomebot_delivery_attempts_total",
		"welcomebot_delivery_results_total",
		"welcomebot_activity_messages_total",
		"welcomebot_counter_resets_total",
	}, names)

	// A second registry is independent.
	assert.NotPanics(t, func() { metrics.New(prometheus.NewRegistry()) })
}

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.RecordCommand("sticker", metrics.StatusOK)
	m.RecordCommand("sticker", metrics.StatusDegraded)
	m.RecordCommand("sticker", metrics.StatusDegraded)
	m.ObserveAttempt("fallback", delivery.OutcomeDelivered)
	m.RecordActivity()
	m.RecordActivity()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("sticker", metrics.StatusDegraded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("sticker", metrics.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeliveryAttempts.WithLabelValues("fallback", delivery.OutcomeDelivered)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActivityMessages))
}

func TestMetrics_ResetsExposition(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	m.RecordReset("monthly")

	expected := `
# HELP welcomebot_counter_resets_total Rolling activity counter resets, by period.
# TYPE welcomebot_counter_resets_total counter
welcomebot_counter_resets_total{period="monthly"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(m.CounterResets, strings.NewReader(expected)))
}
