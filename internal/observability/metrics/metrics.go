package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters for cycle outcomes and webhook traffic.
// A nil *Metrics is valid and records nothing, so tests and tools can
// run without a registry.
type Metrics struct {
	cycleRecords  *prometheus.CounterVec
	cycleRuns     *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycleRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifier",
			Name:      "cycle_records_total",
			Help:      "Records handled per cycle, by outcome",
		}, []string{"phase", "outcome"}),
		cycleRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifier",
			Name:      "cycle_runs_total",
			Help:      "Completed cycle executions, by result",
		}, []string{"phase", "result"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifier",
			Name:      "webhook_events_total",
			Help:      "Inbound provider webhook events",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.cycleRecords, m.cycleRuns, m.webhookEvents)
	return m
}

// ObserveRecord counts one classified record outcome (sent, ignored, failed).
func (m *Metrics) ObserveRecord(phase, outcome string) {
	if m == nil {
		return
	}
	m.cycleRecords.WithLabelValues(phase, outcome).Inc()
}

// ObserveRun counts one finished cycle execution.
func (m *Metrics) ObserveRun(phase, result string) {
	if m == nil {
		return
	}
	m.cycleRuns.WithLabelValues(phase, result).Inc()
}

// ObserveWebhookEvent counts one inbound webhook event.
func (m *Metrics) ObserveWebhookEvent(kind string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(kind).Inc()
}
