package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotificationMetrics tracks the background confirmation dispatcher.
type NotificationMetrics struct {
	outcomes *prometheus.CounterVec
	depth    prometheus.Gauge
}

func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	m := &NotificationMetrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "tasks_total",
			Help:      "Notification tasks by channel and outcome (sent, failed, dropped).",
		}, []string{"channel", "outcome"}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "queue_depth",
			Help:      "Tasks waiting in the dispatcher queue.",
		}),
	}
	reg.MustRegister(m.outcomes, m.depth)
	return m
}

func (m *NotificationMetrics) IncOutcome(channel, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(channel), normalizeLabel(outcome)).Inc()
}

func (m *NotificationMetrics) SetQueueDepth(n int) {
	if m == nil || m.depth == nil {
		return
	}
	m.depth.Set(float64(n))
}
