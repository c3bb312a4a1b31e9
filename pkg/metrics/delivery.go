package metrics

import "github.com/prometheus/client_golang/prometheus"

// DeliveryMetrics covers the two async legs: outbox publishing and WhatsApp
// notification delivery.
type DeliveryMetrics struct {
	published     *prometheus.CounterVec
	publishFailed *prometheus.CounterVec
	deadLettered  *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	if reg == nil {
		return &DeliveryMetrics{}
	}
	m := &DeliveryMetrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox events published to Pub/Sub.",
		}, []string{"event_type"}),
		publishFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_publish_failures_total",
			Help:      "Outbox publish attempts that failed and were rescheduled.",
		}, []string{"event_type"}),
		deadLettered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_dead_lettered_total",
			Help:      "Outbox events moved to the DLQ.",
		}, []string{"reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries, by template and outcome.",
		}, []string{"template", "status"}),
	}
	reg.MustRegister(m.published, m.publishFailed, m.deadLettered, m.notifications)
	return m
}

func (m *DeliveryMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *DeliveryMetrics) IncPublishFailed(eventType string) {
	if m == nil || m.publishFailed == nil {
		return
	}
	m.publishFailed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *DeliveryMetrics) IncDeadLettered(reason string) {
	if m == nil || m.deadLettered == nil {
		return
	}
	m.deadLettered.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *DeliveryMetrics) IncNotification(template, status string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(template), normalizeLabel(status)).Inc()
}
