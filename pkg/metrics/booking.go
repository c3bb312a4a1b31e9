package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics counts appointment ledger activity.
type BookingMetrics struct {
	booked      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	planAdjusts prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	m := &BookingMetrics{
		booked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_booked_total",
			Help:      "Appointments booked, by booking source.",
		}, []string{"source"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_transitions_total",
			Help:      "Appointment status transitions, by target status.",
		}, []string{"status"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Bookings rejected by the slot or plan-session guard.",
		}, []string{"kind"}),
		planAdjusts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_adjust_retries_total",
			Help:      "Compare-and-swap retries on plan session counters.",
		}),
	}
	reg.MustRegister(m.booked, m.transitions, m.conflicts, m.planAdjusts)
	return m
}

func (m *BookingMetrics) IncBooked(source string) {
	if m == nil || m.booked == nil {
		return
	}
	m.booked.WithLabelValues(normalizeLabel(source)).Inc()
}

func (m *BookingMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncConflict takes "slot" or "plan_session".
func (m *BookingMetrics) IncConflict(kind string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *BookingMetrics) IncPlanAdjustRetry() {
	if m == nil || m.planAdjusts == nil {
		return
	}
	m.planAdjusts.Inc()
}
