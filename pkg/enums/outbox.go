package enums

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateAppointment OutboxAggregateType = "appointment"
	AggregatePlan        OutboxAggregateType = "plan"
	AggregatePayment     OutboxAggregateType = "payment"
	AggregatePartner     OutboxAggregateType = "partner"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateAppointment,
	AggregatePlan,
	AggregatePayment,
	AggregatePartner,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	return contains(validAggregateTypes, a)
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return parse(validAggregateTypes, value, "aggregate type")
}

// OutboxEventType maps to the event_type column of outbox_events.
type OutboxEventType string

const (
	EventAppointmentBooked      OutboxEventType = "appointment_booked"
	EventAppointmentConfirmed   OutboxEventType = "appointment_confirmed"
	EventAppointmentCancelled   OutboxEventType = "appointment_cancelled"
	EventAppointmentRescheduled OutboxEventType = "appointment_rescheduled"
	EventAppointmentCompleted   OutboxEventType = "appointment_completed"
	EventAppointmentDeleted     OutboxEventType = "appointment_deleted"
	EventAppointmentReminderDue OutboxEventType = "appointment_reminder_due"
	EventPlanCreated            OutboxEventType = "plan_created"
	EventPlanCompleted          OutboxEventType = "plan_completed"
	EventPaymentRecorded        OutboxEventType = "payment_recorded"
)

var validOutboxEventTypes = []OutboxEventType{
	EventAppointmentBooked,
	EventAppointmentConfirmed,
	EventAppointmentCancelled,
	EventAppointmentRescheduled,
	EventAppointmentCompleted,
	EventAppointmentDeleted,
	EventAppointmentReminderDue,
	EventPlanCreated,
	EventPlanCompleted,
	EventPaymentRecorded,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	return contains(validOutboxEventTypes, e)
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parse(validOutboxEventTypes, value, "event type")
}
