package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/config"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate, topic and payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() any
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the publisher should dead-letter a row at once.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// NewEventRegistry routes appointment lifecycle events to the appointments
// topic and plan/payment events to the plans topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.AppointmentsTopic == "" {
		return nil, fmt.Errorf("appointments topic is required")
	}
	if cfg.PlansTopic == "" {
		return nil, fmt.Errorf("plans topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}

	appointmentEvent := func() any { return &payloads.AppointmentEvent{} }
	for _, eventType := range []enums.OutboxEventType{
		enums.EventAppointmentBooked,
		enums.EventAppointmentConfirmed,
		enums.EventAppointmentCancelled,
		enums.EventAppointmentCompleted,
		enums.EventAppointmentDeleted,
	} {
		reg.register(EventDescriptor{
			EventType:      eventType,
			AggregateType:  enums.AggregateAppointment,
			Topic:          cfg.AppointmentsTopic,
			PayloadFactory: appointmentEvent,
		})
	}
	reg.register(EventDescriptor{
		EventType:      enums.EventAppointmentRescheduled,
		AggregateType:  enums.AggregateAppointment,
		Topic:          cfg.AppointmentsTopic,
		PayloadFactory: func() any { return &payloads.AppointmentRescheduledEvent{} },
	})
	reg.register(EventDescriptor{
		EventType:      enums.EventAppointmentReminderDue,
		AggregateType:  enums.AggregateAppointment,
		Topic:          cfg.AppointmentsTopic,
		PayloadFactory: func() any { return &payloads.AppointmentReminderDueEvent{} },
	})

	for _, eventType := range []enums.OutboxEventType{enums.EventPlanCreated, enums.EventPlanCompleted} {
		reg.register(EventDescriptor{
			EventType:      eventType,
			AggregateType:  enums.AggregatePlan,
			Topic:          cfg.PlansTopic,
			PayloadFactory: func() any { return &payloads.PlanEvent{} },
		})
	}
	reg.register(EventDescriptor{
		EventType:      enums.EventPaymentRecorded,
		AggregateType:  enums.AggregatePayment,
		Topic:          cfg.PlansTopic,
		PayloadFactory: func() any { return &payloads.PaymentRecordedEvent{} },
	})

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Descriptor returns the descriptor for eventType, if registered.
func (r *EventRegistry) Descriptor(eventType enums.OutboxEventType) (EventDescriptor, bool) {
	desc, ok := r.entries[eventType]
	return desc, ok
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	envelope, err := outbox.ParseEnvelope(event.Payload)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}
