package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/pkg/config"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox/payloads"
)

func TestEventRegistryResolveSuccess(t *testing.T) {
	reg := newTestEventRegistry(t)

	planID := uuid.New()
	session := 2
	payloadBytes := mustMarshal(t, payloads.AppointmentRescheduledEvent{
		AppointmentEvent: payloads.AppointmentEvent{
			AppointmentID: uuid.New(),
			PlanID:        &planID,
			SessionNumber: &session,
			Date:          "2026-03-11",
			Time:          "15:00",
			Status:        enums.AppointmentStatusConfirmed,
		},
		PreviousDate: "2026-03-10",
		PreviousTime: "10:00",
	})

	resolved, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventAppointmentRescheduled,
		AggregateType: enums.AggregateAppointment,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, payloadBytes),
	})
	require.NoError(t, err)
	require.Equal(t, "appointments-topic", resolved.Descriptor.Topic)

	payload, ok := resolved.Payload.(*payloads.AppointmentRescheduledEvent)
	require.True(t, ok, "unexpected payload type %T", resolved.Payload)
	require.Equal(t, planID, *payload.PlanID)
	require.Equal(t, "2026-03-10", payload.PreviousDate)
	require.NotEmpty(t, resolved.Envelope.EventID)
	require.False(t, resolved.Envelope.OccurredAt.IsZero())
}

func TestEventRegistryRoutesPlanEventsToPlansTopic(t *testing.T) {
	reg := newTestEventRegistry(t)
	desc, ok := reg.Descriptor(enums.EventPlanCompleted)
	require.True(t, ok)
	require.Equal(t, "plans-topic", desc.Topic)
	require.Equal(t, enums.AggregatePlan, desc.AggregateType)
}

func TestEventRegistryResolveRejectsBadRows(t *testing.T) {
	reg := newTestEventRegistry(t)

	cases := map[string]models.OutboxEvent{
		"unknown event": {
			EventType:     enums.OutboxEventType("mystery"),
			AggregateType: enums.AggregateAppointment,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"aggregate mismatch": {
			EventType:     enums.EventAppointmentBooked,
			AggregateType: enums.AggregatePlan,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte(`{"date":"2026-03-10"}`)),
		},
		"missing aggregate id": {
			EventType:     enums.EventAppointmentBooked,
			AggregateType: enums.AggregateAppointment,
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"null payload": {
			EventType:     enums.EventPlanCreated,
			AggregateType: enums.AggregatePlan,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte("null")),
		},
		"broken envelope": {
			EventType:     enums.EventPlanCreated,
			AggregateType: enums.AggregatePlan,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{"data":`),
		},
	}

	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(event)
			require.Error(t, err)
			var nonRetry NonRetryableError
			require.True(t, errors.As(err, &nonRetry), "expected non-retryable error, got %T", err)
		})
	}
}

func TestNewEventRegistryRequiresTopics(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{PlansTopic: "plans"})
	require.Error(t, err)
	_, err = NewEventRegistry(config.PubSubConfig{AppointmentsTopic: "appointments"})
	require.Error(t, err)
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{
		AppointmentsTopic: "appointments-topic",
		PlansTopic:        "plans-topic",
	})
	require.NoError(t, err)
	return reg
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func mustEnvelope(t *testing.T, payload []byte) json.RawMessage {
	t.Helper()
	return mustMarshal(t, outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	})
}
