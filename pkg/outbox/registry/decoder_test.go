package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox/payloads"
)

func TestDecoderRegistry(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventAppointmentBooked, 1, JSONDecoder[payloads.AppointmentEvent]())

	output, err := reg.Decode(enums.EventAppointmentBooked, 1, json.RawMessage(`{"date":"2026-03-10","time":"10:00","status":"pending"}`))
	require.NoError(t, err)

	evt, ok := output.(*payloads.AppointmentEvent)
	require.True(t, ok, "unexpected output %T", output)
	require.Equal(t, "2026-03-10", evt.Date)
	require.Equal(t, enums.AppointmentStatusPending, evt.Status)

	require.True(t, reg.Has(enums.EventAppointmentBooked, 1))
	require.False(t, reg.Has(enums.EventAppointmentBooked, 2))

	_, err = reg.Decode(enums.EventPlanCompleted, 1, json.RawMessage(`{}`))
	require.Error(t, err)

	_, err = reg.Decode(enums.EventAppointmentBooked, 1, json.RawMessage(`not-json`))
	require.Error(t, err)
}
