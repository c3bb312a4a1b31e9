package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

func TestRenderAppointmentTemplates(t *testing.T) {
	data := MessageData{
		Business:     "Studio Bela",
		ClientName:   "Ana",
		ServiceName:  "Drenagem Linfática",
		PartnerName:  "Carla",
		Date:         "2026-03-10",
		Time:         "14:30",
		PreviousDate: "2026-03-09",
		PreviousTime: "10:00",
		Session:      2,
	}

	name, text, err := Render(enums.EventAppointmentConfirmed, data)
	require.NoError(t, err)
	assert.Equal(t, "appointment_confirmed", name)
	assert.Equal(t, "Olá Ana, seu horário de Drenagem Linfática em 10/03/2026 às 14:30 está confirmado com Carla. Studio Bela", text)

	_, text, err = Render(enums.EventAppointmentRescheduled, data)
	require.NoError(t, err)
	assert.Contains(t, text, "de 09/03/2026 10:00 para 10/03/2026 às 14:30")

	_, text, err = Render(enums.EventAppointmentBooked, data)
	require.NoError(t, err)
	assert.Contains(t, text, "Sessão 2.")
	assert.NotContains(t, text, "  ")
}

func TestRenderPlanCompleted(t *testing.T) {
	_, text, err := Render(enums.EventPlanCompleted, MessageData{ClientName: "Ana", ServiceName: "Drenagem", PlanName: "Essencial", Total: 5})
	require.NoError(t, err)
	assert.Equal(t, "Parabéns Ana! Você concluiu as 5 sessões do plano Essencial de Drenagem.", text)
}

func TestHandlesOnlyTemplatedEvents(t *testing.T) {
	assert.True(t, Handles(enums.EventAppointmentReminderDue))
	assert.False(t, Handles(enums.EventAppointmentCompleted))
	assert.False(t, Handles(enums.EventPaymentRecorded))

	_, _, err := Render(enums.EventPaymentRecorded, MessageData{})
	assert.Error(t, err)
}

func TestBrDate(t *testing.T) {
	assert.Equal(t, "01/12/2026", brDate("2026-12-01"))
	assert.Equal(t, "amanhã", brDate("amanhã"))
}
