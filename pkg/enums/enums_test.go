package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		allowed  bool
	}{
		{AppointmentStatusPending, AppointmentStatusConfirmed, true},
		{AppointmentStatusPending, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted, true},
		{AppointmentStatusConfirmed, AppointmentStatusPending, false},
		{AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
		{AppointmentStatusCompleted, AppointmentStatusCancelled, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestAppointmentStatusHoldsSlot(t *testing.T) {
	assert.True(t, AppointmentStatusPending.HoldsSlot())
	assert.True(t, AppointmentStatusCompleted.HoldsSlot())
	assert.False(t, AppointmentStatusCancelled.HoldsSlot())
}

func TestPlanStatusFor(t *testing.T) {
	assert.Equal(t, PlanStatusActive, PlanStatusFor(0, 5))
	assert.Equal(t, PlanStatusActive, PlanStatusFor(4, 5))
	assert.Equal(t, PlanStatusCompleted, PlanStatusFor(5, 5))
}

func TestBookingSourceInitialStatus(t *testing.T) {
	assert.Equal(t, AppointmentStatusPending, BookingSourceSelfService.InitialStatus())
	assert.Equal(t, AppointmentStatusConfirmed, BookingSourceAdmin.InitialStatus())
	assert.Equal(t, AppointmentStatusConfirmed, BookingSourceCounterSale.InitialStatus())
}

func TestParseNormalizesInput(t *testing.T) {
	method, err := ParsePaymentMethod(" PIX ")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodPix, method)

	_, err = ParsePaymentMethod("check")
	require.Error(t, err)

	role, err := ParseUserRole("Admin")
	require.NoError(t, err)
	assert.Equal(t, UserRoleAdmin, role)

	evt, err := ParseOutboxEventType("appointment_booked")
	require.NoError(t, err)
	assert.True(t, evt.IsValid())
}
