package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// AppointmentEvent is shared by every appointment lifecycle event.
type AppointmentEvent struct {
	AppointmentID uuid.UUID               `json:"appointment_id"`
	ClientID      uuid.UUID               `json:"client_id"`
	ServiceID     uuid.UUID               `json:"service_id"`
	PartnerID     *uuid.UUID              `json:"partner_id,omitempty"`
	PlanID        *uuid.UUID              `json:"plan_id,omitempty"`
	SessionNumber *int                    `json:"session_number,omitempty"`
	Date          string                  `json:"date"`
	Time          string                  `json:"time"`
	Status        enums.AppointmentStatus `json:"status"`
	Source        enums.BookingSource     `json:"source,omitempty"`
}

// AppointmentRescheduledEvent carries the slot the booking moved away from.
type AppointmentRescheduledEvent struct {
	AppointmentEvent
	PreviousDate string `json:"previous_date"`
	PreviousTime string `json:"previous_time"`
}

// AppointmentReminderDueEvent is emitted by the reminder cron the day before.
type AppointmentReminderDueEvent struct {
	AppointmentEvent
	DueAt time.Time `json:"due_at"`
}

// PlanEvent describes a plan's counters at the time of the event.
type PlanEvent struct {
	PlanID            uuid.UUID        `json:"plan_id"`
	ClientID          uuid.UUID        `json:"client_id"`
	ServiceID         uuid.UUID        `json:"service_id"`
	PlanName          string           `json:"plan_name"`
	TotalSessions     int              `json:"total_sessions"`
	CompletedSessions int              `json:"completed_sessions"`
	Status            enums.PlanStatus `json:"status"`
	CreatedBy         string           `json:"created_by,omitempty"`
}

// PaymentRecordedEvent is emitted when staff records a payment.
type PaymentRecordedEvent struct {
	PaymentID     uuid.UUID           `json:"payment_id"`
	ClientID      uuid.UUID           `json:"client_id"`
	PlanID        *uuid.UUID          `json:"plan_id,omitempty"`
	AppointmentID *uuid.UUID          `json:"appointment_id,omitempty"`
	AmountCents   int64               `json:"amount_cents"`
	Method        enums.PaymentMethod `json:"method"`
	PaidAt        time.Time           `json:"paid_at"`
}
