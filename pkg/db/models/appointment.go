package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// Appointment is one dated, timed booking. SlotDate is YYYY-MM-DD and
// SlotTime is HH:MM in the salon's local timezone.
type Appointment struct {
	ID             uuid.UUID               `gorm:"type:uuid;primaryKey"`
	ClientID       uuid.UUID               `gorm:"column:client_id;type:uuid;not null"`
	ServiceID      uuid.UUID               `gorm:"column:service_id;type:uuid;not null"`
	SlotDate       string                  `gorm:"column:slot_date;type:varchar(10);not null"`
	SlotTime       string                  `gorm:"column:slot_time;type:varchar(5);not null"`
	Status         enums.AppointmentStatus `gorm:"column:status;type:varchar(16);not null"`
	PartnerID      *uuid.UUID              `gorm:"column:partner_id;type:uuid"`
	PlanID         *uuid.UUID              `gorm:"column:plan_id;type:uuid"`
	SessionNumber  *int                    `gorm:"column:session_number"`
	Source         enums.BookingSource     `gorm:"column:source;type:varchar(16);not null"`
	Notes          string                  `gorm:"column:notes;not null;default:''"`
	Extras         AppointmentExtras       `gorm:"column:extras;type:jsonb;not null"`
	ReminderSentAt *time.Time              `gorm:"column:reminder_sent_at"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (Appointment) TableName() string { return "appointments" }

// Slot returns the (date, time) pair the appointment occupies.
func (a Appointment) Slot() SlotRef {
	return SlotRef{Date: a.SlotDate, Time: a.SlotTime}
}
