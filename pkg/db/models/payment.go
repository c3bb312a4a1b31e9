package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// Payment is a manually recorded payment. Nothing is captured by the backend.
type Payment struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ClientID      uuid.UUID           `gorm:"column:client_id;type:uuid;not null"`
	PlanID        *uuid.UUID          `gorm:"column:plan_id;type:uuid"`
	AppointmentID *uuid.UUID          `gorm:"column:appointment_id;type:uuid"`
	PartnerID     *uuid.UUID          `gorm:"column:partner_id;type:uuid"`
	AmountCents   int64               `gorm:"column:amount_cents;not null"`
	Method        enums.PaymentMethod `gorm:"column:method;type:varchar(16);not null"`
	PaidAt        time.Time           `gorm:"column:paid_at;not null"`
	Notes         string              `gorm:"column:notes;not null;default:''"`
	RecordedBy    *uuid.UUID          `gorm:"column:recorded_by;type:uuid"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Payment) TableName() string { return "payments" }
