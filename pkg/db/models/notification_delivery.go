package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// NotificationDelivery records the outcome of sending one event to one channel.
type NotificationDelivery struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	EventID       uuid.UUID                 `gorm:"column:event_id;type:uuid;not null"`
	AppointmentID *uuid.UUID                `gorm:"column:appointment_id;type:uuid"`
	Channel       enums.NotificationChannel `gorm:"column:channel;type:varchar(16);not null"`
	Recipient     string                    `gorm:"column:recipient;not null"`
	Template      string                    `gorm:"column:template;not null"`
	Status        enums.NotificationStatus  `gorm:"column:status;type:varchar(16);not null"`
	Error         *string                   `gorm:"column:error"`
	SentAt        *time.Time                `gorm:"column:sent_at"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (NotificationDelivery) TableName() string { return "notification_deliveries" }
