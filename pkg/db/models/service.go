package models

import (
	"time"

	"github.com/google/uuid"
)

// Service is a treatment offered by the salon.
type Service struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug            string    `gorm:"column:slug;not null;uniqueIndex"`
	Name            string    `gorm:"column:name;not null"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null;default:60"`
	Active          bool      `gorm:"column:active;not null;default:true"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Prices []ServicePrice `gorm:"foreignKey:ServiceID"`
}

func (Service) TableName() string { return "services" }

// ServicePrice is one pricing tier of a service, e.g. "Essencial" x 5 sessions.
type ServicePrice struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ServiceID            uuid.UUID `gorm:"column:service_id;type:uuid;not null"`
	PlanName             string    `gorm:"column:plan_name;not null"`
	Sessions             int       `gorm:"column:sessions;not null"`
	PricePerSessionCents int64     `gorm:"column:price_per_session_cents;not null"`
	TotalCents           int64     `gorm:"column:total_cents;not null"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ServicePrice) TableName() string { return "service_prices" }
