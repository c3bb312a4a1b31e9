package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partner is a professional who performs appointments for a commission.
type Partner struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        *uuid.UUID      `gorm:"column:user_id;type:uuid"`
	Name          string          `gorm:"column:name;not null"`
	Phone         *string         `gorm:"column:phone"`
	Email         *string         `gorm:"column:email"`
	CommissionPct decimal.Decimal `gorm:"column:commission_pct;type:numeric(5,2);not null"`
	AvatarURL     *string         `gorm:"column:avatar_url"`
	Active        bool            `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Partner) TableName() string { return "partners" }
