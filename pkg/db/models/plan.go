package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// Plan is a purchased package of sessions for one service.
type Plan struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey"`
	ClientID          uuid.UUID        `gorm:"column:client_id;type:uuid;not null"`
	ServiceID         uuid.UUID        `gorm:"column:service_id;type:uuid;not null"`
	PlanName          string           `gorm:"column:plan_name;not null"`
	TotalSessions     int              `gorm:"column:total_sessions;not null"`
	CompletedSessions int              `gorm:"column:completed_sessions;not null;default:0"`
	Status            enums.PlanStatus `gorm:"column:status;type:varchar(16);not null"`
	CreatedBy         string           `gorm:"column:created_by;not null"`
	Notes             string           `gorm:"column:notes;not null;default:''"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Plan) TableName() string { return "plans" }

// RemainingSessions is how many sessions are still owed to the client.
func (p Plan) RemainingSessions() int {
	if p.CompletedSessions >= p.TotalSessions {
		return 0
	}
	return p.TotalSessions - p.CompletedSessions
}
