package plans

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/pagination"
)

type PlanDTO struct {
	ID                uuid.UUID        `json:"id"`
	ClientID          uuid.UUID        `json:"client_id"`
	ServiceID         uuid.UUID        `json:"service_id"`
	PlanName          string           `json:"plan_name"`
	TotalSessions     int              `json:"total_sessions"`
	CompletedSessions int              `json:"completed_sessions"`
	RemainingSessions int              `json:"remaining_sessions"`
	Status            enums.PlanStatus `json:"status"`
	CreatedBy         string           `json:"created_by"`
	Notes             string           `json:"notes"`
	CreatedAt         time.Time        `json:"created_at"`
}

func FromModel(p *models.Plan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:                p.ID,
		ClientID:          p.ClientID,
		ServiceID:         p.ServiceID,
		PlanName:          p.PlanName,
		TotalSessions:     p.TotalSessions,
		CompletedSessions: p.CompletedSessions,
		RemainingSessions: p.RemainingSessions(),
		Status:            p.Status,
		CreatedBy:         p.CreatedBy,
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt,
	}
}

func PageFromModels(page pagination.Page[models.Plan]) pagination.Page[PlanDTO] {
	out := pagination.Page[PlanDTO]{Items: make([]PlanDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for i := range page.Items {
		out.Items = append(out.Items, *FromModel(&page.Items[i]))
	}
	return out
}
