package partners

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
)

type PartnerDTO struct {
	ID            uuid.UUID       `json:"id"`
	UserID        *uuid.UUID      `json:"user_id,omitempty"`
	Name          string          `json:"name"`
	Phone         *string         `json:"phone,omitempty"`
	Email         *string         `json:"email,omitempty"`
	CommissionPct decimal.Decimal `json:"commission_pct"`
	AvatarURL     *string         `json:"avatar_url,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

func FromModel(p models.Partner) PartnerDTO {
	return PartnerDTO{
		ID:            p.ID,
		UserID:        p.UserID,
		Name:          p.Name,
		Phone:         p.Phone,
		Email:         p.Email,
		CommissionPct: p.CommissionPct,
		AvatarURL:     p.AvatarURL,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
	}
}

func FromModels(rows []models.Partner) []PartnerDTO {
	out := make([]PartnerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
