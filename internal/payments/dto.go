package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

type PaymentDTO struct {
	ID            uuid.UUID           `json:"id"`
	ClientID      uuid.UUID           `json:"client_id"`
	PlanID        *uuid.UUID          `json:"plan_id,omitempty"`
	AppointmentID *uuid.UUID          `json:"appointment_id,omitempty"`
	PartnerID     *uuid.UUID          `json:"partner_id,omitempty"`
	AmountCents   int64               `json:"amount_cents"`
	Method        enums.PaymentMethod `json:"method"`
	PaidAt        time.Time           `json:"paid_at"`
	Notes         string              `json:"notes,omitempty"`
}

func FromModel(p models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID,
		ClientID:      p.ClientID,
		PlanID:        p.PlanID,
		AppointmentID: p.AppointmentID,
		PartnerID:     p.PartnerID,
		AmountCents:   p.AmountCents,
		Method:        p.Method,
		PaidAt:        p.PaidAt,
		Notes:         p.Notes,
	}
}

func FromModels(rows []models.Payment) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
