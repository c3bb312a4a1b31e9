package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

type AppointmentDTO struct {
	ID             uuid.UUID                `json:"id"`
	ClientID       uuid.UUID                `json:"client_id"`
	ServiceID      uuid.UUID                `json:"service_id"`
	Date           string                   `json:"date"`
	Time           string                   `json:"time"`
	Status         enums.AppointmentStatus  `json:"status"`
	PartnerID      *uuid.UUID               `json:"partner_id,omitempty"`
	PlanID         *uuid.UUID               `json:"plan_id,omitempty"`
	SessionNumber  *int                     `json:"session_number,omitempty"`
	Source         enums.BookingSource      `json:"source"`
	Notes          string                   `json:"notes"`
	Extras         models.AppointmentExtras `json:"extras"`
	ReminderSentAt *time.Time               `json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

func FromModel(a *models.Appointment) *AppointmentDTO {
	if a == nil {
		return nil
	}
	return &AppointmentDTO{
		ID:             a.ID,
		ClientID:       a.ClientID,
		ServiceID:      a.ServiceID,
		Date:           a.SlotDate,
		Time:           a.SlotTime,
		Status:         a.Status,
		PartnerID:      a.PartnerID,
		PlanID:         a.PlanID,
		SessionNumber:  a.SessionNumber,
		Source:         a.Source,
		Notes:          a.Notes,
		Extras:         a.Extras,
		ReminderSentAt: a.ReminderSentAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func FromModels(rows []models.Appointment) []AppointmentDTO {
	out := make([]AppointmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
