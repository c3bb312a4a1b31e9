package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

type DeliveryDTO struct {
	ID        uuid.UUID                 `json:"id"`
	EventID   uuid.UUID                 `json:"event_id"`
	Channel   enums.NotificationChannel `json:"channel"`
	Recipient string                    `json:"recipient"`
	Template  string                    `json:"template"`
	Status    enums.NotificationStatus  `json:"status"`
	Error     *string                   `json:"error,omitempty"`
	SentAt    *time.Time                `json:"sent_at,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
}

func DeliveriesFromModels(rows []models.NotificationDelivery) []DeliveryDTO {
	out := make([]DeliveryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, DeliveryDTO{
			ID:        row.ID,
			EventID:   row.EventID,
			Channel:   row.Channel,
			Recipient: row.Recipient,
			Template:  row.Template,
			Status:    row.Status,
			Error:     row.Error,
			SentAt:    row.SentAt,
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}
