package pricing

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
)

const defaultDurationMinutes = 60

type CatalogueTier struct {
	PlanName             string `json:"plan_name"`
	Sessions             int    `json:"sessions"`
	PricePerSessionCents int64  `json:"price_per_session_cents"`
	TotalCents           int64  `json:"total_cents"`
}

// CatalogueService is a service with its tiers ordered by session count.
type CatalogueService struct {
	ID              uuid.UUID       `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	DurationMinutes int             `json:"duration_minutes"`
	Active          bool            `json:"active"`
	Prices          []CatalogueTier `json:"prices"`
}

type UpsertServiceInput struct {
	Slug            string `json:"slug" validate:"required"`
	Name            string `json:"name" validate:"required"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Active          *bool  `json:"active,omitempty"`
}

// UpsertPriceInput sets one tier. A zero total is derived from the
// per-session price.
type UpsertPriceInput struct {
	PlanName             string `json:"plan_name" validate:"required"`
	Sessions             int    `json:"sessions" validate:"required,min=1"`
	PricePerSessionCents int64  `json:"price_per_session_cents" validate:"min=0"`
	TotalCents           int64  `json:"total_cents,omitempty" validate:"min=0"`
}

func toCatalogue(svc *models.Service) CatalogueService {
	out := CatalogueService{
		ID:              svc.ID,
		Slug:            svc.Slug,
		Name:            svc.Name,
		DurationMinutes: svc.DurationMinutes,
		Active:          svc.Active,
		Prices:          make([]CatalogueTier, 0, len(svc.Prices)),
	}
	for _, p := range svc.Prices {
		out.Prices = append(out.Prices, CatalogueTier{
			PlanName:             p.PlanName,
			Sessions:             p.Sessions,
			PricePerSessionCents: p.PricePerSessionCents,
			TotalCents:           p.TotalCents,
		})
	}
	return out
}
