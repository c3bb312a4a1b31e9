package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

// Service answers price and commission questions and maintains the catalogue.
type Service interface {
	PriceFor(ctx context.Context, slug, planName string) (Quote, error)
	PriceForService(ctx context.Context, serviceID uuid.UUID, planName string) (Quote, error)
	CommissionFor(ctx context.Context, partner models.Partner, appt models.Appointment) (CommissionQuote, error)
	ListCatalogue(ctx context.Context, includeInactive bool) ([]CatalogueService, error)
	UpsertService(ctx context.Context, input UpsertServiceInput) (*CatalogueService, error)
	UpsertPrice(ctx context.Context, serviceID uuid.UUID, input UpsertPriceInput) (*CatalogueService, error)
	DeletePrice(ctx context.Context, serviceID uuid.UUID, planName string) error
}

// CommissionQuote is what a partner earns for one appointment.
type CommissionQuote struct {
	SessionPriceCents int64 `json:"session_price_cents"`
	CommissionCents   int64 `json:"commission_cents"`
}

type planNames interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

type service struct {
	repo  Repository
	plans planNames
}

// NewService builds the pricing service. plans may be nil, in which case
// plan-linked appointments without a label price at the fallback tier.
func NewService(repo Repository, plans planNames) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{repo: repo, plans: plans}, nil
}

func (s *service) PriceFor(ctx context.Context, slug, planName string) (Quote, error) {
	svc, err := s.repo.FindServiceBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return Quote{}, serviceLookupError(err)
	}
	return quoteService(svc, planName)
}

func (s *service) PriceForService(ctx context.Context, serviceID uuid.UUID, planName string) (Quote, error) {
	svc, err := s.repo.FindServiceByID(ctx, serviceID)
	if err != nil {
		return Quote{}, serviceLookupError(err)
	}
	return quoteService(svc, planName)
}

func (s *service) CommissionFor(ctx context.Context, partner models.Partner, appt models.Appointment) (CommissionQuote, error) {
	price, ok := appt.Extras.Price()
	if !ok {
		planName := appt.Extras.Label()
		if planName == "" && appt.PlanID != nil && s.plans != nil {
			plan, err := s.plans.FindByID(ctx, *appt.PlanID)
			switch {
			case err == nil:
				planName = plan.PlanName
			case errors.Is(err, gorm.ErrRecordNotFound):
				// deleted plan, price at the fallback tier
			default:
				return CommissionQuote{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
			}
		}
		quote, err := s.PriceForService(ctx, appt.ServiceID, planName)
		if err != nil {
			return CommissionQuote{}, err
		}
		price = quote.PerSessionCents
	}
	return CommissionQuote{
		SessionPriceCents: price,
		CommissionCents:   Commission(price, partner.CommissionPct),
	}, nil
}

func (s *service) ListCatalogue(ctx context.Context, includeInactive bool) ([]CatalogueService, error) {
	rows, err := s.repo.ListServices(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list services")
	}
	out := make([]CatalogueService, 0, len(rows))
	for i := range rows {
		out = append(out, toCatalogue(&rows[i]))
	}
	return out, nil
}

func (s *service) UpsertService(ctx context.Context, input UpsertServiceInput) (*CatalogueService, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug == "" || strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug and name are required")
	}
	duration := input.DurationMinutes
	if duration == 0 {
		duration = defaultDurationMinutes
	}
	if duration < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration_minutes must be positive")
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}

	if err := s.repo.UpsertService(ctx, &models.Service{
		Slug:            slug,
		Name:            strings.TrimSpace(input.Name),
		DurationMinutes: duration,
		Active:          active,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert service")
	}
	svc, err := s.repo.FindServiceBySlug(ctx, slug)
	if err != nil {
		return nil, serviceLookupError(err)
	}
	out := toCatalogue(svc)
	return &out, nil
}

func (s *service) UpsertPrice(ctx context.Context, serviceID uuid.UUID, input UpsertPriceInput) (*CatalogueService, error) {
	planName := strings.TrimSpace(input.PlanName)
	if planName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan_name is required")
	}
	if input.Sessions < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sessions must be at least 1")
	}
	if input.PricePerSessionCents < 0 || input.TotalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	total := input.TotalCents
	if total == 0 {
		total = input.PricePerSessionCents * int64(input.Sessions)
	}

	svc, err := s.repo.FindServiceByID(ctx, serviceID)
	if err != nil {
		return nil, serviceLookupError(err)
	}
	// keep the stored spelling when the label differs only in case
	for _, tier := range svc.Prices {
		if normalizePlanName(tier.PlanName) == normalizePlanName(planName) {
			planName = tier.PlanName
			break
		}
	}

	if err := s.repo.UpsertPrice(ctx, &models.ServicePrice{
		ServiceID:            serviceID,
		PlanName:             planName,
		Sessions:             input.Sessions,
		PricePerSessionCents: input.PricePerSessionCents,
		TotalCents:           total,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert price")
	}
	svc, err = s.repo.FindServiceByID(ctx, serviceID)
	if err != nil {
		return nil, serviceLookupError(err)
	}
	out := toCatalogue(svc)
	return &out, nil
}

func (s *service) DeletePrice(ctx context.Context, serviceID uuid.UUID, planName string) error {
	svc, err := s.repo.FindServiceByID(ctx, serviceID)
	if err != nil {
		return serviceLookupError(err)
	}
	for _, tier := range svc.Prices {
		if normalizePlanName(tier.PlanName) != normalizePlanName(planName) {
			continue
		}
		if _, err := s.repo.DeletePrice(ctx, serviceID, tier.PlanName); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete price")
		}
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "price tier not found")
}

func quoteService(svc *models.Service, planName string) (Quote, error) {
	quote, ok := Resolve(svc.Prices, planName)
	if !ok {
		return Quote{}, pkgerrors.New(pkgerrors.CodeNotFound, "service has no price tiers")
	}
	quote.ServiceID = svc.ID
	quote.ServiceSlug = svc.Slug
	return quote, nil
}

func serviceLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load service")
}
