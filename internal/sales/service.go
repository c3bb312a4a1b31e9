package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	"github.com/angelmondragon/salonbook-backend/internal/payments"
	"github.com/angelmondragon/salonbook-backend/internal/plans"
	"github.com/angelmondragon/salonbook-backend/internal/pricing"
	"github.com/angelmondragon/salonbook-backend/pkg/db"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

// Service sells plans at the counter.
type Service interface {
	SellPlan(ctx context.Context, input SellPlanInput) (*Sale, error)
}

// SellPlanInput is one counter sale. FirstSession and Payment are optional.
type SellPlanInput struct {
	ClientID     uuid.UUID          `json:"client_id" validate:"required"`
	ServiceSlug  string             `json:"service_slug" validate:"required"`
	PlanName     string             `json:"plan_name" validate:"required"`
	Notes        string             `json:"notes,omitempty"`
	FirstSession *FirstSession      `json:"first_session,omitempty"`
	Payment      *PaymentInput      `json:"payment,omitempty"`
	Actor        appointments.Actor `json:"-"`
}

type FirstSession struct {
	Date      string     `json:"date" validate:"required"`
	Time      string     `json:"time" validate:"required"`
	PartnerID *uuid.UUID `json:"partner_id,omitempty"`
}

// PaymentInput defaults the amount to the quoted plan total.
type PaymentInput struct {
	Method      enums.PaymentMethod `json:"method" validate:"required"`
	AmountCents *int64              `json:"amount_cents,omitempty"`
	PaidAt      *time.Time          `json:"paid_at,omitempty"`
}

// Sale is everything a counter sale created.
type Sale struct {
	Quote       pricing.Quote
	Plan        *models.Plan
	Appointment *models.Appointment
	Payment     *models.Payment
}

type planCreator interface {
	CreateInTx(ctx context.Context, tx *gorm.DB, input plans.CreatePlanInput) (*models.Plan, error)
}

type booker interface {
	BookInTx(ctx context.Context, tx *gorm.DB, input appointments.BookInput) (*models.Appointment, error)
}

type recorder interface {
	RecordInTx(ctx context.Context, tx *gorm.DB, input payments.RecordInput) (*models.Payment, error)
}

type pricer interface {
	PriceFor(ctx context.Context, slug, planName string) (pricing.Quote, error)
}

type ServiceParams struct {
	Tx           db.TxRunner
	Pricing      pricer
	Plans        planCreator
	Appointments booker
	Payments     recorder
	Logger       *logger.Logger
}

type service struct {
	tx           db.TxRunner
	pricing      pricer
	plans        planCreator
	appointments booker
	payments     recorder
	logg         *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	if params.Plans == nil {
		return nil, fmt.Errorf("plans service required")
	}
	if params.Appointments == nil {
		return nil, fmt.Errorf("appointments service required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	return &service{
		tx:           params.Tx,
		pricing:      params.Pricing,
		plans:        params.Plans,
		appointments: params.Appointments,
		payments:     params.Payments,
		logg:         params.Logger,
	}, nil
}

// SellPlan creates the plan, books session 1 and records the payment in a
// single transaction. Any failure leaves nothing behind.
func (s *service) SellPlan(ctx context.Context, input SellPlanInput) (*Sale, error) {
	if input.Actor.IsClient() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff can sell plans")
	}
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client_id is required")
	}
	quote, err := s.pricing.PriceFor(ctx, input.ServiceSlug, input.PlanName)
	if err != nil {
		return nil, err
	}
	if !quote.Exact && s.logg != nil {
		ctx := s.logg.WithFields(ctx, map[string]any{"service_slug": input.ServiceSlug, "plan_name": input.PlanName, "priced_as": quote.PlanName})
		s.logg.Warn(ctx, "plan sold at fallback tier price")
	}
	actorRef := input.Actor.Ref()

	sale := &Sale{Quote: quote}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		plan, err := s.plans.CreateInTx(ctx, tx, plans.CreatePlanInput{
			ClientID:      input.ClientID,
			ServiceID:     quote.ServiceID,
			PlanName:      quote.PlanName,
			TotalSessions: quote.Sessions,
			CreatedBy:     enums.PlanCreatorAuto,
			Notes:         strings.TrimSpace(input.Notes),
			Actor:         actorRef,
		})
		if err != nil {
			return err
		}
		sale.Plan = plan

		if first := input.FirstSession; first != nil {
			session := 1
			extras := models.PriceSnapshot(quote.PerSessionCents, quote.PlanName)
			appt, err := s.appointments.BookInTx(ctx, tx, appointments.BookInput{
				ClientID:      input.ClientID,
				ServiceID:     quote.ServiceID,
				Date:          first.Date,
				Time:          first.Time,
				PartnerID:     first.PartnerID,
				PlanID:        &plan.ID,
				SessionNumber: &session,
				Source:        enums.BookingSourceCounterSale,
				Extras:        &extras,
				Actor:         input.Actor,
			})
			if err != nil {
				return err
			}
			sale.Appointment = appt
		}

		if pay := input.Payment; pay != nil {
			amount := quote.TotalCents
			if pay.AmountCents != nil {
				amount = *pay.AmountCents
			}
			record := payments.RecordInput{
				ClientID:    input.ClientID,
				PlanID:      &plan.ID,
				AmountCents: amount,
				Method:      pay.Method,
				PaidAt:      pay.PaidAt,
				Actor:       actorRef,
			}
			if sale.Appointment != nil {
				record.AppointmentID = &sale.Appointment.ID
				record.PartnerID = sale.Appointment.PartnerID
			}
			payment, err := s.payments.RecordInTx(ctx, tx, record)
			if err != nil {
				return err
			}
			sale.Payment = payment
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}
