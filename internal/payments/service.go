package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/pkg/db"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox/payloads"
)

// Service records payments taken at the counter. Nothing is captured here.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.Payment, error)
	RecordInTx(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.Payment, error)
	ListForMonth(ctx context.Context, month string) ([]models.Payment, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Payment, error)
}

type RecordInput struct {
	ClientID      uuid.UUID           `json:"client_id" validate:"required"`
	PlanID        *uuid.UUID          `json:"plan_id,omitempty"`
	AppointmentID *uuid.UUID          `json:"appointment_id,omitempty"`
	PartnerID     *uuid.UUID          `json:"partner_id,omitempty"`
	AmountCents   int64               `json:"amount_cents" validate:"required"`
	Method        enums.PaymentMethod `json:"method" validate:"required"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Actor         *outbox.ActorRef    `json:"-"`
}

type ServiceParams struct {
	Repo   Repository
	Tx     db.TxRunner
	Outbox outbox.Emitter
}

type service struct {
	repo   Repository
	tx     db.TxRunner
	outbox outbox.Emitter
	now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: params.Repo, tx: params.Tx, outbox: params.Outbox, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.Payment, error) {
	var recorded *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		payment, err := s.RecordInTx(ctx, tx, input)
		if err != nil {
			return err
		}
		recorded = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

func (s *service) RecordInTx(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.Payment, error) {
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client_id is required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount_cents must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]string{"method": string(input.Method)})
	}

	repo := s.repo.WithTx(tx)
	ok, err := repo.ClientExists(ctx, input.ClientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check client")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}

	paidAt := s.now().UTC()
	if input.PaidAt != nil {
		paidAt = input.PaidAt.UTC()
	}
	payment := &models.Payment{
		ID:            uuid.New(),
		ClientID:      input.ClientID,
		PlanID:        input.PlanID,
		AppointmentID: input.AppointmentID,
		PartnerID:     input.PartnerID,
		AmountCents:   input.AmountCents,
		Method:        input.Method,
		PaidAt:        paidAt,
		Notes:         strings.TrimSpace(input.Notes),
	}
	if input.Actor != nil {
		recorder := input.Actor.UserID
		payment.RecordedBy = &recorder
	}
	if err := repo.Create(ctx, payment); err != nil {
		if db.IsCheckViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment violates a constraint")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment")
	}

	err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPaymentRecorded,
		AggregateType: enums.AggregatePayment,
		AggregateID:   payment.ID,
		Actor:         input.Actor,
		Data: payloads.PaymentRecordedEvent{
			PaymentID:     payment.ID,
			ClientID:      payment.ClientID,
			PlanID:        payment.PlanID,
			AppointmentID: payment.AppointmentID,
			AmountCents:   payment.AmountCents,
			Method:        payment.Method,
			PaidAt:        payment.PaidAt,
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit payment_recorded")
	}
	return payment, nil
}

func (s *service) ListForMonth(ctx context.Context, month string) ([]models.Payment, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListBetween(ctx, m.Start, m.End)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	return rows, nil
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Payment, error) {
	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	return rows, nil
}
