package plans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/pkg/db"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/salonbook-backend/pkg/pagination"
)

// maxCASAttempts bounds the compare-and-swap loop on completed_sessions.
const maxCASAttempts = 3

// Service owns the lifecycle of multi-session plans.
type Service interface {
	Create(ctx context.Context, input CreatePlanInput) (*models.Plan, error)
	CreateInTx(ctx context.Context, tx *gorm.DB, input CreatePlanInput) (*models.Plan, error)
	AdjustCompleted(ctx context.Context, id uuid.UUID, delta int) (*models.Plan, error)
	AdjustInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) (*models.Plan, error)
	Edit(ctx context.Context, id uuid.UUID, patch PlanPatch) (*models.Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, params pagination.Params) (pagination.Page[models.Plan], error)
}

// CreatePlanInput describes a plan sale or an admin-created plan.
type CreatePlanInput struct {
	ClientID      uuid.UUID        `json:"client_id" validate:"required"`
	ServiceID     uuid.UUID        `json:"service_id" validate:"required"`
	PlanName      string           `json:"plan_name" validate:"required"`
	TotalSessions int              `json:"total_sessions" validate:"required"`
	CreatedBy     string           `json:"created_by,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	Actor         *outbox.ActorRef `json:"-"`
}

// PlanPatch is an admin correction. Nil fields are left as they are.
type PlanPatch struct {
	PlanName          *string `json:"plan_name,omitempty"`
	TotalSessions     *int    `json:"total_sessions,omitempty"`
	CompletedSessions *int    `json:"completed_sessions,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

type ServiceParams struct {
	Repo    Repository
	Tx      db.TxRunner
	Outbox  outbox.Emitter
	Metrics *metrics.BookingMetrics
	Logger  *logger.Logger
}

type service struct {
	repo    Repository
	tx      db.TxRunner
	outbox  outbox.Emitter
	metrics *metrics.BookingMetrics
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("plans repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreatePlanInput) (*models.Plan, error) {
	var created *models.Plan
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		plan, err := s.CreateInTx(ctx, tx, input)
		if err != nil {
			return err
		}
		created = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) CreateInTx(ctx context.Context, tx *gorm.DB, input CreatePlanInput) (*models.Plan, error) {
	if input.TotalSessions < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_sessions must be at least 1")
	}
	planName := strings.TrimSpace(input.PlanName)
	if planName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan_name is required")
	}
	createdBy := strings.TrimSpace(input.CreatedBy)
	if createdBy == "" {
		createdBy = enums.PlanCreatorAdmin
	}

	repo := s.repo.WithTx(tx)
	if ok, err := repo.ClientExists(ctx, input.ClientID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check client")
	} else if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}
	if ok, err := repo.ServiceExists(ctx, input.ServiceID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check service")
	} else if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}

	plan := &models.Plan{
		ID:            uuid.New(),
		ClientID:      input.ClientID,
		ServiceID:     input.ServiceID,
		PlanName:      planName,
		TotalSessions: input.TotalSessions,
		Status:        enums.PlanStatusActive,
		CreatedBy:     createdBy,
		Notes:         input.Notes,
	}
	if err := repo.Create(ctx, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create plan")
	}
	if err := s.emit(ctx, tx, enums.EventPlanCreated, plan, input.Actor); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *service) AdjustCompleted(ctx context.Context, id uuid.UUID, delta int) (*models.Plan, error) {
	var adjusted *models.Plan
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		plan, err := s.AdjustInTx(ctx, tx, id, delta)
		if err != nil {
			return err
		}
		adjusted = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}

// AdjustInTx applies delta with a compare-and-swap on the previous count.
// A delta that changes nothing skips the write.
func (s *service) AdjustInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) (*models.Plan, error) {
	repo := s.repo.WithTx(tx)
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		current, err := s.load(ctx, repo, id)
		if err != nil {
			return nil, err
		}
		next := ApplyDelta(*current, delta)
		if next.CompletedSessions == current.CompletedSessions && next.Status == current.Status {
			return current, nil
		}

		ok, err := repo.CompareAndSetCompleted(ctx, id, current.CompletedSessions, next.CompletedSessions, next.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update plan sessions")
		}
		if !ok {
			s.metrics.IncPlanAdjustRetry()
			continue
		}
		if current.Status != enums.PlanStatusCompleted && next.Status == enums.PlanStatusCompleted {
			if err := s.emit(ctx, tx, enums.EventPlanCompleted, &next, nil); err != nil {
				return nil, err
			}
		}
		return &next, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "plan was modified concurrently, retry")
}

func (s *service) Edit(ctx context.Context, id uuid.UUID, patch PlanPatch) (*models.Plan, error) {
	var edited *models.Plan
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}

		next := *current
		if patch.PlanName != nil {
			name := strings.TrimSpace(*patch.PlanName)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "plan_name cannot be empty")
			}
			next.PlanName = name
		}
		if patch.TotalSessions != nil {
			next.TotalSessions = *patch.TotalSessions
		}
		if patch.CompletedSessions != nil {
			next.CompletedSessions = *patch.CompletedSessions
		}
		if patch.Notes != nil {
			next.Notes = *patch.Notes
		}
		if !validCounters(next.TotalSessions, next.CompletedSessions) {
			return pkgerrors.New(pkgerrors.CodeValidation, "plan requires 1 <= total_sessions and 0 <= completed_sessions <= total_sessions").
				WithDetails(map[string]int{"total_sessions": next.TotalSessions, "completed_sessions": next.CompletedSessions})
		}
		next.Status = enums.PlanStatusFor(next.CompletedSessions, next.TotalSessions)

		if err := repo.Update(ctx, &next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update plan")
		}
		if current.Status != enums.PlanStatusCompleted && next.Status == enums.PlanStatusCompleted {
			if err := s.emit(ctx, tx, enums.EventPlanCompleted, &next, nil); err != nil {
				return err
			}
		}
		edited = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// Delete removes the plan row only. Appointments that reference it keep the
// dangling plan_id.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete plan")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	return s.load(ctx, s.repo, id)
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID, params pagination.Params) (pagination.Page[models.Plan], error) {
	page, err := s.repo.ListByClient(ctx, clientID, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return pagination.Page[models.Plan]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return pagination.Page[models.Plan]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plans")
	}
	return page, nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Plan, error) {
	plan, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
	}
	return plan, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, plan *models.Plan, actor *outbox.ActorRef) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregatePlan,
		AggregateID:   plan.ID,
		Actor:         actor,
		Data: payloads.PlanEvent{
			PlanID:            plan.ID,
			ClientID:          plan.ClientID,
			ServiceID:         plan.ServiceID,
			PlanName:          plan.PlanName,
			TotalSessions:     plan.TotalSessions,
			CompletedSessions: plan.CompletedSessions,
			Status:            plan.Status,
			CreatedBy:         plan.CreatedBy,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit "+string(eventType))
	}
	return nil
}
