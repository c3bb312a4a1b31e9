package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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
)

const (
	slotConstraint        = "ux_appointments_active_slot"
	planSessionConstraint = "ux_appointments_active_plan_session"
)

// Service is the appointment ledger.
type Service interface {
	Book(ctx context.Context, input BookInput) (*models.Appointment, error)
	BookInTx(ctx context.Context, tx *gorm.DB, input BookInput) (*models.Appointment, error)
	Confirm(ctx context.Context, id uuid.UUID, actor Actor) (*models.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*models.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, date, clock string, actor Actor) (*models.Appointment, error)
	Complete(ctx context.Context, id uuid.UUID, actor Actor) (*models.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	MarkPrice(ctx context.Context, id uuid.UUID, priceCents int64, planLabel string, actor Actor) (*models.Appointment, error)
	Get(ctx context.Context, id uuid.UUID, actor Actor) (*models.Appointment, error)
	List(ctx context.Context, filter ListFilter, actor Actor) ([]models.Appointment, error)
	Availability(ctx context.Context, date string) ([]string, error)
}

type planLedger interface {
	AdjustInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) (*models.Plan, error)
}

type ServiceParams struct {
	Repo     Repository
	Tx       db.TxRunner
	Outbox   outbox.Emitter
	Plans    planLedger
	Metrics  *metrics.BookingMetrics
	Logger   *logger.Logger
	Location *time.Location
}

type service struct {
	repo    Repository
	tx      db.TxRunner
	outbox  outbox.Emitter
	plans   planLedger
	metrics *metrics.BookingMetrics
	logg    *logger.Logger
	loc     *time.Location
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("appointments repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Plans == nil {
		return nil, fmt.Errorf("plan ledger required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		outbox:  params.Outbox,
		plans:   params.Plans,
		metrics: params.Metrics,
		logg:    params.Logger,
		loc:     loc,
		now:     time.Now,
	}, nil
}

func (s *service) Book(ctx context.Context, input BookInput) (*models.Appointment, error) {
	var booked *models.Appointment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		appt, err := s.BookInTx(ctx, tx, input)
		if err != nil {
			return err
		}
		booked = appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booked, nil
}

func (s *service) BookInTx(ctx context.Context, tx *gorm.DB, input BookInput) (*models.Appointment, error) {
	source := input.Source
	if source == "" {
		source = enums.BookingSourceAdmin
		if input.Actor.IsClient() {
			source = enums.BookingSourceSelfService
		}
	}
	if !source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking source")
	}
	if input.Actor.IsClient() {
		if source != enums.BookingSourceSelfService {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "clients can only self-book")
		}
		input.ClientID = input.Actor.UserID
	}
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client_id is required")
	}

	date, clock := strings.TrimSpace(input.Date), strings.TrimSpace(input.Time)
	at, err := parseSlot(date, clock, s.loc)
	if err != nil {
		return nil, err
	}
	if source == enums.BookingSourceSelfService && at.Before(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot book a slot in the past")
	}
	if input.SessionNumber != nil && input.PlanID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session_number requires plan_id")
	}

	repo := s.repo.WithTx(tx)
	serviceID := input.ServiceID
	if input.PlanID != nil {
		plan, err := repo.FindPlan(ctx, *input.PlanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
		}
		if plan.ClientID != input.ClientID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan belongs to another client")
		}
		if serviceID == uuid.Nil {
			serviceID = plan.ServiceID
		} else if serviceID != plan.ServiceID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan is for a different service")
		}
		if n := input.SessionNumber; n != nil && (*n < 1 || *n > plan.TotalSessions) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "session_number out of range").
				WithDetails(map[string]int{"session_number": *n, "total_sessions": plan.TotalSessions})
		}
	}
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_id is required")
	}
	if err := s.requireExists(ctx, repo.ClientExists, input.ClientID, "client"); err != nil {
		return nil, err
	}
	if err := s.requireExists(ctx, repo.ServiceExists, serviceID, "service"); err != nil {
		return nil, err
	}
	if input.PartnerID != nil {
		if err := s.requireExists(ctx, repo.PartnerExists, *input.PartnerID, "partner"); err != nil {
			return nil, err
		}
	}

	extras := models.AppointmentExtras{}
	if input.Extras != nil {
		extras = extras.Merge(*input.Extras)
	}
	appt := &models.Appointment{
		ID:            uuid.New(),
		ClientID:      input.ClientID,
		ServiceID:     serviceID,
		SlotDate:      date,
		SlotTime:      clock,
		Status:        source.InitialStatus(),
		PartnerID:     input.PartnerID,
		PlanID:        input.PlanID,
		SessionNumber: input.SessionNumber,
		Source:        source,
		Notes:         input.Notes,
		Extras:        extras,
	}
	if err := repo.Create(ctx, appt); err != nil {
		return nil, s.translateWriteError(err, date, clock)
	}
	if err := s.emit(ctx, tx, enums.EventAppointmentBooked, appt, input.Actor, nil); err != nil {
		return nil, err
	}
	s.metrics.IncBooked(string(source))
	return appt, nil
}

func (s *service) Confirm(ctx context.Context, id uuid.UUID, actor Actor) (*models.Appointment, error) {
	if actor.IsClient() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff can confirm")
	}
	return s.mutate(ctx, id, actor, func(tx *gorm.DB, repo Repository, appt *models.Appointment) error {
		switch appt.Status {
		case enums.AppointmentStatusConfirmed:
			return nil
		case enums.AppointmentStatusPending:
			return s.transition(ctx, tx, repo, appt, enums.AppointmentStatusConfirmed, enums.EventAppointmentConfirmed, actor)
		default:
			return stateConflict(appt.Status, enums.AppointmentStatusConfirmed)
		}
	})
}

// Cancel releases the slot. The linked plan is never touched.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*models.Appointment, error) {
	return s.mutate(ctx, id, actor, func(tx *gorm.DB, repo Repository, appt *models.Appointment) error {
		switch appt.Status {
		case enums.AppointmentStatusCancelled:
			return nil
		case enums.AppointmentStatusCompleted:
			return stateConflict(appt.Status, enums.AppointmentStatusCancelled)
		default:
			return s.transition(ctx, tx, repo, appt, enums.AppointmentStatusCancelled, enums.EventAppointmentCancelled, actor)
		}
	})
}

func (s *service) Reschedule(ctx context.Context, id uuid.UUID, date, clock string, actor Actor) (*models.Appointment, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	at, err := parseSlot(date, clock, s.loc)
	if err != nil {
		return nil, err
	}
	if actor.IsClient() && at.Before(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot move a booking into the past")
	}

	return s.mutate(ctx, id, actor, func(tx *gorm.DB, repo Repository, appt *models.Appointment) error {
		if appt.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot reschedule a %s appointment", appt.Status))
		}
		previous := appt.Slot()
		if previous.Date == date && previous.Time == clock {
			return nil
		}

		extras := appt.Extras.Merge(models.RescheduledPatch(previous))
		if err := repo.UpdateSlot(ctx, appt.ID, date, clock, extras); err != nil {
			return s.translateWriteError(err, date, clock)
		}
		appt.SlotDate, appt.SlotTime, appt.Extras, appt.ReminderSentAt = date, clock, extras, nil
		return s.emit(ctx, tx, enums.EventAppointmentRescheduled, appt, actor, &previous)
	})
}

// Complete marks the session done and, for plan-linked appointments, counts
// it on the plan in the same transaction.
func (s *service) Complete(ctx context.Context, id uuid.UUID, actor Actor) (*models.Appointment, error) {
	if actor.IsClient() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff can complete")
	}
	return s.mutate(ctx, id, actor, func(tx *gorm.DB, repo Repository, appt *models.Appointment) error {
		if appt.Status.IsTerminal() {
			return stateConflict(appt.Status, enums.AppointmentStatusCompleted)
		}
		if err := s.transition(ctx, tx, repo, appt, enums.AppointmentStatusCompleted, enums.EventAppointmentCompleted, actor); err != nil {
			return err
		}
		if appt.PlanID == nil {
			return nil
		}
		if _, err := s.plans.AdjustInTx(ctx, tx, *appt.PlanID, 1); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				s.warn(ctx, appt.ID, "completed appointment references a deleted plan")
				return nil
			}
			return err
		}
		return nil
	})
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if actor.IsClient() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only staff can delete")
	}
	_, err := s.mutate(ctx, id, actor, func(tx *gorm.DB, repo Repository, appt *models.Appointment) error {
		if err := s.emit(ctx, tx, enums.EventAppointmentDeleted, appt, actor, nil); err != nil {
			return err
		}
		rows, err := repo.Delete(ctx, appt.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete appointment")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
		}
		return nil
	})
	return err
}

// MarkPrice merges the price-at-time-of-sale snapshot into extras.
func (s *service) MarkPrice(ctx context.Context, id uuid.UUID, priceCents int64, planLabel string, actor Actor) (*models.Appointment, error) {
	if actor.IsClient() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff can set prices")
	}
	if priceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents cannot be negative")
	}
	return s.mutate(ctx, id, actor, func(tx *gorm.DB, repo Repository, appt *models.Appointment) error {
		extras := appt.Extras.Merge(models.PriceSnapshot(priceCents, strings.TrimSpace(planLabel)))
		if err := repo.UpdateExtras(ctx, appt.ID, extras); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update extras")
		}
		appt.Extras = extras
		return nil
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID, actor Actor) (*models.Appointment, error) {
	return s.load(ctx, s.repo, id, actor)
}

func (s *service) List(ctx context.Context, filter ListFilter, actor Actor) ([]models.Appointment, error) {
	if actor.IsClient() {
		own := actor.UserID
		filter.ClientID = &own
	}
	if err := validateDate(filter.From); err != nil {
		return nil, err
	}
	if err := validateDate(filter.To); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list appointments")
	}
	return rows, nil
}

// Availability returns the times already held on date.
func (s *service) Availability(ctx context.Context, date string) ([]string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if err := validateDate(date); err != nil {
		return nil, err
	}
	times, err := s.repo.TakenTimes(ctx, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load availability")
	}
	if times == nil {
		times = []string{}
	}
	return times, nil
}

func (s *service) mutate(ctx context.Context, id uuid.UUID, actor Actor, fn func(tx *gorm.DB, repo Repository, appt *models.Appointment) error) (*models.Appointment, error) {
	var result *models.Appointment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		appt, err := s.load(ctx, repo, id, actor)
		if err != nil {
			return err
		}
		if err := fn(tx, repo, appt); err != nil {
			return err
		}
		result = appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// load hides other clients' appointments behind NotFound.
func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID, actor Actor) (*models.Appointment, error) {
	appt, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load appointment")
	}
	if actor.IsClient() && appt.ClientID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
	}
	return appt, nil
}

func (s *service) transition(ctx context.Context, tx *gorm.DB, repo Repository, appt *models.Appointment, to enums.AppointmentStatus, eventType enums.OutboxEventType, actor Actor) error {
	if !appt.Status.CanTransitionTo(to) {
		return stateConflict(appt.Status, to)
	}
	ok, err := repo.TransitionStatus(ctx, appt.ID, appt.Status, to)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update status")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "appointment changed concurrently, reload and retry")
	}
	appt.Status = to
	s.metrics.IncTransition(string(to))
	return s.emit(ctx, tx, eventType, appt, actor, nil)
}

func (s *service) requireExists(ctx context.Context, check func(context.Context, uuid.UUID) (bool, error), id uuid.UUID, what string) error {
	ok, err := check(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check "+what)
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
	}
	return nil
}

func (s *service) translateWriteError(err error, date, clock string) error {
	switch {
	case db.IsUniqueViolation(err, slotConstraint, "appointments.slot_date", "appointments.slot_time"):
		s.metrics.IncConflict("slot")
		return pkgerrors.SlotTaken(date, clock)
	case db.IsUniqueViolation(err, planSessionConstraint, "appointments.plan_id", "appointments.session_number"):
		s.metrics.IncConflict("plan_session")
		return pkgerrors.New(pkgerrors.CodeConflict, "this plan session is already booked")
	case db.IsCheckViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "appointment violates a constraint")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write appointment")
	}
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, appt *models.Appointment, actor Actor, previous *models.SlotRef) error {
	base := AppointmentEventFor(appt)
	var data any = base
	if previous != nil {
		data = payloads.AppointmentRescheduledEvent{
			AppointmentEvent: base,
			PreviousDate:     previous.Date,
			PreviousTime:     previous.Time,
		}
	}
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateAppointment,
		AggregateID:   appt.ID,
		Actor:         actor.Ref(),
		Data:          data,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit "+string(eventType))
	}
	return nil
}

func (s *service) warn(ctx context.Context, id uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithAppointmentID(ctx, id.String()), msg)
}

// AppointmentEventFor builds the shared lifecycle payload.
func AppointmentEventFor(appt *models.Appointment) payloads.AppointmentEvent {
	return payloads.AppointmentEvent{
		AppointmentID: appt.ID,
		ClientID:      appt.ClientID,
		ServiceID:     appt.ServiceID,
		PartnerID:     appt.PartnerID,
		PlanID:        appt.PlanID,
		SessionNumber: appt.SessionNumber,
		Date:          appt.SlotDate,
		Time:          appt.SlotTime,
		Status:        appt.Status,
		Source:        appt.Source,
	}
}

func stateConflict(from, to enums.AppointmentStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move appointment from %s to %s", from, to)).
		WithDetails(map[string]string{"from": string(from), "to": string(to)})
}
