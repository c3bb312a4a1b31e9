package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/internal/repo"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// Repository persists appointments. Slot and plan-session uniqueness are
// enforced by partial unique indexes, so Create and UpdateSlot surface
// unique violations rather than checking first.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.AppointmentStatus) (bool, error)
	UpdateSlot(ctx context.Context, id uuid.UUID, date, clock string, extras models.AppointmentExtras) error
	UpdateExtras(ctx context.Context, id uuid.UUID, extras models.AppointmentExtras) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]models.Appointment, error)
	TakenTimes(ctx context.Context, date string) ([]string, error)
	FindPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	ClientExists(ctx context.Context, id uuid.UUID) (bool, error)
	ServiceExists(ctx context.Context, id uuid.UUID) (bool, error)
	PartnerExists(ctx context.Context, id uuid.UUID) (bool, error)
	DueReminders(ctx context.Context, date string, limit int) ([]models.Appointment, error)
	MarkReminderSent(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error)
}

type repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	return r.base.DB(ctx).Create(appt).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.base.DB(ctx).First(&appt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

// TransitionStatus moves the row from one status to another only if it is
// still in from. It reports whether the row changed.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.AppointmentStatus) (bool, error) {
	res := r.base.DB(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumns(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateSlot moves the appointment and clears reminder_sent_at so the new
// date gets its own reminder.
func (r *repository) UpdateSlot(ctx context.Context, id uuid.UUID, date, clock string, extras models.AppointmentExtras) error {
	return r.base.DB(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"slot_date":        date,
			"slot_time":        clock,
			"extras":           extras,
			"reminder_sent_at": nil,
			"updated_at":       time.Now().UTC(),
		}).Error
}

func (r *repository) UpdateExtras(ctx context.Context, id uuid.UUID, extras models.AppointmentExtras) error {
	return r.base.DB(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"extras": extras, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.Appointment{})
	return res.RowsAffected, res.Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Appointment, error) {
	q := r.base.DB(ctx).Model(&models.Appointment{})
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	if filter.PartnerID != nil {
		q = q.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.PlanID != nil {
		q = q.Where("plan_id = ?", *filter.PlanID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.From != "" {
		q = q.Where("slot_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("slot_date <= ?", filter.To)
	}
	var rows []models.Appointment
	err := q.Order("slot_date ASC").Order("slot_time ASC").Limit(filter.Limit).Find(&rows).Error
	return rows, err
}

func (r *repository) TakenTimes(ctx context.Context, date string) ([]string, error) {
	var times []string
	err := r.base.DB(ctx).
		Model(&models.Appointment{}).
		Where("slot_date = ? AND status <> ?", date, enums.AppointmentStatusCancelled).
		Order("slot_time ASC").
		Pluck("slot_time", &times).Error
	return times, err
}

func (r *repository) FindPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	if err := r.base.DB(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) ClientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.base.DB(ctx).Model(&models.User{}).
		Where("id = ? AND role = ? AND is_active = ?", id, enums.UserRoleClient, true).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ServiceExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.base.Exists(ctx, models.Service{}.TableName(), id)
}

func (r *repository) PartnerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.base.Exists(ctx, models.Partner{}.TableName(), id)
}

// DueReminders lists confirmed appointments on date that have not been
// reminded yet.
func (r *repository) DueReminders(ctx context.Context, date string, limit int) ([]models.Appointment, error) {
	var rows []models.Appointment
	err := r.base.DB(ctx).
		Where("slot_date = ? AND status = ? AND reminder_sent_at IS NULL", date, enums.AppointmentStatusConfirmed).
		Order("slot_time ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) MarkReminderSent(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.base.DB(ctx).
		Model(&models.Appointment{}).
		Where("id IN ? AND reminder_sent_at IS NULL", ids).
		UpdateColumn("reminder_sent_at", at.UTC())
	return res.RowsAffected, res.Error
}
