package notifications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/salonbook-backend/internal/repo"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
)

// Repository records delivery outcomes and looks up what a message needs.
type Repository interface {
	Record(ctx context.Context, delivery *models.NotificationDelivery) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]models.NotificationDelivery, error)
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ServiceName(ctx context.Context, id uuid.UUID) (string, error)
	PartnerName(ctx context.Context, id uuid.UUID) (string, error)
}

type repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

// Record upserts on (event_id, channel) so a redelivered event overwrites
// the earlier failed attempt.
func (r *repository) Record(ctx context.Context, delivery *models.NotificationDelivery) error {
	if delivery.ID == uuid.Nil {
		delivery.ID = uuid.New()
	}
	return r.base.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "channel"}},
			DoUpdates: clause.AssignmentColumns([]string{"recipient", "template", "status", "error", "sent_at"}),
		}).
		Create(delivery).Error
}

func (r *repository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]models.NotificationDelivery, error) {
	var rows []models.NotificationDelivery
	err := r.base.DB(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) ServiceName(ctx context.Context, id uuid.UUID) (string, error) {
	return r.name(ctx, &models.Service{}, id)
}

func (r *repository) PartnerName(ctx context.Context, id uuid.UUID) (string, error) {
	return r.name(ctx, &models.Partner{}, id)
}

// name returns "" for a missing row.
func (r *repository) name(ctx context.Context, model any, id uuid.UUID) (string, error) {
	var names []string
	err := r.base.DB(ctx).Model(model).Where("id = ?", id).Limit(1).Pluck("name", &names).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}
