package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/internal/repo"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// Repository persists recorded payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Payment, error)
	ClientExists(ctx context.Context, id uuid.UUID) (bool, error)
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

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return r.base.DB(ctx).Create(payment).Error
}

// ListBetween returns payments with from <= paid_at < to.
func (r *repository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.base.DB(ctx).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Order("paid_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.base.DB(ctx).
		Where("client_id = ?", clientID).
		Order("paid_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ClientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.base.DB(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", id, enums.UserRoleClient).
		Count(&count).Error
	return count > 0, err
}
