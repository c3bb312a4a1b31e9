package partners

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/internal/repo"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
)

// Repository persists partner profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, partner *models.Partner) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	List(ctx context.Context, includeInactive bool) ([]models.Partner, error)
	Update(ctx context.Context, partner *models.Partner) error
	UpdateCommission(ctx context.Context, id uuid.UUID, pct decimal.Decimal) (int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error)
	SetAvatarURL(ctx context.Context, id uuid.UUID, url *string) error
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

func (r *repository) Create(ctx context.Context, partner *models.Partner) error {
	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}
	return r.base.DB(ctx).Create(partner).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	var partner models.Partner
	if err := r.base.DB(ctx).First(&partner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]models.Partner, error) {
	q := r.base.DB(ctx).Model(&models.Partner{})
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var rows []models.Partner
	err := q.Order("name ASC").Find(&rows).Error
	return rows, err
}

// Update writes the profile fields. Commission, status and avatar have their
// own setters.
func (r *repository) Update(ctx context.Context, partner *models.Partner) error {
	return r.base.DB(ctx).
		Model(&models.Partner{}).
		Where("id = ?", partner.ID).
		Updates(map[string]any{
			"name":    partner.Name,
			"phone":   partner.Phone,
			"email":   partner.Email,
			"user_id": partner.UserID,
		}).Error
}

func (r *repository) UpdateCommission(ctx context.Context, id uuid.UUID, pct decimal.Decimal) (int64, error) {
	res := r.base.DB(ctx).Model(&models.Partner{}).Where("id = ?", id).Update("commission_pct", pct)
	return res.RowsAffected, res.Error
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error) {
	res := r.base.DB(ctx).Model(&models.Partner{}).Where("id = ?", id).Update("active", active)
	return res.RowsAffected, res.Error
}

func (r *repository) SetAvatarURL(ctx context.Context, id uuid.UUID, url *string) error {
	return r.base.DB(ctx).Model(&models.Partner{}).Where("id = ?", id).Update("avatar_url", url).Error
}
