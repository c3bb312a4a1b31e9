package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/salonbook-backend/internal/repo"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
)

// Repository reads and maintains the service catalogue and its price table.
type Repository interface {
	FindServiceBySlug(ctx context.Context, slug string) (*models.Service, error)
	FindServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListServices(ctx context.Context, includeInactive bool) ([]models.Service, error)
	ListAllPrices(ctx context.Context) ([]models.ServicePrice, error)
	UpsertService(ctx context.Context, svc *models.Service) error
	UpsertPrice(ctx context.Context, price *models.ServicePrice) error
	DeletePrice(ctx context.Context, serviceID uuid.UUID, planName string) (int64, error)
}

type repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) FindServiceBySlug(ctx context.Context, slug string) (*models.Service, error) {
	var svc models.Service
	err := r.base.DB(ctx).
		Preload("Prices", func(db *gorm.DB) *gorm.DB { return db.Order("sessions ASC") }).
		Where("slug = ?", slug).
		First(&svc).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *repository) FindServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var svc models.Service
	err := r.base.DB(ctx).
		Preload("Prices", func(db *gorm.DB) *gorm.DB { return db.Order("sessions ASC") }).
		First(&svc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *repository) ListServices(ctx context.Context, includeInactive bool) ([]models.Service, error) {
	q := r.base.DB(ctx).
		Preload("Prices", func(db *gorm.DB) *gorm.DB { return db.Order("sessions ASC") }).
		Order("name ASC")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var out []models.Service
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListAllPrices(ctx context.Context) ([]models.ServicePrice, error) {
	var out []models.ServicePrice
	if err := r.base.DB(ctx).Order("service_id, sessions").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertService inserts or updates by slug.
func (r *repository) UpsertService(ctx context.Context, svc *models.Service) error {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	svc.UpdatedAt = time.Now().UTC()
	// explicit columns so active=false is not swallowed by the column default
	return r.base.DB(ctx).
		Select("id", "slug", "name", "duration_minutes", "active", "created_at", "updated_at").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "duration_minutes", "active", "updated_at"}),
		}).
		Create(svc).Error
}

// UpsertPrice inserts or updates by (service_id, plan_name).
func (r *repository) UpsertPrice(ctx context.Context, price *models.ServicePrice) error {
	if price.ID == uuid.Nil {
		price.ID = uuid.New()
	}
	price.UpdatedAt = time.Now().UTC()
	return r.base.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "service_id"}, {Name: "plan_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"sessions", "price_per_session_cents", "total_cents", "updated_at"}),
		}).
		Create(price).Error
}

func (r *repository) DeletePrice(ctx context.Context, serviceID uuid.UUID, planName string) (int64, error) {
	res := r.base.DB(ctx).
		Where("service_id = ? AND plan_name = ?", serviceID, planName).
		Delete(&models.ServicePrice{})
	return res.RowsAffected, res.Error
}
