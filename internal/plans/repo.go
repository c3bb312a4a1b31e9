package plans

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/internal/repo"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/pagination"
)

// Repository persists plans.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, plan *models.Plan) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	CompareAndSetCompleted(ctx context.Context, id uuid.UUID, expected, next int, status enums.PlanStatus) (bool, error)
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, params pagination.Params) (pagination.Page[models.Plan], error)
	ClientExists(ctx context.Context, id uuid.UUID) (bool, error)
	ServiceExists(ctx context.Context, id uuid.UUID) (bool, error)
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

func (r *repository) Create(ctx context.Context, plan *models.Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	return r.base.DB(ctx).Create(plan).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	if err := r.base.DB(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// CompareAndSetCompleted writes the new counter only if the stored one still
// equals expected. It reports whether the row was updated.
func (r *repository) CompareAndSetCompleted(ctx context.Context, id uuid.UUID, expected, next int, status enums.PlanStatus) (bool, error) {
	res := r.base.DB(ctx).
		Model(&models.Plan{}).
		Where("id = ? AND completed_sessions = ?", id, expected).
		UpdateColumns(map[string]any{
			"completed_sessions": next,
			"status":             status,
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Update(ctx context.Context, plan *models.Plan) error {
	return r.base.DB(ctx).
		Model(&models.Plan{}).
		Where("id = ?", plan.ID).
		Updates(map[string]any{
			"plan_name":          plan.PlanName,
			"total_sessions":     plan.TotalSessions,
			"completed_sessions": plan.CompletedSessions,
			"status":             plan.Status,
			"notes":              plan.Notes,
			"updated_at":         time.Now().UTC(),
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.Plan{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListByClient(ctx context.Context, clientID uuid.UUID, params pagination.Params) (pagination.Page[models.Plan], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.Plan]{}, err
	}
	var rows []models.Plan
	q := r.base.DB(ctx).Model(&models.Plan{}).Where("client_id = ?", clientID)
	if err := pagination.Apply(q, cursor, params.Limit).Find(&rows).Error; err != nil {
		return pagination.Page[models.Plan]{}, err
	}
	return pagination.Build(rows, params.Limit, func(p models.Plan) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	}), nil
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
