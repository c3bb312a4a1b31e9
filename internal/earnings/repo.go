package earnings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/internal/payments"
	"github.com/angelmondragon/salonbook-backend/internal/repo"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// Repository loads the read-only collections a report needs.
type Repository interface {
	Load(ctx context.Context, month payments.Month) (Dataset, error)
}

type repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) Load(ctx context.Context, month payments.Month) (Dataset, error) {
	var data Dataset
	conn := r.base.DB(ctx)

	if err := conn.Order("name ASC").Find(&data.Partners).Error; err != nil {
		return Dataset{}, err
	}
	err := conn.
		Where("partner_id IS NOT NULL").
		Where("status IN ?", []enums.AppointmentStatus{enums.AppointmentStatusConfirmed, enums.AppointmentStatusCompleted}).
		Where("slot_date >= ? AND slot_date < ?", month.Start.Format("2006-01-02"), month.End.Format("2006-01-02")).
		Find(&data.Appointments).Error
	if err != nil {
		return Dataset{}, err
	}
	if err := conn.Where("paid_at >= ? AND paid_at < ?", month.Start, month.End).Find(&data.Payments).Error; err != nil {
		return Dataset{}, err
	}
	if err := conn.Find(&data.Prices).Error; err != nil {
		return Dataset{}, err
	}

	planIDs := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]struct{})
	for _, appt := range data.Appointments {
		if appt.PlanID == nil {
			continue
		}
		if _, ok := seen[*appt.PlanID]; ok {
			continue
		}
		seen[*appt.PlanID] = struct{}{}
		planIDs = append(planIDs, *appt.PlanID)
	}
	data.PlanNames = make(map[uuid.UUID]string, len(planIDs))
	if len(planIDs) == 0 {
		return data, nil
	}
	var plans []models.Plan
	if err := conn.Select("id", "plan_name").Where("id IN ?", planIDs).Find(&plans).Error; err != nil {
		return Dataset{}, err
	}
	for _, plan := range plans {
		data.PlanNames[plan.ID] = plan.PlanName
	}
	return data, nil
}
