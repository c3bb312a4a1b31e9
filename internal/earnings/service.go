package earnings

import (
	"context"
	"fmt"

	"github.com/angelmondragon/salonbook-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

type Service interface {
	MonthlyReport(ctx context.Context, month string) (Report, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("earnings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) MonthlyReport(ctx context.Context, month string) (Report, error) {
	m, err := payments.ParseMonth(month)
	if err != nil {
		return Report{}, err
	}
	data, err := s.repo.Load(ctx, m)
	if err != nil {
		return Report{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load earnings data")
	}
	return Compute(data, m), nil
}
