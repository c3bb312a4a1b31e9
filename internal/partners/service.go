package partners

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/storage/gcs"
)

// AvatarWarning is returned alongside a created partner whose avatar could
// not be stored.
const AvatarWarning = "partner saved but the avatar upload failed"

var maxCommission = decimal.NewFromInt(100)

// Service manages partner profiles and their commission rates.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Update(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*models.Partner, error)
	UpdateCommission(ctx context.Context, id uuid.UUID, pct decimal.Decimal) (*models.Partner, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Partner, error)
	UploadAvatar(ctx context.Context, id uuid.UUID, avatar Avatar) (*models.Partner, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	List(ctx context.Context, includeInactive bool) ([]models.Partner, error)
}

type CreateInput struct {
	Name          string          `json:"name" validate:"required"`
	Phone         *string         `json:"phone,omitempty"`
	Email         *string         `json:"email,omitempty" validate:"omitempty,email"`
	UserID        *uuid.UUID      `json:"user_id,omitempty"`
	CommissionPct decimal.Decimal `json:"commission_pct"`
	Avatar        *Avatar         `json:"avatar,omitempty"`
}

// CreateResult carries a non-fatal warning when the avatar step failed.
type CreateResult struct {
	Partner *models.Partner
	Warning string
}

type ProfilePatch struct {
	Name   *string    `json:"name,omitempty"`
	Phone  *string    `json:"phone,omitempty"`
	Email  *string    `json:"email,omitempty" validate:"omitempty,email"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
}

type ServiceParams struct {
	Repo     Repository
	Uploader gcs.Uploader
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	uploader gcs.Uploader
	logg     *logger.Logger
}

// NewService builds the partner service. Without an uploader avatars are
// rejected on upload and skipped with a warning on create.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("partners repository required")
	}
	return &service{repo: params.Repo, uploader: params.Uploader, logg: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validateCommission(input.CommissionPct); err != nil {
		return nil, err
	}
	var ext string
	if input.Avatar != nil {
		var err error
		if ext, err = input.Avatar.validate(); err != nil {
			return nil, err
		}
	}

	partner := &models.Partner{
		ID:            uuid.New(),
		UserID:        input.UserID,
		Name:          name,
		Phone:         trimmed(input.Phone),
		Email:         trimmed(input.Email),
		CommissionPct: input.CommissionPct,
		Active:        true,
	}
	if err := s.repo.Create(ctx, partner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create partner")
	}

	result := &CreateResult{Partner: partner}
	if input.Avatar == nil {
		return result, nil
	}
	// The partner row is already committed; an avatar failure only warns.
	url, err := s.store(ctx, partner.ID, *input.Avatar, ext)
	if err != nil {
		s.warn(ctx, partner.ID, err)
		result.Warning = AvatarWarning
		return result, nil
	}
	partner.AvatarURL = &url
	return result, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*models.Partner, error) {
	partner, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		partner.Name = name
	}
	if patch.Phone != nil {
		partner.Phone = trimmed(patch.Phone)
	}
	if patch.Email != nil {
		partner.Email = trimmed(patch.Email)
	}
	if patch.UserID != nil {
		partner.UserID = patch.UserID
	}
	if err := s.repo.Update(ctx, partner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update partner")
	}
	return partner, nil
}

func (s *service) UpdateCommission(ctx context.Context, id uuid.UUID, pct decimal.Decimal) (*models.Partner, error) {
	if err := validateCommission(pct); err != nil {
		return nil, err
	}
	rows, err := s.repo.UpdateCommission(ctx, id, pct)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update commission")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
	}
	return s.Get(ctx, id)
}

// SetActive hides or restores a partner. History keeps pointing at the row.
func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Partner, error) {
	rows, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update partner status")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
	}
	return s.Get(ctx, id)
}

func (s *service) UploadAvatar(ctx context.Context, id uuid.UUID, avatar Avatar) (*models.Partner, error) {
	ext, err := avatar.validate()
	if err != nil {
		return nil, err
	}
	partner, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.store(ctx, partner.ID, avatar, ext)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload avatar")
	}
	partner.AvatarURL = &url
	return partner, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	partner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load partner")
	}
	return partner, nil
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]models.Partner, error) {
	rows, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list partners")
	}
	return rows, nil
}

// store uploads the avatar and points the partner at it.
func (s *service) store(ctx context.Context, id uuid.UUID, avatar Avatar, ext string) (string, error) {
	if s.uploader == nil {
		return "", errors.New("avatar storage is not configured")
	}
	url, err := s.uploader.Upload(ctx, avatarObject(id, ext), avatar.ContentType, bytes.NewReader(avatar.Data))
	if err != nil {
		return "", err
	}
	if err := s.repo.SetAvatarURL(ctx, id, &url); err != nil {
		return "", fmt.Errorf("saving avatar url: %w", err)
	}
	return url, nil
}

func (s *service) warn(ctx context.Context, id uuid.UUID, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"partner_id": id.String(), "error": err.Error()})
	s.logg.Warn(ctx, "partner avatar upload failed")
}

func validateCommission(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(maxCommission) {
		return pkgerrors.New(pkgerrors.CodeValidation, "commission_pct must be between 0 and 100").
			WithDetails(map[string]string{"commission_pct": pct.String()})
	}
	if !pct.Round(2).Equal(pct) {
		return pkgerrors.New(pkgerrors.CodeValidation, "commission_pct allows at most two decimals")
	}
	return nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if out == "" {
		return nil
	}
	return &out
}
