package controllers

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	"github.com/angelmondragon/salonbook-backend/internal/partners"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

// maxAvatarUpload is the in-memory budget for the multipart form.
const maxAvatarUpload = 6 << 20

type commissionRequest struct {
	CommissionPct decimal.Decimal `json:"commission_pct"`
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// CreatePartner returns 201 even when the avatar upload failed; the envelope's
// warnings say so.
func CreatePartner(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("partners service"))
			return
		}
		var body partners.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessWithWarnings(w, http.StatusCreated, partners.FromModel(*result.Partner), result.Warning)
	}
}

func ListPartners(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("partners service"))
			return
		}
		rows, err := svc.List(r.Context(), validators.QueryFlag(r, "include_inactive"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, partners.FromModels(rows))
	}
}

func GetPartner(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return partnerAction(svc, logg, func(r *http.Request, id uuid.UUID) (*models.Partner, error) {
		return svc.Get(r.Context(), id)
	})
}

func UpdatePartner(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return partnerAction(svc, logg, func(r *http.Request, id uuid.UUID) (*models.Partner, error) {
		var patch partners.ProfilePatch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			return nil, err
		}
		return svc.Update(r.Context(), id, patch)
	})
}

func UpdatePartnerCommission(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return partnerAction(svc, logg, func(r *http.Request, id uuid.UUID) (*models.Partner, error) {
		var body commissionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.UpdateCommission(r.Context(), id, body.CommissionPct)
	})
}

func SetPartnerActive(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return partnerAction(svc, logg, func(r *http.Request, id uuid.UUID) (*models.Partner, error) {
		var body activeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.SetActive(r.Context(), id, *body.Active)
	})
}

// UploadPartnerAvatar takes a multipart form with the image in "avatar".
func UploadPartnerAvatar(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return partnerAction(svc, logg, func(r *http.Request, id uuid.UUID) (*models.Partner, error) {
		if err := r.ParseMultipartForm(maxAvatarUpload); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
		}
		file, header, err := r.FormFile("avatar")
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "avatar file is required").WithDetails(map[string]any{"field": "avatar"})
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read avatar")
		}
		return svc.UploadAvatar(r.Context(), id, partners.Avatar{
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	})
}

func partnerAction(svc partners.Service, logg *logger.Logger, fn func(r *http.Request, id uuid.UUID) (*models.Partner, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("partners service"))
			return
		}
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partner, err := fn(r, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, partners.FromModel(*partner))
	}
}
