package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	"github.com/angelmondragon/salonbook-backend/internal/plans"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/pagination"
)

type adjustPlanRequest struct {
	Delta int `json:"delta" validate:"required"`
}

func CreatePlan(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("plans service"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body plans.CreatePlanInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Notes = validators.SanitizeString(body.Notes, maxNotesLength)
		body.Actor = actor.Ref()
		plan, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, plans.FromModel(plan))
	}
}

func GetPlan(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return planAction(svc, logg, func(r *http.Request, id uuid.UUID) (any, error) {
		plan, err := svc.Get(r.Context(), id)
		return plans.FromModel(plan), err
	})
}

// EditPlan rewrites the plan fields; the ledger re-derives the status.
func EditPlan(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return planAction(svc, logg, func(r *http.Request, id uuid.UUID) (any, error) {
		var patch plans.PlanPatch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			return nil, err
		}
		plan, err := svc.Edit(r.Context(), id, patch)
		return plans.FromModel(plan), err
	})
}

// AdjustPlan moves the completed counter by delta, clamped to the plan size.
func AdjustPlan(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return planAction(svc, logg, func(r *http.Request, id uuid.UUID) (any, error) {
		var body adjustPlanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		plan, err := svc.AdjustCompleted(r.Context(), id, body.Delta)
		return plans.FromModel(plan), err
	})
}

func DeletePlan(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return planAction(svc, logg, func(r *http.Request, id uuid.UUID) (any, error) {
		if err := svc.Delete(r.Context(), id); err != nil {
			return nil, err
		}
		return map[string]bool{"deleted": true}, nil
	})
}

// MyPlans lists the caller's own plans.
func MyPlans(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("plans service"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writePlanPage(w, r, logg, svc, actor.UserID)
	}
}

// ClientPlans is the admin view of one client's plans.
func ClientPlans(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("plans service"))
			return
		}
		clientID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writePlanPage(w, r, logg, svc, clientID)
	}
}

func writePlanPage(w http.ResponseWriter, r *http.Request, logg *logger.Logger, svc plans.Service, clientID uuid.UUID) {
	params, err := pageParams(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	page, err := svc.ListByClient(r.Context(), clientID, params)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, plans.PageFromModels(page))
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Cursor: strings.TrimSpace(r.URL.Query().Get("cursor"))}, nil
}

func planAction(svc plans.Service, logg *logger.Logger, fn func(r *http.Request, id uuid.UUID) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("plans service"))
			return
		}
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, err := fn(r, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}
