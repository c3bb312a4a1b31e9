package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	"github.com/angelmondragon/salonbook-backend/internal/notifications"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

const maxNotesLength = 1000

type bookRequest struct {
	ClientID      *uuid.UUID          `json:"client_id,omitempty"`
	ServiceID     *uuid.UUID          `json:"service_id,omitempty"`
	Date          string              `json:"date" validate:"required,slotdate"`
	Time          string              `json:"time" validate:"required,slottime"`
	PartnerID     *uuid.UUID          `json:"partner_id,omitempty"`
	PlanID        *uuid.UUID          `json:"plan_id,omitempty"`
	SessionNumber *int                `json:"session_number,omitempty" validate:"omitempty,min=1"`
	Source        enums.BookingSource `json:"source,omitempty"`
	Notes         string              `json:"notes,omitempty"`
}

func (b bookRequest) toInput(actor appointments.Actor) appointments.BookInput {
	input := appointments.BookInput{
		Date:          b.Date,
		Time:          b.Time,
		PartnerID:     b.PartnerID,
		PlanID:        b.PlanID,
		SessionNumber: b.SessionNumber,
		Source:        b.Source,
		Notes:         validators.SanitizeString(b.Notes, maxNotesLength),
		Actor:         actor,
	}
	if b.ClientID != nil {
		input.ClientID = *b.ClientID
	}
	if b.ServiceID != nil {
		input.ServiceID = *b.ServiceID
	}
	return input
}

type rescheduleRequest struct {
	Date string `json:"date" validate:"required,slotdate"`
	Time string `json:"time" validate:"required,slottime"`
}

type markPriceRequest struct {
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	PlanLabel  string `json:"plan_label,omitempty"`
}

// BookAppointment serves both the self-service and the admin booking routes.
// For clients the service forces client_id to the caller and the source to
// self_service.
func BookAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("appointments service"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body bookRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		appt, err := svc.Book(r.Context(), body.toInput(actor))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, appointments.FromModel(appt))
	}
}

func ListAppointments(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("appointments service"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter, err := listFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), filter, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appointments.FromModels(rows))
	}
}

func listFilterFromQuery(r *http.Request) (appointments.ListFilter, error) {
	var filter appointments.ListFilter
	var err error
	if filter.ClientID, err = validators.QueryUUID(r, "client_id"); err != nil {
		return filter, err
	}
	if filter.PartnerID, err = validators.QueryUUID(r, "partner_id"); err != nil {
		return filter, err
	}
	if filter.PlanID, err = validators.QueryUUID(r, "plan_id"); err != nil {
		return filter, err
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := enums.AppointmentStatus(strings.ToLower(raw))
		filter.Status = &status
	}
	if filter.From, err = validators.QueryDate(r, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = validators.QueryDate(r, "to"); err != nil {
		return filter, err
	}
	if filter.Limit, err = validators.ParseQueryInt(r, "limit", 0, 1, 500); err != nil {
		return filter, err
	}
	return filter, nil
}

func GetAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentAction(svc, logg, func(r *http.Request, id uuid.UUID, actor appointments.Actor) (any, int, error) {
		appt, err := svc.Get(r.Context(), id, actor)
		return appointments.FromModel(appt), http.StatusOK, err
	})
}

func ConfirmAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentAction(svc, logg, func(r *http.Request, id uuid.UUID, actor appointments.Actor) (any, int, error) {
		appt, err := svc.Confirm(r.Context(), id, actor)
		return appointments.FromModel(appt), http.StatusOK, err
	})
}

func CancelAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentAction(svc, logg, func(r *http.Request, id uuid.UUID, actor appointments.Actor) (any, int, error) {
		appt, err := svc.Cancel(r.Context(), id, actor)
		return appointments.FromModel(appt), http.StatusOK, err
	})
}

// CompleteAppointment also counts the session on the linked plan.
func CompleteAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentAction(svc, logg, func(r *http.Request, id uuid.UUID, actor appointments.Actor) (any, int, error) {
		appt, err := svc.Complete(r.Context(), id, actor)
		return appointments.FromModel(appt), http.StatusOK, err
	})
}

func RescheduleAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentAction(svc, logg, func(r *http.Request, id uuid.UUID, actor appointments.Actor) (any, int, error) {
		var body rescheduleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, 0, err
		}
		appt, err := svc.Reschedule(r.Context(), id, body.Date, body.Time, actor)
		return appointments.FromModel(appt), http.StatusOK, err
	})
}

func MarkAppointmentPrice(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentAction(svc, logg, func(r *http.Request, id uuid.UUID, actor appointments.Actor) (any, int, error) {
		var body markPriceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, 0, err
		}
		appt, err := svc.MarkPrice(r.Context(), id, body.PriceCents, body.PlanLabel, actor)
		return appointments.FromModel(appt), http.StatusOK, err
	})
}

func DeleteAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentAction(svc, logg, func(r *http.Request, id uuid.UUID, actor appointments.Actor) (any, int, error) {
		if err := svc.Delete(r.Context(), id, actor); err != nil {
			return nil, 0, err
		}
		return map[string]bool{"deleted": true}, http.StatusOK, nil
	})
}

// Availability lists the taken times for ?date=.
func Availability(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("appointments service"))
			return
		}
		date, err := validators.RequireQuery(r, "date", validators.QueryDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		taken, err := svc.Availability(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"date": date, "taken": taken})
	}
}

// AppointmentDeliveries lists WhatsApp delivery outcomes for an appointment.
func AppointmentDeliveries(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("notifications service"))
			return
		}
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListDeliveries(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, notifications.DeliveriesFromModels(rows))
	}
}

type appointmentHandler func(r *http.Request, id uuid.UUID, actor appointments.Actor) (any, int, error)

// appointmentAction resolves the caller and the {id} path parameter before
// running fn.
func appointmentAction(svc appointments.Service, logg *logger.Logger, fn appointmentHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("appointments service"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, status, err := fn(r, id, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, payload)
	}
}
