package controllers

import (
	"net/http"

	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	"github.com/angelmondragon/salonbook-backend/internal/payments"
	"github.com/angelmondragon/salonbook-backend/internal/plans"
	"github.com/angelmondragon/salonbook-backend/internal/pricing"
	"github.com/angelmondragon/salonbook-backend/internal/sales"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

type saleResponse struct {
	Quote       pricing.Quote                `json:"quote"`
	Plan        *plans.PlanDTO               `json:"plan"`
	Appointment *appointments.AppointmentDTO `json:"appointment,omitempty"`
	Payment     *payments.PaymentDTO         `json:"payment,omitempty"`
}

// SellPlan is the counter sale: plan, optional first session and optional
// payment, all or nothing.
func SellPlan(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("sales service"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body sales.SellPlanInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Notes = validators.SanitizeString(body.Notes, maxNotesLength)
		body.Actor = actor

		sale, err := svc.SellPlan(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp := saleResponse{
			Quote:       sale.Quote,
			Plan:        plans.FromModel(sale.Plan),
			Appointment: appointments.FromModel(sale.Appointment),
		}
		if sale.Payment != nil {
			dto := payments.FromModel(*sale.Payment)
			resp.Payment = &dto
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}
