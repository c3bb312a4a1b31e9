package earnings

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/internal/payments"
	"github.com/angelmondragon/salonbook-backend/internal/pricing"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// Dataset is everything a monthly report is computed from.
type Dataset struct {
	Partners     []models.Partner
	Appointments []models.Appointment
	Payments     []models.Payment
	Prices       []models.ServicePrice
	// PlanNames resolves plan-linked appointments without a price label.
	PlanNames map[uuid.UUID]string
}

type PartnerEarnings struct {
	PartnerID       uuid.UUID       `json:"partner_id"`
	Name            string          `json:"name"`
	CommissionPct   decimal.Decimal `json:"commission_pct"`
	Appointments    int             `json:"appointments"`
	GrossCents      int64           `json:"gross_cents"`
	CommissionCents int64           `json:"commission_cents"`
	// Unpriced counts appointments whose service has no price table.
	Unpriced int `json:"unpriced,omitempty"`
}

type Report struct {
	Month                  string            `json:"month"`
	Partners               []PartnerEarnings `json:"partners"`
	RevenueCents           int64             `json:"revenue_cents"`
	CommissionPayableCents int64             `json:"commission_payable_cents"`
}

// Compute recomputes the month from scratch. Only confirmed and completed
// appointments dated in the month and attributed to a known partner count;
// revenue is the sum of payments made in the month.
func Compute(data Dataset, month payments.Month) Report {
	tiersByService := make(map[uuid.UUID][]models.ServicePrice)
	for _, price := range data.Prices {
		tiersByService[price.ServiceID] = append(tiersByService[price.ServiceID], price)
	}

	rows := make(map[uuid.UUID]*PartnerEarnings, len(data.Partners))
	for _, partner := range data.Partners {
		rows[partner.ID] = &PartnerEarnings{
			PartnerID:     partner.ID,
			Name:          partner.Name,
			CommissionPct: partner.CommissionPct,
		}
	}

	for _, appt := range data.Appointments {
		if appt.PartnerID == nil || !counts(appt.Status) || !month.ContainsDate(appt.SlotDate) {
			continue
		}
		row, ok := rows[*appt.PartnerID]
		if !ok {
			continue
		}
		row.Appointments++
		var planName string
		if appt.PlanID != nil {
			planName = data.PlanNames[*appt.PlanID]
		}
		price, ok := pricing.SessionPrice(appt.Extras, tiersByService[appt.ServiceID], planName)
		if !ok {
			row.Unpriced++
			continue
		}
		row.GrossCents += price
		row.CommissionCents += pricing.Commission(price, row.CommissionPct)
	}

	report := Report{Month: month.String(), Partners: make([]PartnerEarnings, 0, len(rows))}
	for _, row := range rows {
		report.CommissionPayableCents += row.CommissionCents
		report.Partners = append(report.Partners, *row)
	}
	sort.Slice(report.Partners, func(i, j int) bool {
		a, b := report.Partners[i], report.Partners[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PartnerID.String() < b.PartnerID.String()
	})

	for _, payment := range data.Payments {
		if payment.PaidAt.Before(month.Start) || !payment.PaidAt.Before(month.End) {
			continue
		}
		report.RevenueCents += payment.AmountCents
	}
	return report
}

func counts(status enums.AppointmentStatus) bool {
	return status == enums.AppointmentStatusConfirmed || status == enums.AppointmentStatusCompleted
}
