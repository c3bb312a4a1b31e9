package pricing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// Quote is the price of one tier. Exact is false when the requested plan name
// had no tier and the cheapest per-session tier was used instead.
type Quote struct {
	ServiceID       uuid.UUID `json:"service_id"`
	ServiceSlug     string    `json:"service_slug"`
	PlanName        string    `json:"plan_name"`
	Sessions        int       `json:"sessions"`
	PerSessionCents int64     `json:"per_session_cents"`
	TotalCents      int64     `json:"total_cents"`
	Exact           bool      `json:"exact"`
}

// Resolve picks the tier matching planName (trimmed, case-insensitive) or
// falls back to the lowest per-session price, ties broken by lowest total.
// ok is false only when tiers is empty.
func Resolve(tiers []models.ServicePrice, planName string) (Quote, bool) {
	if len(tiers) == 0 {
		return Quote{}, false
	}
	want := normalizePlanName(planName)
	if want != "" {
		for _, tier := range tiers {
			if normalizePlanName(tier.PlanName) == want {
				return quoteFor(tier, true), true
			}
		}
	}

	best := tiers[0]
	for _, tier := range tiers[1:] {
		if tier.PricePerSessionCents < best.PricePerSessionCents ||
			(tier.PricePerSessionCents == best.PricePerSessionCents && tier.TotalCents < best.TotalCents) {
			best = tier
		}
	}
	return quoteFor(best, false), true
}

// SessionPrice is the value of one session of appt: the stored price snapshot
// when present, otherwise the resolved tier for the snapshot label or
// planName.
func SessionPrice(extras models.AppointmentExtras, tiers []models.ServicePrice, planName string) (int64, bool) {
	if price, ok := extras.Price(); ok {
		return price, true
	}
	if label := extras.Label(); label != "" {
		planName = label
	}
	quote, ok := Resolve(tiers, planName)
	if !ok {
		return 0, false
	}
	return quote.PerSessionCents, true
}

// Commission is round(priceCents * pct / 100), half away from zero.
func Commission(priceCents int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(priceCents).Mul(pct).Div(hundred).Round(0).IntPart()
}

func quoteFor(tier models.ServicePrice, exact bool) Quote {
	return Quote{
		ServiceID:       tier.ServiceID,
		PlanName:        tier.PlanName,
		Sessions:        tier.Sessions,
		PerSessionCents: tier.PricePerSessionCents,
		TotalCents:      tier.TotalCents,
		Exact:           exact,
	}
}

func normalizePlanName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
