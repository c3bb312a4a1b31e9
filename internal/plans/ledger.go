package plans

import (
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// ApplyDelta returns p with completed_sessions moved by delta and clamped to
// [0, total]. Status is re-derived from the new count. It never fails.
func ApplyDelta(p models.Plan, delta int) models.Plan {
	out := p
	switch {
	case delta >= p.TotalSessions-p.CompletedSessions:
		out.CompletedSessions = p.TotalSessions
	case delta <= -p.CompletedSessions:
		out.CompletedSessions = 0
	default:
		out.CompletedSessions = p.CompletedSessions + delta
	}
	out.Status = enums.PlanStatusFor(out.CompletedSessions, out.TotalSessions)
	return out
}

// validCounters is the plan row invariant: 1 <= total and 0 <= completed <= total.
func validCounters(total, completed int) bool {
	return total >= 1 && completed >= 0 && completed <= total
}
