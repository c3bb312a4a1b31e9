package enums

// PlanStatus tracks whether a multi-session plan still has sessions left.
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
)

var validPlanStatuses = []PlanStatus{
	PlanStatusActive,
	PlanStatusCompleted,
}

// String implements fmt.Stringer.
func (p PlanStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanStatus.
func (p PlanStatus) IsValid() bool {
	return contains(validPlanStatuses, p)
}

// PlanStatusFor derives the status from the session counters.
func PlanStatusFor(completed, total int) PlanStatus {
	if total > 0 && completed >= total {
		return PlanStatusCompleted
	}
	return PlanStatusActive
}

// ParsePlanStatus converts raw input into a PlanStatus.
func ParsePlanStatus(value string) (PlanStatus, error) {
	return parse(validPlanStatuses, value, "plan status")
}

// Well-known plan creator tags. Any other non-empty tag is accepted.
const (
	PlanCreatorAuto  = "auto"
	PlanCreatorAdmin = "admin"
)
