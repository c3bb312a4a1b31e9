package appointments

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Actor is the authenticated caller. Clients only ever see their own
// appointments; other roles see everything.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (a Actor) IsClient() bool {
	return a.Role == enums.UserRoleClient
}

// Ref is the outbox actor, nil for system callers.
func (a Actor) Ref() *outbox.ActorRef {
	if a.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: a.UserID, Role: string(a.Role)}
}

// BookInput describes a new booking. Extras is merged into the empty record,
// which is how counter sales attach the price snapshot.
type BookInput struct {
	ClientID      uuid.UUID                 `json:"client_id"`
	ServiceID     uuid.UUID                 `json:"service_id"`
	Date          string                    `json:"date" validate:"required"`
	Time          string                    `json:"time" validate:"required"`
	PartnerID     *uuid.UUID                `json:"partner_id,omitempty"`
	PlanID        *uuid.UUID                `json:"plan_id,omitempty"`
	SessionNumber *int                      `json:"session_number,omitempty"`
	Source        enums.BookingSource       `json:"source,omitempty"`
	Notes         string                    `json:"notes,omitempty"`
	Extras        *models.AppointmentExtras `json:"-"`
	Actor         Actor                     `json:"-"`
}

// ListFilter narrows List. From and To are inclusive YYYY-MM-DD bounds.
type ListFilter struct {
	ClientID  *uuid.UUID
	PartnerID *uuid.UUID
	PlanID    *uuid.UUID
	Status    *enums.AppointmentStatus
	From      string
	To        string
	Limit     int
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// parseSlot validates the wire formats and returns the slot instant in loc.
func parseSlot(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil || len(date) != len(dateLayout) {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	tod, err := time.Parse(timeLayout, clock)
	if err != nil || len(clock) != len(timeLayout) {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "time must be HH:MM")
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, loc), nil
}

func validateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil || len(date) != len(dateLayout) {
		return pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	return nil
}
