package payments

import (
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

const monthLayout = "2006-01"

// Month is a calendar month in UTC, written YYYY-MM on the wire.
type Month struct {
	Start time.Time
	End   time.Time
}

func ParseMonth(raw string) (Month, error) {
	raw = strings.TrimSpace(raw)
	start, err := time.Parse(monthLayout, raw)
	if err != nil || len(raw) != len(monthLayout) {
		return Month{}, pkgerrors.New(pkgerrors.CodeValidation, "month must be YYYY-MM")
	}
	return Month{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

func (m Month) String() string {
	return m.Start.Format(monthLayout)
}

// ContainsDate reports whether a YYYY-MM-DD slot date falls in the month.
func (m Month) ContainsDate(date string) bool {
	return strings.HasPrefix(date, m.String()+"-")
}
