package appointments

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/internal/testdb"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

// raceBookings fires every booking at once and returns their errors.
// SQLite in shared-cache mode reports table locks instead of waiting, so the
// pool is pinned to one connection and the transactions queue on it. The
// index still decides the loser; nothing is checked before the insert.
func raceBookings(t *testing.T, f fixture, bookings ...func() error) []error {
	t.Helper()
	sqlDB, err := f.conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	start := make(chan struct{})
	errs := make([]error, len(bookings))
	var wg sync.WaitGroup
	for i, book := range bookings {
		wg.Add(1)
		go func(i int, book func() error) {
			defer wg.Done()
			<-start
			errs[i] = book()
		}(i, book)
	}
	close(start)
	wg.Wait()
	return errs
}

func countCode(errs []error, code pkgerrors.Code) (ok, matched int) {
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case pkgerrors.IsCode(err, code):
			matched++
		}
	}
	return ok, matched
}

func TestConcurrentBookingsSameSlotOneWins(t *testing.T) {
	f := newFixture(t)

	bookAs := func(clientID uuid.UUID) func() error {
		return func() error {
			_, err := f.book(t, "2026-03-10", "10:00", func(in *BookInput) { in.ClientID = clientID })
			return err
		}
	}
	errs := raceBookings(t, f, bookAs(f.client.ID), bookAs(f.other.ID))

	ok, taken := countCode(errs, pkgerrors.CodeSlotTaken)
	require.Equal(t, 1, ok, "errors: %v", errs)
	require.Equal(t, 1, taken, "errors: %v", errs)

	var active int64
	require.NoError(t, f.conn.Model(&models.Appointment{}).
		Where("slot_date = ? AND slot_time = ? AND status <> ?", "2026-03-10", "10:00", enums.AppointmentStatusCancelled).
		Count(&active).Error)
	require.Equal(t, int64(1), active)
	require.Equal(t, 1, f.events(t, enums.EventAppointmentBooked))
}

func TestConcurrentBookingsSamePlanSessionOneWins(t *testing.T) {
	f := newFixture(t)
	plan := testdb.Plan(t, f.conn, f.client.ID, f.service.ID, "Essencial", 5)

	bookAt := func(clock string) func() error {
		return func() error {
			_, err := f.book(t, "2026-03-10", clock, withPlan(plan, 1))
			return err
		}
	}
	errs := raceBookings(t, f, bookAt("09:00"), bookAt("14:00"))

	ok, conflicts := countCode(errs, pkgerrors.CodeConflict)
	require.Equal(t, 1, ok, "errors: %v", errs)
	require.Equal(t, 1, conflicts, "errors: %v", errs)

	var active int64
	require.NoError(t, f.conn.Model(&models.Appointment{}).
		Where("plan_id = ? AND session_number = ? AND status <> ?", plan.ID, 1, enums.AppointmentStatusCancelled).
		Count(&active).Error)
	require.Equal(t, int64(1), active)
}
