package enums

// BookingSource records which flow created an appointment.
type BookingSource string

const (
	BookingSourceSelfService BookingSource = "self_service"
	BookingSourceAdmin       BookingSource = "admin"
	BookingSourceCounterSale BookingSource = "counter_sale"
)

var validBookingSources = []BookingSource{
	BookingSourceSelfService,
	BookingSourceAdmin,
	BookingSourceCounterSale,
}

func (s BookingSource) IsValid() bool {
	return contains(validBookingSources, s)
}

// InitialStatus is pending for self-service bookings and confirmed otherwise.
func (s BookingSource) InitialStatus() AppointmentStatus {
	if s == BookingSourceSelfService {
		return AppointmentStatusPending
	}
	return AppointmentStatusConfirmed
}

func ParseBookingSource(value string) (BookingSource, error) {
	return parse(validBookingSources, value, "booking source")
}
