package enums

type NotificationChannel string

const (
	NotificationChannelWhatsApp NotificationChannel = "whatsapp"
)

func (c NotificationChannel) IsValid() bool {
	return c == NotificationChannelWhatsApp
}

// NotificationStatus is the outcome of a single delivery attempt.
type NotificationStatus string

const (
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
	NotificationStatusSkipped NotificationStatus = "skipped"
)

var validNotificationStatuses = []NotificationStatus{
	NotificationStatusSent,
	NotificationStatusFailed,
	NotificationStatusSkipped,
}

func (s NotificationStatus) IsValid() bool {
	return contains(validNotificationStatuses, s)
}

func ParseNotificationStatus(value string) (NotificationStatus, error) {
	return parse(validNotificationStatuses, value, "notification status")
}
