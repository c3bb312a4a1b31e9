package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox/registry"
	"github.com/angelmondragon/salonbook-backend/pkg/whatsapp"
)

// Service turns lifecycle events into WhatsApp messages. It never touches
// appointment or plan state.
type Service interface {
	Handle(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error
	ListDeliveries(ctx context.Context, appointmentID uuid.UUID) ([]models.NotificationDelivery, error)
}

type ServiceParams struct {
	Repo     Repository
	Sender   whatsapp.Sender
	Business string
	Metrics  *metrics.DeliveryMetrics
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	sender   whatsapp.Sender
	decoders *registry.DecoderRegistry
	business string
	metrics  *metrics.DeliveryMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("whatsapp sender required")
	}
	return &service{
		repo:     params.Repo,
		sender:   params.Sender,
		decoders: NewDecoders(),
		business: params.Business,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// NewDecoders registers the payload decoders of every handled event.
func NewDecoders() *registry.DecoderRegistry {
	reg := registry.NewDecoderRegistry()
	for _, eventType := range []enums.OutboxEventType{
		enums.EventAppointmentBooked,
		enums.EventAppointmentConfirmed,
		enums.EventAppointmentCancelled,
	} {
		reg.Register(eventType, 1, registry.JSONDecoder[payloads.AppointmentEvent]())
	}
	reg.Register(enums.EventAppointmentRescheduled, 1, registry.JSONDecoder[payloads.AppointmentRescheduledEvent]())
	reg.Register(enums.EventAppointmentReminderDue, 1, registry.JSONDecoder[payloads.AppointmentReminderDueEvent]())
	reg.Register(enums.EventPlanCompleted, 1, registry.JSONDecoder[payloads.PlanEvent]())
	return reg
}

// message is a decoded event ready for lookup and rendering.
type message struct {
	clientID      uuid.UUID
	appointmentID *uuid.UUID
	serviceID     uuid.UUID
	partnerID     *uuid.UUID
	data          MessageData
}

// Handle sends one event. Only gateway failures classified as
// CodeDependency are returned; everything else is recorded and swallowed.
func (s *service) Handle(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	if !Handles(eventType) {
		return nil
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event id")
	}
	decoded, err := s.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payload")
	}
	msg, err := toMessage(decoded)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unexpected payload")
	}

	delivery := &models.NotificationDelivery{
		EventID:       eventID,
		AppointmentID: msg.appointmentID,
		Channel:       enums.NotificationChannelWhatsApp,
	}

	client, err := s.repo.FindUser(ctx, msg.clientID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	if client == nil || client.Phone == nil || strings.TrimSpace(*client.Phone) == "" {
		delivery.Template = templates[eventType].Name()
		return s.record(ctx, delivery, enums.NotificationStatusSkipped, errors.New("client has no phone"))
	}
	delivery.Recipient = *client.Phone

	if err := s.enrich(ctx, &msg, client); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load message context")
	}
	name, text, err := Render(eventType, msg.data)
	delivery.Template = name
	if err != nil {
		return s.record(ctx, delivery, enums.NotificationStatusFailed, err)
	}

	if _, err := s.sender.Send(ctx, delivery.Recipient, text); err != nil {
		if recErr := s.record(ctx, delivery, enums.NotificationStatusFailed, err); recErr != nil {
			return recErr
		}
		if pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			return err
		}
		return nil
	}
	return s.record(ctx, delivery, enums.NotificationStatusSent, nil)
}

func (s *service) ListDeliveries(ctx context.Context, appointmentID uuid.UUID) ([]models.NotificationDelivery, error) {
	rows, err := s.repo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list deliveries")
	}
	return rows, nil
}

func (s *service) enrich(ctx context.Context, msg *message, client *models.User) error {
	msg.data.Business = s.business
	msg.data.ClientName = firstName(client.Name)
	serviceName, err := s.repo.ServiceName(ctx, msg.serviceID)
	if err != nil {
		return err
	}
	msg.data.ServiceName = serviceName
	if msg.partnerID != nil {
		partnerName, err := s.repo.PartnerName(ctx, *msg.partnerID)
		if err != nil {
			return err
		}
		msg.data.PartnerName = partnerName
	}
	return nil
}

func (s *service) record(ctx context.Context, delivery *models.NotificationDelivery, status enums.NotificationStatus, cause error) error {
	delivery.Status = status
	if cause != nil {
		text := cause.Error()
		delivery.Error = &text
	}
	if status == enums.NotificationStatusSent {
		at := s.now().UTC()
		delivery.SentAt = &at
	}
	s.metrics.IncNotification(delivery.Template, string(status))
	if s.logg != nil && status != enums.NotificationStatusSent {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event_id": delivery.EventID.String(),
			"template": delivery.Template,
			"status":   string(status),
		})
		s.logg.Warn(logCtx, "notification not delivered: "+stringOr(delivery.Error))
	}
	if err := s.repo.Record(ctx, delivery); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record delivery")
	}
	return nil
}

func toMessage(decoded any) (message, error) {
	switch p := decoded.(type) {
	case *payloads.AppointmentEvent:
		return appointmentMessage(*p), nil
	case *payloads.AppointmentRescheduledEvent:
		msg := appointmentMessage(p.AppointmentEvent)
		msg.data.PreviousDate = p.PreviousDate
		msg.data.PreviousTime = p.PreviousTime
		return msg, nil
	case *payloads.AppointmentReminderDueEvent:
		return appointmentMessage(p.AppointmentEvent), nil
	case *payloads.PlanEvent:
		return message{
			clientID:  p.ClientID,
			serviceID: p.ServiceID,
			data: MessageData{
				PlanName: p.PlanName,
				Total:    p.TotalSessions,
				Session:  p.CompletedSessions,
			},
		}, nil
	default:
		return message{}, fmt.Errorf("unsupported payload %T", decoded)
	}
}

func appointmentMessage(p payloads.AppointmentEvent) message {
	id := p.AppointmentID
	msg := message{
		clientID:      p.ClientID,
		appointmentID: &id,
		serviceID:     p.ServiceID,
		partnerID:     p.PartnerID,
		data:          MessageData{Date: p.Date, Time: p.Time},
	}
	if p.SessionNumber != nil {
		msg.data.Session = *p.SessionNumber
	}
	return msg
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func stringOr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
