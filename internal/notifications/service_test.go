package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/salonbook-backend/pkg/whatsapp"
)

type fakeRepository struct {
	users     map[uuid.UUID]*models.User
	recorded  []models.NotificationDelivery
	recordErr error
	listFn    func(ctx context.Context, id uuid.UUID) ([]models.NotificationDelivery, error)
}

func (f *fakeRepository) Record(_ context.Context, delivery *models.NotificationDelivery) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, *delivery)
	return nil
}

func (f *fakeRepository) ListByAppointment(ctx context.Context, id uuid.UUID) ([]models.NotificationDelivery, error) {
	if f.listFn != nil {
		return f.listFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeRepository) FindUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ServiceName(context.Context, uuid.UUID) (string, error) {
	return "Drenagem Linfática", nil
}

func (f *fakeRepository) PartnerName(context.Context, uuid.UUID) (string, error) {
	return "Carla", nil
}

type fakeSender struct {
	err   error
	phone string
	text  string
}

func (f *fakeSender) Send(_ context.Context, phone, message string) (whatsapp.MessageReceipt, error) {
	f.phone, f.text = phone, message
	return whatsapp.MessageReceipt{}, f.err
}

func envelopeFor(t *testing.T, data any) outbox.PayloadEnvelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), OccurredAt: time.Now(), Data: raw}
}

func newFixture(t *testing.T, sender *fakeSender) (Service, *fakeRepository, uuid.UUID) {
	t.Helper()
	phone := "11 98765-4321"
	clientID := uuid.New()
	repo := &fakeRepository{users: map[uuid.UUID]*models.User{
		clientID: {ID: clientID, Name: "Ana Souza", Phone: &phone},
	}}
	svc, err := NewService(ServiceParams{Repo: repo, Sender: sender, Business: "Studio Bela"})
	require.NoError(t, err)
	return svc, repo, clientID
}

func TestHandleSendsAndRecords(t *testing.T) {
	sender := &fakeSender{}
	svc, repo, clientID := newFixture(t, sender)
	partnerID := uuid.New()

	env := envelopeFor(t, payloads.AppointmentEvent{AppointmentID: uuid.New(), ClientID: clientID, PartnerID: &partnerID, Date: "2026-03-10", Time: "09:00"})
	require.NoError(t, svc.Handle(context.Background(), enums.EventAppointmentReminderDue, env))

	assert.Equal(t, "11 98765-4321", sender.phone)
	assert.Contains(t, sender.text, "Lembrete: Ana, amanhã (10/03/2026) às 09:00 você tem Drenagem Linfática com Carla.")
	require.Len(t, repo.recorded, 1)
	assert.Equal(t, enums.NotificationStatusSent, repo.recorded[0].Status)
	assert.Equal(t, "appointment_reminder", repo.recorded[0].Template)
	assert.NotNil(t, repo.recorded[0].SentAt)
	assert.Equal(t, env.EventID, repo.recorded[0].EventID.String())
}

func TestHandleSkipsClientsWithoutPhone(t *testing.T) {
	sender := &fakeSender{}
	svc, repo, _ := newFixture(t, sender)

	env := envelopeFor(t, payloads.AppointmentEvent{AppointmentID: uuid.New(), ClientID: uuid.New(), Date: "2026-03-10", Time: "09:00"})
	require.NoError(t, svc.Handle(context.Background(), enums.EventAppointmentBooked, env))

	assert.Empty(t, sender.phone)
	require.Len(t, repo.recorded, 1)
	assert.Equal(t, enums.NotificationStatusSkipped, repo.recorded[0].Status)
}

func TestHandleGatewayFailures(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		wantRetry bool
	}{
		{name: "gateway down", err: pkgerrors.New(pkgerrors.CodeDependency, "gateway unavailable"), wantRetry: true},
		{name: "rejected number", err: pkgerrors.New(pkgerrors.CodeValidation, "invalid phone"), wantRetry: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, clientID := newFixture(t, &fakeSender{err: tc.err})
			env := envelopeFor(t, payloads.AppointmentEvent{AppointmentID: uuid.New(), ClientID: clientID, Date: "2026-03-10", Time: "09:00"})

			err := svc.Handle(context.Background(), enums.EventAppointmentCancelled, env)
			if tc.wantRetry {
				assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, repo.recorded, 1)
			assert.Equal(t, enums.NotificationStatusFailed, repo.recorded[0].Status)
			require.NotNil(t, repo.recorded[0].Error)
		})
	}
}

func TestHandlePlanCompleted(t *testing.T) {
	sender := &fakeSender{}
	svc, repo, clientID := newFixture(t, sender)

	env := envelopeFor(t, payloads.PlanEvent{PlanID: uuid.New(), ClientID: clientID, PlanName: "Essencial", TotalSessions: 5, CompletedSessions: 5, Status: enums.PlanStatusCompleted})
	require.NoError(t, svc.Handle(context.Background(), enums.EventPlanCompleted, env))

	assert.Contains(t, sender.text, "concluiu as 5 sessões do plano Essencial")
	require.Len(t, repo.recorded, 1)
	assert.Nil(t, repo.recorded[0].AppointmentID)
}

func TestHandleIgnoresUnhandledAndRejectsGarbage(t *testing.T) {
	sender := &fakeSender{}
	svc, repo, _ := newFixture(t, sender)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, enums.EventPaymentRecorded, outbox.PayloadEnvelope{}))

	bad := outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), Data: json.RawMessage(`"nope"`)}
	err := svc.Handle(ctx, enums.EventAppointmentBooked, bad)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	unknownVersion := envelopeFor(t, payloads.AppointmentEvent{})
	unknownVersion.Version = 7
	err = svc.Handle(ctx, enums.EventAppointmentBooked, unknownVersion)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.Empty(t, repo.recorded)
	assert.Empty(t, sender.text)
}

func TestHandleRecordFailureIsRetryable(t *testing.T) {
	svc, repo, clientID := newFixture(t, &fakeSender{})
	repo.recordErr = errors.New("db down")

	env := envelopeFor(t, payloads.AppointmentEvent{AppointmentID: uuid.New(), ClientID: clientID, Date: "2026-03-10", Time: "09:00"})
	err := svc.Handle(context.Background(), enums.EventAppointmentConfirmed, env)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
