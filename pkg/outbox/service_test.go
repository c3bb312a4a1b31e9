package outbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/migrate"
)

func newOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, migrate.ApplySQLiteSchema(conn))
	return conn
}

func TestEmitStoresEnvelope(t *testing.T) {
	conn := newOutboxDB(t)
	svc := NewService(NewRepository(conn), nil)
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	aggregateID := uuid.New()
	actor := &ActorRef{UserID: uuid.New(), Role: "admin"}
	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventAppointmentBooked,
			AggregateType: enums.AggregateAppointment,
			AggregateID:   aggregateID,
			Actor:         actor,
			Data:          map[string]string{"date": "2026-03-10"},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, aggregateID, rows[0].AggregateID)

	envelope, err := ParseEnvelope(rows[0].Payload)
	require.NoError(t, err)
	require.Equal(t, rows[0].ID.String(), envelope.EventID)
	require.Equal(t, 1, envelope.Version)
	require.True(t, fixed.Equal(envelope.OccurredAt))
	require.Equal(t, "admin", envelope.Actor.Role)
	require.JSONEq(t, `{"date":"2026-03-10"}`, string(envelope.Data))
}

func TestEmitRequiresTransactionAndKnownType(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{EventType: enums.EventPlanCreated})
	require.Error(t, err)

	conn := newOutboxDB(t)
	err = svc.Emit(context.Background(), conn, DomainEvent{EventType: "nope"})
	require.Error(t, err)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	conn := newOutboxDB(t)
	repo := NewRepository(conn)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	first := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventPlanCreated, AggregateType: enums.AggregatePlan, AggregateID: uuid.New(), Payload: []byte(`{}`)}
	second := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventPlanCompleted, AggregateType: enums.AggregatePlan, AggregateID: uuid.New(), Payload: []byte(`{}`)}
	require.NoError(t, repo.Insert(conn, first))
	require.NoError(t, repo.Insert(conn, second))

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 3, now)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, repo.MarkPublishedTx(conn, first.ID, now))
	require.NoError(t, repo.MarkFailedTx(conn, second.ID, errors.New("pubsub down"), now.Add(time.Minute)))

	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 3, now)
	require.NoError(t, err)
	require.Empty(t, rows, "failed row is not due until its backoff elapses")

	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 3, now.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 1, rows[0].AttemptCount)
	require.Equal(t, "pubsub down", *rows[0].LastError)

	require.NoError(t, repo.MarkTerminalTx(conn, second.ID, errors.New("dead"), now))
	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 3, now.Add(time.Hour))
	require.NoError(t, err)
	require.Empty(t, rows)

	deleted, err := repo.DeletePublishedBefore(conn, now.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)
}

func TestDLQRepositoryRoundTrip(t *testing.T) {
	conn := newOutboxDB(t)
	repo := NewDLQRepository(conn)
	eventID := uuid.New()
	long := strings.Repeat("x", 2000)

	require.NoError(t, repo.InsertTx(conn, models.OutboxDLQ{
		EventID:       eventID,
		EventType:     enums.EventAppointmentBooked,
		AggregateType: enums.AggregateAppointment,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{}`),
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		ErrorMessage:  &long,
		FailedAt:      time.Now().UTC(),
	}))

	found, err := repo.FindByEventID(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, *found.ErrorMessage, maxLastErrorLen)

	missing, err := repo.FindByEventID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)

	rows, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
