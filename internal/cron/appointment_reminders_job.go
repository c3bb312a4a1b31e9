package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	"github.com/angelmondragon/salonbook-backend/pkg/db"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox/payloads"
)

const (
	defaultReminderBatch = 100
	// maxReminderBatches bounds one run per date.
	maxReminderBatches = 50
)

type AppointmentRemindersJobParams struct {
	Logger     *logger.Logger
	DB         db.TxRunner
	Repository appointments.Repository
	Outbox     outbox.Emitter
	Location   *time.Location
	LeadDays   int
	BatchSize  int
}

// NewAppointmentRemindersJob stamps reminder_sent_at on confirmed
// appointments due within LeadDays and emits appointment_reminder_due for
// each, one transaction per batch.
func NewAppointmentRemindersJob(params AppointmentRemindersJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("appointments repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	lead := params.LeadDays
	if lead <= 0 {
		lead = 1
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultReminderBatch
	}
	return &appointmentRemindersJob{
		logg:     params.Logger,
		db:       params.DB,
		repo:     params.Repository,
		outbox:   params.Outbox,
		loc:      loc,
		leadDays: lead,
		batch:    batch,
		now:      time.Now,
	}, nil
}

type appointmentRemindersJob struct {
	logg     *logger.Logger
	db       db.TxRunner
	repo     appointments.Repository
	outbox   outbox.Emitter
	loc      *time.Location
	leadDays int
	batch    int
	now      func() time.Time
}

func (j *appointmentRemindersJob) Name() string { return "appointment-reminders" }

// Run covers every date from tomorrow to today+leadDays. A failing date does
// not stop the others.
func (j *appointmentRemindersJob) Run(ctx context.Context) error {
	today := j.now().In(j.loc)
	var errs error
	total := 0
	for offset := 1; offset <= j.leadDays; offset++ {
		date := today.AddDate(0, 0, offset).Format("2006-01-02")
		sent, err := j.remindDate(ctx, date)
		total += sent
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reminders for %s: %w", date, err))
		}
	}
	j.logg.Info(j.logg.WithField(ctx, "reminders_emitted", total), "appointment reminders complete")
	return errs
}

func (j *appointmentRemindersJob) remindDate(ctx context.Context, date string) (int, error) {
	sent := 0
	for i := 0; i < maxReminderBatches; i++ {
		n, err := j.remindBatch(ctx, date)
		sent += n
		if err != nil {
			return sent, err
		}
		if n < j.batch {
			return sent, nil
		}
	}
	j.logg.Warn(j.logg.WithField(ctx, "date", date), "reminder batch limit reached, remaining rows wait for the next cycle")
	return sent, nil
}

func (j *appointmentRemindersJob) remindBatch(ctx context.Context, date string) (int, error) {
	var count int
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repo.WithTx(tx)
		due, err := repo.DueReminders(ctx, date, j.batch)
		if err != nil {
			return fmt.Errorf("load due reminders: %w", err)
		}
		if len(due) == 0 {
			return nil
		}
		at := j.now().UTC()
		ids := make([]uuid.UUID, 0, len(due))
		for _, appt := range due {
			ids = append(ids, appt.ID)
		}
		if _, err := repo.MarkReminderSent(ctx, ids, at); err != nil {
			return fmt.Errorf("mark reminders: %w", err)
		}
		for i := range due {
			appt := &due[i]
			err := j.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventAppointmentReminderDue,
				AggregateType: enums.AggregateAppointment,
				AggregateID:   appt.ID,
				Data: payloads.AppointmentReminderDueEvent{
					AppointmentEvent: appointments.AppointmentEventFor(appt),
					DueAt:            at,
				},
			})
			if err != nil {
				return fmt.Errorf("emit reminder for %s: %w", appt.ID, err)
			}
		}
		count = len(due)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
