// Package digest sends the business a daily summary of the next day's agenda.
package digest

import (
	"context"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/localtime"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/notify"
	"github.com/robfig/cron/v3"
)

type Store interface {
	ListAppointmentsByDate(ctx context.Context, date string) ([]model.Appointment, error)
	GetBusinessConfig(ctx context.Context) (model.BusinessConfig, error)
}

type Job struct {
	store    Store
	notifier booking.Notifier
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewJob(store Store, notifier booking.Notifier, logger *slog.Logger, loc *time.Location) *Job {
	if loc == nil {
		loc = time.UTC
	}
	return &Job{store: store, notifier: notifier, logger: logger, loc: loc, now: time.Now}
}

// Run dispatches the agenda of the day after today: the number of active appointments
// and the earliest start time.
func (j *Job) Run(ctx context.Context) error {
	now := j.now()
	day := localtime.Today(now, j.loc).AddDays(1)

	appts, err := j.store.ListAppointmentsByDate(ctx, day.String())
	if err != nil {
		return err
	}
	business, err := j.store.GetBusinessConfig(ctx)
	if err != nil {
		return err
	}

	count, first := 0, ""
	for _, a := range appts {
		if a.Status == model.StatusCancelled {
			continue
		}
		count++
		if first == "" || a.StartTime < first {
			first = a.StartTime
		}
	}
	j.notifier.Dispatch(notify.DailyAgenda(business, day, count, first, now))
	j.logger.Info("daily agenda dispatched", "date", day.String(), "appointments", count)
	return nil
}

// Schedule registers j on a cron running in the business location. An empty expr
// disables the digest and returns nil. The caller starts and stops the cron.
func Schedule(expr string, j *Job, timeout time.Duration) (*cron.Cron, error) {
	if expr == "" {
		return nil, nil
	}
	c := cron.New(cron.WithLocation(j.loc))
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := j.Run(ctx); err != nil {
			j.logger.Error("daily agenda failed", "err", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
