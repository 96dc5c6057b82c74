package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/agendou/libs/events"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/localtime"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/phone"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Notifier accepts a notification without blocking; false means it was dropped.
type Notifier interface {
	Dispatch(n events.Notification) bool
}

type Config struct {
	// Location decides what today and now mean for the business. Defaults to UTC.
	Location *time.Location
	// SlotStep is the stride between slot starts in minutes. Defaults to 30.
	SlotStep int
	Now      func() time.Time
}

type Service struct {
	store    storage.Store
	notifier Notifier
	logger   *slog.Logger
	tracer   trace.Tracer

	loc  *time.Location
	step int
	now  func() time.Time
}

func NewService(store storage.Store, notifier Notifier, logger *slog.Logger, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SlotStep <= 0 {
		cfg.SlotStep = availability.DefaultStep
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		tracer:   otel.Tracer("agendou/booking-service/booking"),
		loc:      cfg.Location,
		step:     cfg.SlotStep,
		now:      cfg.Now,
	}
}

// Location is the business location used for today and now.
func (s *Service) Location() *time.Location { return s.loc }

// GetAvailableSlots lists the bookable start times of serviceID on date. Unknown or
// inactive services, past dates and closed days yield an empty list, never an error.
func (s *Service) GetAvailableSlots(ctx context.Context, date, serviceID string) ([]model.TimeSlot, error) {
	day, err := localtime.ParseDate(date)
	if err != nil {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}
	slots := []model.TimeSlot{}

	svc, err := s.store.GetService(ctx, serviceID)
	if errors.Is(err, storage.ErrNotFound) {
		return slots, nil
	}
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return slots, nil
	}

	now := s.now()
	today := localtime.Today(now, s.loc)
	if day.Before(today) {
		return slots, nil
	}

	days, err := s.store.GetAvailability(ctx)
	if err != nil {
		return nil, err
	}
	window, open := availability.WindowFor(days, day.Weekday())
	if !open {
		return slots, nil
	}

	appts, err := s.store.ListAppointmentsByDate(ctx, day.String())
	if err != nil {
		return nil, err
	}

	var notBefore localtime.Clock
	if day.Equal(today) {
		notBefore = localtime.ClockOf(now, s.loc)
	}
	busy := availability.BusyIntervals(appts, "")
	for _, start := range availability.GenerateSlots(window, svc.DurationMinutes, s.step, busy, notBefore) {
		slots = append(slots, model.TimeSlot{Time: start.String(), Available: true})
	}
	return slots, nil
}

type CreateAppointmentInput struct {
	ServiceID   string
	ClientName  string
	ClientPhone string
	Date        string
	StartTime   string
}

// CreateAppointment validates in, re-checks the interval against the current
// appointments of the date and stores a CONFIRMED appointment. The business is
// notified in the background; notification problems never fail the booking.
func (s *Service) CreateAppointment(ctx context.Context, in CreateAppointmentInput) (model.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "booking.CreateAppointment",
		trace.WithAttributes(attribute.String("booking.date", in.Date), attribute.String("booking.start_time", in.StartTime)))
	defer span.End()

	appt, err := s.createAppointment(ctx, in)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return model.Appointment{}, err
	}
	span.SetAttributes(attribute.String("booking.appointment_id", appt.ID))
	return appt, nil
}

func (s *Service) createAppointment(ctx context.Context, in CreateAppointmentInput) (model.Appointment, error) {
	name := strings.TrimSpace(in.ClientName)
	if name == "" {
		return model.Appointment{}, invalid("client_name", "is required")
	}
	if !phone.Valid(in.ClientPhone) {
		return model.Appointment{}, invalid("client_phone", "must have area code and number")
	}
	day, err := localtime.ParseDate(in.Date)
	if err != nil {
		return model.Appointment{}, invalid("date", "must be YYYY-MM-DD")
	}
	start, err := localtime.ParseClock(in.StartTime)
	if err != nil {
		return model.Appointment{}, invalid("start_time", "must be HH:mm")
	}

	svc, err := s.activeService(ctx, strings.TrimSpace(in.ServiceID))
	if err != nil {
		return model.Appointment{}, err
	}
	interval := availability.NewInterval(start, svc.DurationMinutes)

	days, err := s.store.GetAvailability(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	window, open := availability.WindowFor(days, day.Weekday())
	if !open || !window.Contains(interval) {
		return model.Appointment{}, ErrOutsideWorkingHours
	}

	now := s.now()
	today := localtime.Today(now, s.loc)
	if day.Before(today) || (day.Equal(today) && start < localtime.ClockOf(now, s.loc)) {
		return model.Appointment{}, invalid("start_time", "must not be in the past")
	}

	appt := model.Appointment{
		ID:          uuid.NewString(),
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		ClientName:  name,
		ClientPhone: phone.Normalize(in.ClientPhone),
		Date:        day.String(),
		StartTime:   interval.Start.String(),
		EndTime:     interval.End.String(),
		Status:      model.StatusConfirmed,
		CreatedAt:   now.UTC(),
	}
	if err := s.store.InsertAppointment(ctx, appt); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return model.Appointment{}, ErrSlotUnavailable
		}
		return model.Appointment{}, err
	}

	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"service_id", appt.ServiceID,
		"date", appt.Date,
		"start_time", appt.StartTime,
	)
	s.notifyBooked(ctx, appt)
	return appt, nil
}

func (s *Service) notifyBooked(ctx context.Context, appt model.Appointment) {
	if s.notifier == nil {
		return
	}
	business, err := s.store.GetBusinessConfig(ctx)
	if err != nil {
		s.logger.Warn("skip booking notification: business config unavailable", "appointment_id", appt.ID, "err", err)
		return
	}
	s.notifier.Dispatch(notify.AppointmentBooked(appt, business, s.now()))
}

func (s *Service) activeService(ctx context.Context, id string) (model.Service, error) {
	svc, err := s.store.GetService(ctx, id)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !svc.IsActive) {
		return model.Service{}, ErrServiceNotFound
	}
	return svc, err
}
