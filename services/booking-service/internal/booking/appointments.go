package booking

import (
	"context"
	"errors"

	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/stats"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage"
)

func (s *Service) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	appts, err := s.store.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	return appts, nil
}

// UpdateAppointmentStatus allows any transition between the three statuses. Moving a
// cancelled appointment back fails with ErrSlotUnavailable if its slot was rebooked.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, id, status string) (model.Appointment, error) {
	st, ok := model.ParseStatus(status)
	if !ok {
		return model.Appointment{}, invalid("status", "must be PENDING, CONFIRMED or CANCELLED")
	}
	appt, err := s.store.UpdateAppointmentStatus(ctx, id, st, s.now().UTC())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return model.Appointment{}, ErrAppointmentNotFound
	case errors.Is(err, storage.ErrConflict):
		return model.Appointment{}, ErrSlotUnavailable
	case err != nil:
		return model.Appointment{}, err
	}
	s.logger.Info("appointment status updated", "appointment_id", id, "status", st)
	return appt, nil
}

func (s *Service) ListStatusHistory(ctx context.Context, id string) ([]model.StatusChange, error) {
	changes, err := s.store.ListStatusChanges(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if changes == nil {
		changes = []model.StatusChange{}
	}
	return changes, nil
}

// DeleteAppointment removes the record for good. Cancelling is the usual way to free a slot.
func (s *Service) DeleteAppointment(ctx context.Context, id string) error {
	err := s.store.DeleteAppointment(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrAppointmentNotFound
	}
	if err != nil {
		return err
	}
	s.logger.Info("appointment deleted", "appointment_id", id)
	return nil
}

// Stats summarizes every appointment against the full catalog, deactivated services included.
func (s *Service) Stats(ctx context.Context) (stats.Dashboard, error) {
	appts, err := s.store.ListAppointments(ctx)
	if err != nil {
		return stats.Dashboard{}, err
	}
	services, err := s.store.ListServices(ctx, false)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.Summarize(appts, services), nil
}
