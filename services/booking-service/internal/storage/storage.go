package storage

import (
	"context"
	"errors"
	"time"

	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
)

var (
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict means the appointment would overlap an active one on the same date.
	ErrConflict = errors.New("storage: conflicting appointment")
)

type ServiceRepository interface {
	ListServices(ctx context.Context, activeOnly bool) ([]model.Service, error)
	GetService(ctx context.Context, id string) (model.Service, error)
	CreateService(ctx context.Context, s model.Service) error
	UpdateService(ctx context.Context, s model.Service) error
}

type AvailabilityRepository interface {
	// GetAvailability returns the weekly hours ordered by weekday.
	GetAvailability(ctx context.Context) ([]model.Availability, error)
	ReplaceAvailability(ctx context.Context, days []model.Availability) error
}

type BusinessRepository interface {
	GetBusinessConfig(ctx context.Context) (model.BusinessConfig, error)
	SaveBusinessConfig(ctx context.Context, cfg model.BusinessConfig) error
}

type AppointmentRepository interface {
	// ListAppointments returns every appointment, newest first.
	ListAppointments(ctx context.Context) ([]model.Appointment, error)
	ListAppointmentsByDate(ctx context.Context, date string) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id string) (model.Appointment, error)
	// InsertAppointment stores a unless it overlaps an active appointment of the same
	// date, in which case it returns ErrConflict and stores nothing. Check and insert
	// are atomic per date.
	InsertAppointment(ctx context.Context, a model.Appointment) error
	// UpdateAppointmentStatus moves the appointment to status and records the change.
	// Leaving CANCELLED re-checks for overlaps under the same guarantee as insert.
	UpdateAppointmentStatus(ctx context.Context, id string, status model.Status, at time.Time) (model.Appointment, error)
	ListStatusChanges(ctx context.Context, id string) ([]model.StatusChange, error)
	DeleteAppointment(ctx context.Context, id string) error
}

type Store interface {
	ServiceRepository
	AvailabilityRepository
	BusinessRepository
	AppointmentRepository
}
