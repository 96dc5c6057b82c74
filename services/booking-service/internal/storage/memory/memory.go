// Package memory is the in-process Store used when no database is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage"
)

type Store struct {
	// dateLocks serializes appointment writes per date; mu guards the maps.
	dateLocks sync.Map

	mu           sync.RWMutex
	services     map[string]model.Service
	availability []model.Availability
	business     model.BusinessConfig
	appointments map[string]model.Appointment
	history      map[string][]model.StatusChange
}

var _ storage.Store = (*Store)(nil)

// New returns a store holding the default schedule and business config plus services.
func New(services ...model.Service) *Store {
	s := &Store{
		services:     make(map[string]model.Service, len(services)),
		availability: storage.DefaultAvailability(),
		business:     storage.DefaultBusinessConfig(),
		appointments: map[string]model.Appointment{},
		history:      map[string][]model.StatusChange{},
	}
	for _, svc := range services {
		s.services[svc.ID] = svc
	}
	return s
}

func (s *Store) lockDate(date string) func() {
	v, _ := s.dateLocks.LoadOrStore(date, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *Store) ListServices(_ context.Context, activeOnly bool) ([]model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Service, 0, len(s.services))
	for _, svc := range s.services {
		if activeOnly && !svc.IsActive {
			continue
		}
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetService(_ context.Context, id string) (model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return model.Service{}, storage.ErrNotFound
	}
	return svc, nil
}

func (s *Store) CreateService(_ context.Context, svc model.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
	return nil
}

func (s *Store) UpdateService(_ context.Context, svc model.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.services[svc.ID]; !ok {
		return storage.ErrNotFound
	}
	s.services[svc.ID] = svc
	return nil
}

func (s *Store) GetAvailability(context.Context) ([]model.Availability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Availability(nil), s.availability...), nil
}

func (s *Store) ReplaceAvailability(_ context.Context, days []model.Availability) error {
	sorted := append([]model.Availability(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DayOfWeek < sorted[j].DayOfWeek })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.availability = sorted
	return nil
}

func (s *Store) GetBusinessConfig(context.Context) (model.BusinessConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.business, nil
}

func (s *Store) SaveBusinessConfig(_ context.Context, cfg model.BusinessConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.business = cfg
	return nil
}

func (s *Store) ListAppointments(context.Context) ([]model.Appointment, error) {
	s.mu.RLock()
	out := make([]model.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListAppointmentsByDate(_ context.Context, date string) ([]model.Appointment, error) {
	s.mu.RLock()
	out := s.onDate(date)
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

// onDate must be called with mu held.
func (s *Store) onDate(date string) []model.Appointment {
	var out []model.Appointment
	for _, a := range s.appointments {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) GetAppointment(_ context.Context, id string) (model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return model.Appointment{}, storage.ErrNotFound
	}
	return a, nil
}

func (s *Store) InsertAppointment(_ context.Context, a model.Appointment) error {
	candidate, err := availability.AppointmentInterval(a)
	if err != nil {
		return err
	}

	unlock := s.lockDate(a.Date)
	defer unlock()

	s.mu.RLock()
	busy := availability.BusyIntervals(s.onDate(a.Date), "")
	s.mu.RUnlock()
	if a.Status != model.StatusCancelled && availability.Conflicts(candidate, busy) {
		return storage.ErrConflict
	}

	s.mu.Lock()
	s.appointments[a.ID] = a
	s.mu.Unlock()
	return nil
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, status model.Status, at time.Time) (model.Appointment, error) {
	current, err := s.GetAppointment(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}

	unlock := s.lockDate(current.Date)
	defer unlock()

	s.mu.RLock()
	current, ok := s.appointments[id]
	var busy []availability.Interval
	if ok && current.Status == model.StatusCancelled && status != model.StatusCancelled {
		busy = availability.BusyIntervals(s.onDate(current.Date), id)
	}
	s.mu.RUnlock()
	if !ok {
		return model.Appointment{}, storage.ErrNotFound
	}
	if current.Status == status {
		return current, nil
	}
	if len(busy) > 0 {
		iv, err := availability.AppointmentInterval(current)
		if err != nil {
			return model.Appointment{}, err
		}
		if availability.Conflicts(iv, busy) {
			return model.Appointment{}, storage.ErrConflict
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	change := model.StatusChange{AppointmentID: id, From: current.Status, To: status, ChangedAt: at}
	current.Status = status
	s.appointments[id] = current
	s.history[id] = append(s.history[id], change)
	return current, nil
}

func (s *Store) ListStatusChanges(_ context.Context, id string) ([]model.StatusChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.appointments[id]; !ok {
		return nil, storage.ErrNotFound
	}
	return append([]model.StatusChange(nil), s.history[id]...), nil
}

func (s *Store) DeleteAppointment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.appointments, id)
	delete(s.history, id)
	return nil
}
