package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage"
	"github.com/shopspring/decimal"
)

type ServiceInput struct {
	Name            string
	Description     string
	DurationMinutes int
	Price           decimal.Decimal
	// IsActive defaults to true on create and to the current value on update.
	IsActive *bool
}

func (in ServiceInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "is required")
	}
	if in.DurationMinutes <= 0 {
		return invalid("duration_minutes", "must be positive")
	}
	if in.Price.IsNegative() {
		return invalid("price", "must not be negative")
	}
	return nil
}

// ListServices returns the services clients can book.
func (s *Service) ListServices(ctx context.Context) ([]model.Service, error) {
	return s.listServices(ctx, true)
}

// ListAllServices includes deactivated services.
func (s *Service) ListAllServices(ctx context.Context) ([]model.Service, error) {
	return s.listServices(ctx, false)
}

func (s *Service) listServices(ctx context.Context, activeOnly bool) ([]model.Service, error) {
	out, err := s.store.ListServices(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Service{}
	}
	return out, nil
}

func (s *Service) GetService(ctx context.Context, id string) (model.Service, error) {
	svc, err := s.store.GetService(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Service{}, ErrServiceNotFound
	}
	return svc, err
}

func (s *Service) CreateService(ctx context.Context, in ServiceInput) (model.Service, error) {
	if err := in.validate(); err != nil {
		return model.Service{}, err
	}
	svc := model.Service{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		IsActive:        in.IsActive == nil || *in.IsActive,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return model.Service{}, err
	}
	s.logger.Info("service created", "service_id", svc.ID, "name", svc.Name)
	return svc, nil
}

// UpdateService changes the catalog entry only; existing appointments keep their
// service name and end time.
func (s *Service) UpdateService(ctx context.Context, id string, in ServiceInput) (model.Service, error) {
	if err := in.validate(); err != nil {
		return model.Service{}, err
	}
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return model.Service{}, err
	}
	svc.Name = strings.TrimSpace(in.Name)
	svc.Description = strings.TrimSpace(in.Description)
	svc.DurationMinutes = in.DurationMinutes
	svc.Price = in.Price
	if in.IsActive != nil {
		svc.IsActive = *in.IsActive
	}
	if err := s.store.UpdateService(ctx, svc); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Service{}, ErrServiceNotFound
		}
		return model.Service{}, err
	}
	return svc, nil
}

// DeactivateService hides the service from booking. It is never removed so past
// appointments keep a valid reference.
func (s *Service) DeactivateService(ctx context.Context, id string) error {
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return err
	}
	if !svc.IsActive {
		return nil
	}
	svc.IsActive = false
	if err := s.store.UpdateService(ctx, svc); err != nil {
		return err
	}
	s.logger.Info("service deactivated", "service_id", id)
	return nil
}
