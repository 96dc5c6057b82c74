package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultBusinessConfig is used until the admin saves one.
func DefaultBusinessConfig() model.BusinessConfig {
	return model.BusinessConfig{Name: "Minha Barbearia", Phone: "5511999999999"}
}

// DefaultAvailability is the weekly schedule of a fresh store: closed on Sunday.
func DefaultAvailability() []model.Availability {
	return []model.Availability{
		{DayOfWeek: 0, StartTime: "09:00", EndTime: "18:00", IsActive: false},
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "19:00", IsActive: true},
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "19:00", IsActive: true},
		{DayOfWeek: 3, StartTime: "09:00", EndTime: "19:00", IsActive: true},
		{DayOfWeek: 4, StartTime: "09:00", EndTime: "19:00", IsActive: true},
		{DayOfWeek: 5, StartTime: "09:00", EndTime: "20:00", IsActive: true},
		{DayOfWeek: 6, StartTime: "09:00", EndTime: "16:00", IsActive: true},
	}
}

func DemoServices(now time.Time) []model.Service {
	mk := func(name, desc string, minutes int, price int64) model.Service {
		return model.Service{
			ID:              uuid.NewString(),
			Name:            name,
			Description:     desc,
			DurationMinutes: minutes,
			Price:           decimal.NewFromInt(price),
			IsActive:        true,
			CreatedAt:       now,
		}
	}
	return []model.Service{
		mk("Corte de Cabelo", "Corte masculino tradicional ou moderno", 30, 40),
		mk("Barba Completa", "Barba feita com toalha quente e navalha", 30, 30),
		mk("Corte + Barba", "Combo completo de corte e barba", 50, 60),
	}
}

// SeedServices inserts the demo catalog when no service exists yet.
// It reports how many services were created.
func SeedServices(ctx context.Context, repo ServiceRepository, now time.Time) (int, error) {
	existing, err := repo.ListServices(ctx, false)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	demo := DemoServices(now)
	for _, svc := range demo {
		if err := repo.CreateService(ctx, svc); err != nil {
			return 0, err
		}
	}
	return len(demo), nil
}
