package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/localtime"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/phone"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage"
)

// GetAvailability always returns seven records ordered Sunday to Saturday; weekdays
// missing from storage come back closed.
func (s *Service) GetAvailability(ctx context.Context) ([]model.Availability, error) {
	stored, err := s.store.GetAvailability(ctx)
	if err != nil {
		return nil, err
	}
	week := storage.DefaultAvailability()
	for i := range week {
		week[i].IsActive = false
	}
	for _, d := range stored {
		if d.DayOfWeek >= 0 && d.DayOfWeek < len(week) {
			week[d.DayOfWeek] = d
		}
	}
	return week, nil
}

// UpdateAvailability replaces the whole week. days must hold each weekday exactly once.
func (s *Service) UpdateAvailability(ctx context.Context, days []model.Availability) ([]model.Availability, error) {
	if len(days) != 7 {
		return nil, invalid("availability", "must contain one entry per weekday")
	}
	seen := make(map[int]bool, 7)
	for i, d := range days {
		field := fmt.Sprintf("availability[%d]", i)
		if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
			return nil, invalid(field+".day_of_week", "must be between 0 and 6")
		}
		if seen[d.DayOfWeek] {
			return nil, invalid(field+".day_of_week", "is duplicated")
		}
		seen[d.DayOfWeek] = true

		start, err := localtime.ParseClock(d.StartTime)
		if err != nil {
			return nil, invalid(field+".start_time", "must be HH:mm")
		}
		end, err := localtime.ParseClock(d.EndTime)
		if err != nil {
			return nil, invalid(field+".end_time", "must be HH:mm")
		}
		if d.IsActive && start >= end {
			return nil, invalid(field+".end_time", "must be after start_time")
		}
	}

	week := append([]model.Availability(nil), days...)
	sort.Slice(week, func(i, j int) bool { return week[i].DayOfWeek < week[j].DayOfWeek })
	if err := s.store.ReplaceAvailability(ctx, week); err != nil {
		return nil, err
	}
	s.logger.Info("availability updated")
	return week, nil
}

func (s *Service) GetBusinessConfig(ctx context.Context) (model.BusinessConfig, error) {
	return s.store.GetBusinessConfig(ctx)
}

// UpdateBusinessConfig stores the phone in normalized form.
func (s *Service) UpdateBusinessConfig(ctx context.Context, cfg model.BusinessConfig) (model.BusinessConfig, error) {
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return model.BusinessConfig{}, invalid("name", "is required")
	}
	if !phone.Valid(cfg.Phone) {
		return model.BusinessConfig{}, invalid("phone", "must have country code, area code and number")
	}
	cfg.Phone = phone.Normalize(cfg.Phone)
	if err := s.store.SaveBusinessConfig(ctx, cfg); err != nil {
		return model.BusinessConfig{}, err
	}
	return cfg, nil
}
