package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage"
	"github.com/shopspring/decimal"
)

const serviceColumns = `id::text, name, description, duration_minutes, price::text, is_active, created_at`

func scanService(row pgx.Row) (model.Service, error) {
	var svc model.Service
	var price string
	if err := row.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.DurationMinutes, &price, &svc.IsActive, &svc.CreatedAt); err != nil {
		return model.Service{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return model.Service{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	svc.Price = p
	return svc, nil
}

func (s *Store) ListServices(ctx context.Context, activeOnly bool) ([]model.Service, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE is_active OR NOT $1
		ORDER BY created_at ASC, name ASC
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (s *Store) GetService(ctx context.Context, id string) (model.Service, error) {
	if !validID(id) {
		return model.Service{}, storage.ErrNotFound
	}
	svc, err := scanService(s.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	return svc, translate(err)
}

func (s *Store) CreateService(ctx context.Context, svc model.Service) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO services (id, name, description, duration_minutes, price, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
	`, svc.ID, svc.Name, svc.Description, svc.DurationMinutes, svc.Price.String(), svc.IsActive, svc.CreatedAt)
	return err
}

func (s *Store) UpdateService(ctx context.Context, svc model.Service) error {
	if !validID(svc.ID) {
		return storage.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE services
		SET name = $2, description = $3, duration_minutes = $4, price = $5::numeric, is_active = $6
		WHERE id = $1
	`, svc.ID, svc.Name, svc.Description, svc.DurationMinutes, svc.Price.String(), svc.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) GetAvailability(ctx context.Context) ([]model.Availability, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT day_of_week, start_time, end_time, is_active
		FROM availability
		ORDER BY day_of_week ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Availability
	for rows.Next() {
		var d model.Availability
		var day int16
		if err := rows.Scan(&day, &d.StartTime, &d.EndTime, &d.IsActive); err != nil {
			return nil, err
		}
		d.DayOfWeek = int(day)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) ReplaceAvailability(ctx context.Context, days []model.Availability) error {
	return s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM availability`); err != nil {
			return err
		}
		for _, d := range days {
			if _, err := tx.Exec(ctx, `
				INSERT INTO availability (day_of_week, start_time, end_time, is_active)
				VALUES ($1, $2, $3, $4)
			`, d.DayOfWeek, d.StartTime, d.EndTime, d.IsActive); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetBusinessConfig(ctx context.Context) (model.BusinessConfig, error) {
	var cfg model.BusinessConfig
	err := s.pool.QueryRow(ctx, `SELECT name, phone FROM business_config WHERE id = 1`).Scan(&cfg.Name, &cfg.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.DefaultBusinessConfig(), nil
	}
	return cfg, err
}

func (s *Store) SaveBusinessConfig(ctx context.Context, cfg model.BusinessConfig) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO business_config (id, name, phone) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone
	`, cfg.Name, cfg.Phone)
	return err
}
