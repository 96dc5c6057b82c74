// Package postgres is the pgx-backed Store.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/agendou/libs/db"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage"
)

//go:embed schema.sql
var schema string

type Store struct {
	pool *db.Pool
}

var _ storage.Store = (*Store)(nil)

func New(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the schema and seeds the default schedule and business config
// when they are missing. It is safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		for _, d := range storage.DefaultAvailability() {
			if _, err := tx.Exec(ctx, `
				INSERT INTO availability (day_of_week, start_time, end_time, is_active)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (day_of_week) DO NOTHING
			`, d.DayOfWeek, d.StartTime, d.EndTime, d.IsActive); err != nil {
				return err
			}
		}
		cfg := storage.DefaultBusinessConfig()
		_, err := tx.Exec(ctx, `
			INSERT INTO business_config (id, name, phone) VALUES (1, $1, $2)
			ON CONFLICT (id) DO NOTHING
		`, cfg.Name, cfg.Phone)
		return err
	})
}

// IsConflict matches the exclusion constraint firing (SQLSTATE 23P01).
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return storage.ErrNotFound
	case IsConflict(err):
		return storage.ErrConflict
	default:
		return err
	}
}

// validID filters ids that cannot be UUIDs so they read as not found instead of a
// syntax error from the server.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func dateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}
