package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/localtime"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage"
)

const appointmentColumns = `id::text, service_id::text, service_name, client_name, client_phone,
	date, start_minute, end_minute, status, created_at`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	var date time.Time
	var start, end int
	var status string
	if err := row.Scan(&a.ID, &a.ServiceID, &a.ServiceName, &a.ClientName, &a.ClientPhone,
		&date, &start, &end, &status, &a.CreatedAt); err != nil {
		return model.Appointment{}, err
	}
	a.Date = dateOnly(date)
	a.StartTime = localtime.Clock(start).String()
	a.EndTime = localtime.Clock(end).String()
	a.Status = model.Status(status)
	return a, nil
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()
	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (s *Store) ListAppointmentsByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	return listByDate(ctx, s.pool, date)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listByDate(ctx context.Context, q querier, date string) ([]model.Appointment, error) {
	rows, err := q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE date = $1::date
		ORDER BY start_minute ASC
	`, date)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (s *Store) GetAppointment(ctx context.Context, id string) (model.Appointment, error) {
	if !validID(id) {
		return model.Appointment{}, storage.ErrNotFound
	}
	a, err := scanAppointment(s.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
	return a, translate(err)
}

// lockDate takes a transaction scoped advisory lock so writers of one date queue up.
func lockDate(ctx context.Context, tx pgx.Tx, date string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended('appointments:' || $1, 0))`, date)
	return err
}

func (s *Store) InsertAppointment(ctx context.Context, a model.Appointment) error {
	candidate, err := availability.AppointmentInterval(a)
	if err != nil {
		return err
	}
	err = s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		if err := lockDate(ctx, tx, a.Date); err != nil {
			return err
		}
		if a.Status != model.StatusCancelled {
			existing, err := listByDate(ctx, tx, a.Date)
			if err != nil {
				return err
			}
			if availability.Conflicts(candidate, availability.BusyIntervals(existing, "")) {
				return storage.ErrConflict
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO appointments
				(id, service_id, service_name, client_name, client_phone, date, start_minute, end_minute, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10)
		`, a.ID, a.ServiceID, a.ServiceName, a.ClientName, a.ClientPhone, a.Date,
			candidate.Start.Minutes(), candidate.End.Minutes(), string(a.Status), a.CreatedAt)
		return err
	})
	return translate(err)
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, status model.Status, at time.Time) (model.Appointment, error) {
	current, err := s.GetAppointment(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}

	var updated model.Appointment
	err = s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		if err := lockDate(ctx, tx, current.Date); err != nil {
			return err
		}
		cur, err := scanAppointment(tx.QueryRow(ctx, `
			SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE
		`, id))
		if err != nil {
			return err
		}
		updated = cur
		if cur.Status == status {
			return nil
		}
		if cur.Status == model.StatusCancelled {
			iv, err := availability.AppointmentInterval(cur)
			if err != nil {
				return err
			}
			existing, err := listByDate(ctx, tx, cur.Date)
			if err != nil {
				return err
			}
			if availability.Conflicts(iv, availability.BusyIntervals(existing, id)) {
				return storage.ErrConflict
			}
		}
		if _, err := tx.Exec(ctx, `UPDATE appointments SET status = $2 WHERE id = $1`, id, string(status)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO appointment_status_changes (appointment_id, from_status, to_status, changed_at)
			VALUES ($1, $2, $3, $4)
		`, id, string(cur.Status), string(status), at); err != nil {
			return err
		}
		updated.Status = status
		return nil
	})
	if err != nil {
		return model.Appointment{}, translate(err)
	}
	return updated, nil
}

func (s *Store) ListStatusChanges(ctx context.Context, id string) ([]model.StatusChange, error) {
	if _, err := s.GetAppointment(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT appointment_id::text, from_status, to_status, changed_at
		FROM appointment_status_changes
		WHERE appointment_id = $1
		ORDER BY changed_at ASC, id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StatusChange
	for rows.Next() {
		var c model.StatusChange
		var from, to string
		if err := rows.Scan(&c.AppointmentID, &from, &to, &c.ChangedAt); err != nil {
			return nil, err
		}
		c.From, c.To = model.Status(from), model.Status(to)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
