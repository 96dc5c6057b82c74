package storage

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/md-rashed-zaman/agendou/libs/db"
)

//go:embed schema.sql
var schema string

const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Delivery is one attempt to deliver a notification event.
type Delivery struct {
	EventID     string
	EventType   string
	Recipient   string
	Template    string
	Params      []string
	Status      string
	ErrorReason string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (r *Repository) Record(ctx context.Context, d Delivery) error {
	params := d.Params
	if params == nil {
		params = []string{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO notification_deliveries (event_id, event_type, recipient, template, params, status, error_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, d.EventID, d.EventType, d.Recipient, d.Template, raw, d.Status, d.ErrorReason)
	return err
}
