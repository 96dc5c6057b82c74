// Package delivery turns notification events into WhatsApp template messages.
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/agendou/libs/events"
	"github.com/md-rashed-zaman/agendou/libs/kafkax"
	"github.com/md-rashed-zaman/agendou/libs/whatsapp"
	"github.com/md-rashed-zaman/agendou/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
)

type TemplateSender interface {
	Configured() bool
	SendTemplate(ctx context.Context, to string, tmpl whatsapp.Template) error
}

type Recorder interface {
	Record(ctx context.Context, d storage.Delivery) error
}

// LogRecorder is used when no database is configured.
type LogRecorder struct {
	Logger *slog.Logger
}

func (r LogRecorder) Record(_ context.Context, d storage.Delivery) error {
	r.Logger.Info("delivery recorded", "event_id", d.EventID, "status", d.Status, "template", d.Template)
	return nil
}

type Handler struct {
	sender   TemplateSender
	recorder Recorder
	logger   *slog.Logger
}

func NewHandler(sender TemplateSender, recorder Recorder, logger *slog.Logger) *Handler {
	return &Handler{sender: sender, recorder: recorder, logger: logger}
}

// Handle delivers one message. Malformed events and permanent provider
// rejections return nil so the event is not retried; transient failures
// return the error.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var n events.Notification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		h.logger.Error("invalid notification payload", "err", err, "offset", msg.Offset)
		return nil
	}
	if n.EventID == "" {
		n.EventID = kafkax.ExtractEventMeta(msg).EventID
	}
	if n.Type == "" {
		n.Type = kafkax.HeaderValue(msg.Headers, kafkax.HeaderEventType)
	}
	if n.To == "" || n.Template == "" {
		h.logger.Error("notification missing recipient or template", "event_id", n.EventID)
		return nil
	}

	d := storage.Delivery{
		EventID:   n.EventID,
		EventType: n.Type,
		Recipient: n.To,
		Template:  n.Template,
		Params:    n.Params,
		Status:    storage.StatusSent,
	}

	var sendErr error
	if !h.sender.Configured() {
		d.Status = storage.StatusSkipped
		d.ErrorReason = whatsapp.ErrNotConfigured.Error()
	} else if sendErr = h.sender.SendTemplate(ctx, n.To, n.WhatsAppTemplate()); sendErr != nil {
		d.Status = storage.StatusFailed
		d.ErrorReason = sendErr.Error()
		h.logger.Error("whatsapp send failed", "err", sendErr, "event_id", n.EventID)
	}

	if err := h.recorder.Record(ctx, d); err != nil {
		h.logger.Error("failed to record delivery", "err", err, "event_id", n.EventID)
		return err
	}
	if sendErr != nil && retryable(sendErr) {
		return sendErr
	}

	h.logger.Info("notification processed", "event_id", n.EventID, "type", n.Type, "status", d.Status)
	return nil
}

// retryable reports whether a later attempt could succeed. Client errors
// from the API, other than rate limiting, are permanent.
func retryable(err error) bool {
	var apiErr *whatsapp.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}
