package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/md-rashed-zaman/agendou/libs/events"
	"github.com/md-rashed-zaman/agendou/libs/kafkax"
	"github.com/md-rashed-zaman/agendou/libs/whatsapp"
	"github.com/segmentio/kafka-go"
)

// WhatsAppSender delivers directly through the Cloud API. When the client is not
// configured messages are skipped silently.
type WhatsAppSender struct {
	client *whatsapp.Client
	logger *slog.Logger
}

func NewWhatsAppSender(client *whatsapp.Client, logger *slog.Logger) *WhatsAppSender {
	return &WhatsAppSender{client: client, logger: logger}
}

func (s *WhatsAppSender) Name() string { return "whatsapp" }

func (s *WhatsAppSender) Send(ctx context.Context, n events.Notification) error {
	if !s.client.Configured() {
		s.logger.Debug("whatsapp not configured, skipping", "event_id", n.EventID)
		return nil
	}
	return s.client.SendTemplate(ctx, n.To, n.WhatsAppTemplate())
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSender publishes notifications for the notification-service to deliver.
type KafkaSender struct {
	writer MessageWriter
}

func NewKafkaSender(w MessageWriter) *KafkaSender {
	return &KafkaSender{writer: w}
}

func (s *KafkaSender) Name() string { return "kafka" }

func (s *KafkaSender) Send(ctx context.Context, n events.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	headers := kafkax.EventMeta{EventID: n.EventID, EventType: n.Type}.Headers()
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(n.To),
		Value:   payload,
		Headers: kafkax.InjectTraceHeaders(ctx, headers),
	})
}

// LogSender only logs; it is the default when no channel is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(_ context.Context, n events.Notification) error {
	s.logger.Info("notification", "to", n.To, "template", n.Template, "params", n.Params)
	return nil
}
