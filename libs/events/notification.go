// Package events holds the payloads exchanged between services over Kafka.
package events

import (
	"time"

	"github.com/md-rashed-zaman/agendou/libs/whatsapp"
)

const (
	TopicNotifications = "booking.notifications.v1"

	TypeAppointmentBooked = "booking.appointment.booked.v1"
	TypeDailyAgenda       = "booking.agenda.digest.v1"
)

// Notification asks for one template message to be delivered to To.
type Notification struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	To         string    `json:"to"`
	Template   string    `json:"template"`
	Language   string    `json:"language"`
	Params     []string  `json:"params"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (n Notification) WhatsAppTemplate() whatsapp.Template {
	return whatsapp.Template{Name: n.Template, Language: n.Language, BodyParams: n.Params}
}
