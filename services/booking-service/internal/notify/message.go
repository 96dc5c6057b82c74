package notify

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/agendou/libs/events"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/localtime"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
)

const (
	TemplateNewAppointment = "novo_agendamento"
	TemplateDailyAgenda    = "agenda_do_dia"
	Language               = "pt_BR"
)

// AppointmentBooked tells the business about a new booking. Body parameters are the
// client name, service name, date as DD/MM/YYYY and start time.
func AppointmentBooked(appt model.Appointment, business model.BusinessConfig, now time.Time) events.Notification {
	date := appt.Date
	if d, err := localtime.ParseDate(appt.Date); err == nil {
		date = d.BR()
	}
	return events.Notification{
		EventID:    uuid.NewString(),
		Type:       events.TypeAppointmentBooked,
		To:         business.Phone,
		Template:   TemplateNewAppointment,
		Language:   Language,
		Params:     []string{appt.ClientName, appt.ServiceName, date, appt.StartTime},
		OccurredAt: now,
	}
}

// DailyAgenda summarizes a day for the business: date, number of appointments and the
// first start time ("-" when the day is empty).
func DailyAgenda(business model.BusinessConfig, date localtime.Date, count int, first string, now time.Time) events.Notification {
	if first == "" {
		first = "-"
	}
	return events.Notification{
		EventID:    uuid.NewString(),
		Type:       events.TypeDailyAgenda,
		To:         business.Phone,
		Template:   TemplateDailyAgenda,
		Language:   Language,
		Params:     []string{date.BR(), strconv.Itoa(count), first},
		OccurredAt: now,
	}
}
