// Package stats aggregates the admin dashboard figures from appointments and the catalog.
package stats

import (
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/localtime"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/shopspring/decimal"
)

type Dashboard struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalAppointments int             `json:"total_appointments"`
	UniqueClients     int             `json:"unique_clients"`
	ActiveServices    int             `json:"active_services"`
	ByWeekday         [7]int          `json:"by_weekday"` // index 0 = Sunday
}

// Summarize computes the dashboard over every appointment regardless of status.
// Revenue sums the current catalog price of CONFIRMED appointments; appointments
// whose service no longer exists add nothing.
func Summarize(appts []model.Appointment, services []model.Service) Dashboard {
	d := Dashboard{TotalRevenue: decimal.Zero, TotalAppointments: len(appts)}

	prices := make(map[string]decimal.Decimal, len(services))
	for _, s := range services {
		prices[s.ID] = s.Price
		if s.IsActive {
			d.ActiveServices++
		}
	}

	clients := make(map[string]struct{}, len(appts))
	for _, a := range appts {
		clients[a.ClientPhone] = struct{}{}
		if a.Status == model.StatusConfirmed {
			if p, ok := prices[a.ServiceID]; ok {
				d.TotalRevenue = d.TotalRevenue.Add(p)
			}
		}
		if day, err := localtime.ParseDate(a.Date); err == nil {
			d.ByWeekday[day.Weekday()]++
		}
	}
	d.UniqueClients = len(clients)
	return d
}
