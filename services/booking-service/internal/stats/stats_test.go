package stats

import (
	"testing"

	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/shopspring/decimal"
)

func TestSummarize(t *testing.T) {
	services := []model.Service{
		{ID: "corte", Price: decimal.RequireFromString("40.50"), IsActive: true},
		{ID: "barba", Price: decimal.NewFromInt(30), IsActive: true},
		{ID: "antigo", Price: decimal.NewFromInt(99), IsActive: false},
	}
	// 2024-01-15 is a Monday, 01-16 Tuesday, 01-20 Saturday, 01-21 Sunday.
	appts := []model.Appointment{
		{ServiceID: "corte", ClientPhone: "5511988887777", Date: "2024-01-15", Status: model.StatusConfirmed},
		{ServiceID: "barba", ClientPhone: "5511988887777", Date: "2024-01-15", Status: model.StatusConfirmed},
		{ServiceID: "corte", ClientPhone: "5511977776666", Date: "2024-01-20", Status: model.StatusCancelled},
		{ServiceID: "antigo", ClientPhone: "5511966665555", Date: "2024-01-21", Status: model.StatusConfirmed},
		{ServiceID: "apagado", ClientPhone: "5511966665555", Date: "2024-01-16", Status: model.StatusConfirmed},
		{ServiceID: "corte", ClientPhone: "5511955554444", Date: "2024-01-16", Status: model.StatusPending},
	}

	d := Summarize(appts, services)

	if !d.TotalRevenue.Equal(decimal.RequireFromString("169.50")) {
		t.Fatalf("expected revenue 169.50, got %s", d.TotalRevenue)
	}
	if d.TotalAppointments != 6 {
		t.Fatalf("expected 6 appointments, got %d", d.TotalAppointments)
	}
	if d.UniqueClients != 4 {
		t.Fatalf("expected 4 unique clients, got %d", d.UniqueClients)
	}
	if d.ActiveServices != 2 {
		t.Fatalf("expected 2 active services, got %d", d.ActiveServices)
	}
	if want := [7]int{1, 2, 2, 0, 0, 0, 1}; d.ByWeekday != want {
		t.Fatalf("expected weekday counts %v, got %v", want, d.ByWeekday)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	d := Summarize(nil, nil)
	if !d.TotalRevenue.IsZero() || d.TotalAppointments != 0 || d.UniqueClients != 0 || d.ByWeekday != [7]int{} {
		t.Fatalf("expected zero dashboard, got %+v", d)
	}
}
