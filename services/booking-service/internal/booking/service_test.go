package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/md-rashed-zaman/agendou/libs/events"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/storage/memory"
	"github.com/shopspring/decimal"
)

// 2024-01-15 is a Monday.
const monday = "2024-01-15"

type fakeNotifier struct {
	mu  sync.Mutex
	got []events.Notification
}

func (n *fakeNotifier) Dispatch(e events.Notification) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, e)
	return true
}

type fixture struct {
	svc      *Service
	store    *memory.Store
	notifier *fakeNotifier
	service  model.Service
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	service := model.Service{
		ID: "svc-30", Name: "Corte de Cabelo", DurationMinutes: 30,
		Price: decimal.NewFromInt(40), IsActive: true, CreatedAt: now,
	}
	store := memory.New(service)
	n := &fakeNotifier{}
	svc := NewService(store, n, slog.New(slog.NewJSONHandler(io.Discard, nil)), Config{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
	return &fixture{svc: svc, store: store, notifier: n, service: service}
}

func (f *fixture) setWeek(t *testing.T, days ...model.Availability) {
	t.Helper()
	week := storage.DefaultAvailability()
	for i := range week {
		week[i].IsActive = false
	}
	for _, d := range days {
		week[d.DayOfWeek] = d
	}
	if _, err := f.svc.UpdateAvailability(context.Background(), week); err != nil {
		t.Fatalf("UpdateAvailability: %v", err)
	}
}

func (f *fixture) book(t *testing.T, serviceID, date, start string) (model.Appointment, error) {
	t.Helper()
	return f.svc.CreateAppointment(context.Background(), CreateAppointmentInput{
		ServiceID: serviceID, ClientName: "Ana Souza", ClientPhone: "(11) 98888-7777",
		Date: date, StartTime: start,
	})
}

func slotTimes(slots []model.TimeSlot) string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Time
	}
	return strings.Join(out, ",")
}

func at(date, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func TestGetAvailableSlotsScenario(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	f.setWeek(t, model.Availability{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsActive: true})
	if _, err := f.book(t, f.service.ID, monday, "10:00"); err != nil {
		t.Fatalf("book: %v", err)
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), monday, f.service.ID)
	if err != nil {
		t.Fatalf("GetAvailableSlots: %v", err)
	}
	if got := slotTimes(slots); got != "09:00,09:30,10:30,11:00,11:30" {
		t.Fatalf("unexpected slots %s", got)
	}
	for _, s := range slots {
		if !s.Available {
			t.Fatalf("slot %s should be marked available", s.Time)
		}
	}
}

func TestGetAvailableSlotsClosedDay(t *testing.T) {
	f := newFixture(t, at("2024-01-10", "08:00"))
	f.setWeek(t, model.Availability{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsActive: true})

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2024-01-14", f.service.ID)
	if err != nil {
		t.Fatalf("closed day must not error: %v", err)
	}
	if slots == nil || len(slots) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", slots)
	}
}

func TestGetAvailableSlotsExcludesPastToday(t *testing.T) {
	f := newFixture(t, at(monday, "10:10"))
	f.setWeek(t, model.Availability{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsActive: true})

	slots, _ := f.svc.GetAvailableSlots(context.Background(), monday, f.service.ID)
	if got := slotTimes(slots); got != "10:30,11:00,11:30" {
		t.Fatalf("unexpected slots %s", got)
	}

	// Tomorrow is unaffected by the current time.
	slots, _ = f.svc.GetAvailableSlots(context.Background(), "2024-01-16", f.service.ID)
	if len(slots) != 0 {
		t.Fatalf("tuesday is closed in this week, got %v", slots)
	}
}

func TestCurrentMinuteSlotStaysOpen(t *testing.T) {
	f := newFixture(t, at(monday, "09:00").Add(30*time.Second))
	f.setWeek(t, model.Availability{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsActive: true})

	slots, _ := f.svc.GetAvailableSlots(context.Background(), monday, f.service.ID)
	if got := slotTimes(slots); got != "09:00,09:30" {
		t.Fatalf("seconds must not close the current minute, got %s", got)
	}
	if _, err := f.book(t, f.service.ID, monday, "09:00"); err != nil {
		t.Fatalf("listed slot must be bookable: %v", err)
	}
}

func TestGetAvailableSlotsUsesBusinessLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	f := newFixture(t, time.Date(2024, 1, 15, 12, 40, 0, 0, time.UTC)) // 09:40 in BRT
	f.svc.loc = loc
	f.setWeek(t, model.Availability{DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00", IsActive: true})

	slots, _ := f.svc.GetAvailableSlots(context.Background(), monday, f.service.ID)
	if got := slotTimes(slots); got != "10:00,10:30" {
		t.Fatalf("unexpected slots %s", got)
	}
}

func TestGetAvailableSlotsUnknownOrInactiveService(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	ctx := context.Background()

	slots, err := f.svc.GetAvailableSlots(ctx, monday, "missing")
	if err != nil || len(slots) != 0 {
		t.Fatalf("unknown service: expected empty list, got %v (%v)", slots, err)
	}
	if err := f.svc.DeactivateService(ctx, f.service.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	slots, err = f.svc.GetAvailableSlots(ctx, monday, f.service.ID)
	if err != nil || len(slots) != 0 {
		t.Fatalf("inactive service: expected empty list, got %v (%v)", slots, err)
	}
}

func TestGetAvailableSlotsMalformedDate(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	_, err := f.svc.GetAvailableSlots(context.Background(), "15/01/2024", f.service.ID)
	var ve *ValidationError
	if !errors.Is(err, ErrValidation) || !errors.As(err, &ve) || ve.Field != "date" {
		t.Fatalf("expected date validation error, got %v", err)
	}
}

func TestCreateAppointmentDerivesEndTimeAndNotifies(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))

	appt, err := f.book(t, f.service.ID, monday, "14:00")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if appt.EndTime != "14:30" {
		t.Fatalf("expected end time 14:30, got %s", appt.EndTime)
	}
	if appt.Status != model.StatusConfirmed || appt.ServiceName != "Corte de Cabelo" {
		t.Fatalf("unexpected appointment %+v", appt)
	}
	if appt.ClientPhone != "5511988887777" {
		t.Fatalf("expected normalized phone, got %s", appt.ClientPhone)
	}

	if len(f.notifier.got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifier.got))
	}
	n := f.notifier.got[0]
	if n.To != "5511999999999" || strings.Join(n.Params, "|") != "Ana Souza|Corte de Cabelo|15/01/2024|14:00" {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newFixture(t, at(monday, "12:00"))
	ctx := context.Background()

	cases := []struct {
		name  string
		in    CreateAppointmentInput
		field string
		err   error
	}{
		{"blank name", CreateAppointmentInput{ServiceID: f.service.ID, ClientName: "  ", ClientPhone: "11988887777", Date: monday, StartTime: "14:00"}, "client_name", nil},
		{"short phone", CreateAppointmentInput{ServiceID: f.service.ID, ClientName: "Ana", ClientPhone: "98888-7777", Date: monday, StartTime: "14:00"}, "client_phone", nil},
		{"bad date", CreateAppointmentInput{ServiceID: f.service.ID, ClientName: "Ana", ClientPhone: "11988887777", Date: "2024-13-01", StartTime: "14:00"}, "date", nil},
		{"bad time", CreateAppointmentInput{ServiceID: f.service.ID, ClientName: "Ana", ClientPhone: "11988887777", Date: monday, StartTime: "2pm"}, "start_time", nil},
		{"past", CreateAppointmentInput{ServiceID: f.service.ID, ClientName: "Ana", ClientPhone: "11988887777", Date: monday, StartTime: "11:30"}, "start_time", nil},
		{"unknown service", CreateAppointmentInput{ServiceID: "nope", ClientName: "Ana", ClientPhone: "11988887777", Date: monday, StartTime: "14:00"}, "", ErrServiceNotFound},
		{"after close", CreateAppointmentInput{ServiceID: f.service.ID, ClientName: "Ana", ClientPhone: "11988887777", Date: monday, StartTime: "18:45"}, "", ErrOutsideWorkingHours},
		{"closed day", CreateAppointmentInput{ServiceID: f.service.ID, ClientName: "Ana", ClientPhone: "11988887777", Date: "2024-01-21", StartTime: "10:00"}, "", ErrOutsideWorkingHours},
	}
	for _, tc := range cases {
		_, err := f.svc.CreateAppointment(ctx, tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.err, err)
			}
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("%s: expected validation error on %s, got %v", tc.name, tc.field, err)
		}
	}

	all, _ := f.svc.ListAppointments(ctx)
	if len(all) != 0 {
		t.Fatalf("failed bookings must persist nothing, got %d", len(all))
	}
	if len(f.notifier.got) != 0 {
		t.Fatalf("failed bookings must not notify, got %d", len(f.notifier.got))
	}
}

func TestCreateAppointmentHalfOpenConflicts(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	ctx := context.Background()
	long, err := f.svc.CreateService(ctx, ServiceInput{Name: "Corte + Barba", DurationMinutes: 50, Price: decimal.NewFromInt(60)})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}

	if _, err := f.book(t, f.service.ID, monday, "09:00"); err != nil {
		t.Fatalf("book 09:00: %v", err)
	}
	if _, err := f.book(t, long.ID, monday, "09:29"); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("09:29 must conflict, got %v", err)
	}
	if _, err := f.book(t, long.ID, monday, "09:30"); err != nil {
		t.Fatalf("09:30 must not conflict: %v", err)
	}
	if _, err := f.book(t, f.service.ID, monday, "10:00"); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("10:00 overlaps 09:30-10:20, got %v", err)
	}
}

func TestConcurrentBookingsAdmitOne(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	ctx := context.Background()
	long, _ := f.svc.CreateService(ctx, ServiceInput{Name: "Corte + Barba", DurationMinutes: 50, Price: decimal.NewFromInt(60)})

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, conflicts := 0, 0
	for i := 0; i < 40; i++ {
		serviceID := f.service.ID
		if i%2 == 1 {
			serviceID = long.ID
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.book(t, serviceID, monday, "15:00")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrSlotUnavailable):
				conflicts++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()
	if succeeded != 1 || conflicts != 39 {
		t.Fatalf("expected 1 success and 39 conflicts, got %d and %d", succeeded, conflicts)
	}
}

func TestEveryListedSlotIsBookable(t *testing.T) {
	now := at(monday, "08:00")
	fresh := newFixture(t, now)
	if _, err := fresh.book(t, fresh.service.ID, monday, "10:00"); err != nil {
		t.Fatalf("book: %v", err)
	}
	slots, _ := fresh.svc.GetAvailableSlots(context.Background(), monday, fresh.service.ID)
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}

	for _, s := range slots {
		f := newFixture(t, now)
		if _, err := f.book(t, f.service.ID, monday, "10:00"); err != nil {
			t.Fatalf("book: %v", err)
		}
		if _, err := f.book(t, f.service.ID, monday, s.Time); err != nil {
			t.Fatalf("listed slot %s not bookable: %v", s.Time, err)
		}
	}
}

func TestCancellationFreesSlot(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	ctx := context.Background()

	appt, err := f.book(t, f.service.ID, monday, "11:00")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	slots, _ := f.svc.GetAvailableSlots(ctx, monday, f.service.ID)
	if strings.Contains(slotTimes(slots), "11:00") {
		t.Fatal("booked slot must not be listed")
	}

	if _, err := f.svc.UpdateAppointmentStatus(ctx, appt.ID, "CANCELLED"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	slots, _ = f.svc.GetAvailableSlots(ctx, monday, f.service.ID)
	if !strings.Contains(slotTimes(slots), "11:00") {
		t.Fatalf("cancelled slot must be listed again, got %s", slotTimes(slots))
	}

	if _, err := f.book(t, f.service.ID, monday, "11:00"); err != nil {
		t.Fatalf("rebook: %v", err)
	}
	if _, err := f.svc.UpdateAppointmentStatus(ctx, appt.ID, "CONFIRMED"); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("reactivating over a new booking must fail, got %v", err)
	}
}

func TestUpdateAppointmentStatus(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	ctx := context.Background()
	appt, _ := f.book(t, f.service.ID, monday, "09:00")

	for _, bad := range []string{"DONE", "cancelled", " CONFIRMED", ""} {
		if _, err := f.svc.UpdateAppointmentStatus(ctx, appt.ID, bad); !errors.Is(err, ErrValidation) {
			t.Fatalf("status %q: expected validation error, got %v", bad, err)
		}
	}
	if _, err := f.svc.UpdateAppointmentStatus(ctx, "missing", "PENDING"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !errors.Is(ErrAppointmentNotFound, ErrNotFound) {
		t.Fatal("ErrAppointmentNotFound must match ErrNotFound")
	}

	for _, st := range []string{"PENDING", "CANCELLED", "CONFIRMED"} {
		got, err := f.svc.UpdateAppointmentStatus(ctx, appt.ID, st)
		if err != nil || string(got.Status) != st {
			t.Fatalf("transition to %s: %+v (%v)", st, got, err)
		}
	}
	history, err := f.svc.ListStatusHistory(ctx, appt.ID)
	if err != nil || len(history) != 3 {
		t.Fatalf("expected 3 status changes, got %v (%v)", history, err)
	}
	if history[0].From != model.StatusConfirmed || history[2].To != model.StatusConfirmed {
		t.Fatalf("unexpected history %+v", history)
	}

	if err := f.svc.DeleteAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.ListStatusHistory(ctx, appt.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestServiceEditsKeepAppointmentSnapshot(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	ctx := context.Background()
	appt, _ := f.book(t, f.service.ID, monday, "09:00")

	_, err := f.svc.UpdateService(ctx, f.service.ID, ServiceInput{Name: "Corte Premium", DurationMinutes: 60, Price: decimal.NewFromInt(80)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	all, _ := f.svc.ListAppointments(ctx)
	if all[0].ID != appt.ID || all[0].ServiceName != "Corte de Cabelo" || all[0].EndTime != "09:30" {
		t.Fatalf("appointment changed with catalog edit: %+v", all[0])
	}
}

func TestCatalogValidationAndDeactivation(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	ctx := context.Background()

	bad := []ServiceInput{
		{Name: "", DurationMinutes: 30},
		{Name: "X", DurationMinutes: 0},
		{Name: "X", DurationMinutes: 30, Price: decimal.NewFromInt(-1)},
	}
	for _, in := range bad {
		if _, err := f.svc.CreateService(ctx, in); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}

	if err := f.svc.DeactivateService(ctx, f.service.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active, _ := f.svc.ListServices(ctx)
	all, _ := f.svc.ListAllServices(ctx)
	if len(active) != 0 || len(all) != 1 {
		t.Fatalf("expected 0 active and 1 total, got %d and %d", len(active), len(all))
	}
	if _, err := f.book(t, f.service.ID, monday, "09:00"); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("inactive service must not be bookable, got %v", err)
	}
	if err := f.svc.DeactivateService(ctx, "missing"); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateAvailabilityValidation(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	ctx := context.Background()

	week := storage.DefaultAvailability()
	if _, err := f.svc.UpdateAvailability(ctx, week[:6]); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected error for 6 days, got %v", err)
	}

	dup := storage.DefaultAvailability()
	dup[6].DayOfWeek = 5
	if _, err := f.svc.UpdateAvailability(ctx, dup); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected error for duplicate weekday, got %v", err)
	}

	inverted := storage.DefaultAvailability()
	inverted[1].StartTime, inverted[1].EndTime = "19:00", "09:00"
	if _, err := f.svc.UpdateAvailability(ctx, inverted); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected error for inverted window, got %v", err)
	}

	// Inverted times are fine on a closed day.
	closed := storage.DefaultAvailability()
	closed[0].StartTime, closed[0].EndTime = "18:00", "09:00"
	if _, err := f.svc.UpdateAvailability(ctx, closed); err != nil {
		t.Fatalf("closed day should accept any well formed times: %v", err)
	}

	got, _ := f.svc.GetAvailability(ctx)
	if len(got) != 7 || got[0].StartTime != "18:00" {
		t.Fatalf("unexpected availability %+v", got)
	}
}

func TestUpdateBusinessConfig(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	ctx := context.Background()

	if _, err := f.svc.UpdateBusinessConfig(ctx, model.BusinessConfig{Name: "", Phone: "11999999999"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected name validation error, got %v", err)
	}
	if _, err := f.svc.UpdateBusinessConfig(ctx, model.BusinessConfig{Name: "Barbearia", Phone: "123"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected phone validation error, got %v", err)
	}
	cfg, err := f.svc.UpdateBusinessConfig(ctx, model.BusinessConfig{Name: " Barbearia do Zé ", Phone: "(21) 3333-4444"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cfg.Name != "Barbearia do Zé" || cfg.Phone != "552133334444" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	stored, _ := f.svc.GetBusinessConfig(ctx)
	if stored != cfg {
		t.Fatalf("expected stored config %+v, got %+v", cfg, stored)
	}
}

func TestStatsUsesFullCatalog(t *testing.T) {
	f := newFixture(t, at(monday, "08:00"))
	ctx := context.Background()

	if _, err := f.book(t, f.service.ID, monday, "09:00"); err != nil {
		t.Fatalf("book: %v", err)
	}
	if err := f.svc.DeactivateService(ctx, f.service.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	d, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if !d.TotalRevenue.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("deactivated service must still price past bookings, got %s", d.TotalRevenue)
	}
	if d.ActiveServices != 0 || d.TotalAppointments != 1 || d.ByWeekday[1] != 1 {
		t.Fatalf("unexpected dashboard %+v", d)
	}
}
