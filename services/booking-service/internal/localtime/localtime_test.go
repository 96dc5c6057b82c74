package localtime

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	valid := map[string]Clock{"00:00": 0, "09:30": 570, "23:59": 1439}
	for in, want := range valid {
		got, err := ParseClock(in)
		if err != nil || got != want {
			t.Fatalf("ParseClock(%q) = %v, %v; want %v", in, got, err, want)
		}
		if got.String() != in {
			t.Fatalf("round trip %q -> %q", in, got.String())
		}
	}
	for _, in := range []string{"", "9:30", "09:3", "24:00", "12:60", "ab:cd", "09-30", " 09:30"} {
		if _, err := ParseClock(in); err == nil {
			t.Fatalf("ParseClock(%q) should fail", in)
		}
	}
}

func TestClockAdd(t *testing.T) {
	c, _ := ParseClock("14:00")
	if got := c.Add(30).String(); got != "14:30" {
		t.Fatalf("expected 14:30, got %s", got)
	}
	if got := c.Add(50).String(); got != "14:50" {
		t.Fatalf("expected 14:50, got %s", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Fatalf("expected Monday, got %s", d.Weekday())
	}
	if d.BR() != "15/01/2024" || d.String() != "2024-01-15" {
		t.Fatalf("unexpected formats %s %s", d.BR(), d.String())
	}
	if d.AddDays(1).String() != "2024-01-16" {
		t.Fatalf("unexpected next day %s", d.AddDays(1))
	}
	for _, in := range []string{"2024-1-15", "2024-02-30", "15/01/2024", "2024-01-15T00:00:00Z", ""} {
		if _, err := ParseDate(in); err == nil {
			t.Fatalf("ParseDate(%q) should fail", in)
		}
	}
}

func TestTodayAndClockOfUseLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2024, 1, 16, 2, 15, 42, 0, time.UTC) // 23:15 on the 15th in BRT
	if got := Today(now, loc).String(); got != "2024-01-15" {
		t.Fatalf("expected 2024-01-15, got %s", got)
	}
	if got := ClockOf(now, loc).String(); got != "23:15" {
		t.Fatalf("expected 23:15, got %s", got)
	}
}
