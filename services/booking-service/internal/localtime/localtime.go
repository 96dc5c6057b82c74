// Package localtime handles the business's wall-clock values: "HH:mm" times of day
// and "YYYY-MM-DD" dates. Neither format carries a zone; the business location is only
// consulted to decide what today and now mean.
package localtime

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout   = "2006-01-02"
	BRDateLayout = "02/01/2006"

	MinutesPerDay = 24 * 60
)

var (
	ErrInvalidClock = errors.New("time must be HH:mm")
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
)

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock accepts only zero-padded 24h "HH:mm".
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidClock
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, ErrInvalidClock
	}
	return Clock(h*60 + m), nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

func (c Clock) Minutes() int { return int(c) }

// String formats c as "HH:mm". Values past midnight are not wrapped.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Date is a calendar day with no zone attached.
type Date struct {
	t time.Time
}

func ParseDate(s string) (Date, error) {
	if len(s) != len(DateLayout) {
		return Date{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{t: t}, nil
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string { return d.t.Format(DateLayout) }

// BR formats d as DD/MM/YYYY.
func (d Date) BR() string { return d.t.Format(BRDateLayout) }

func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) IsZero() bool { return d.t.IsZero() }

// Time returns midnight UTC of d, the form stored in DATE columns.
func (d Date) Time() time.Time { return d.t }

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today is the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) Date {
	return DateOf(now.In(loc))
}

// ClockOf is the wall-clock minute of now in loc; seconds are truncated.
func ClockOf(now time.Time, loc *time.Location) Clock {
	n := now.In(loc)
	return Clock(n.Hour()*60 + n.Minute())
}
