package availability

import (
	"time"

	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/localtime"
	"github.com/md-rashed-zaman/agendou/services/booking-service/internal/model"
)

// DefaultStep is the stride between candidate slot starts, independent of service duration.
const DefaultStep = 30

// Interval is a half-open [Start, End) span of one day.
type Interval struct {
	Start localtime.Clock
	End   localtime.Clock
}

func NewInterval(start localtime.Clock, durationMinutes int) Interval {
	return Interval{Start: start, End: start.Add(durationMinutes)}
}

// Overlaps reports whether a and b share any minute. Touching endpoints do not overlap.
// Slot listing and booking admission both go through this predicate.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && a.End > b.Start
}

func Conflicts(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(candidate, b) {
			return true
		}
	}
	return false
}

// AppointmentInterval parses the stored start and end of a.
func AppointmentInterval(a model.Appointment) (Interval, error) {
	start, err := localtime.ParseClock(a.StartTime)
	if err != nil {
		return Interval{}, err
	}
	end, err := localtime.ParseClock(a.EndTime)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}

// BusyIntervals returns the intervals held by appts, skipping CANCELLED ones and the
// appointment with id exclude (if any).
func BusyIntervals(appts []model.Appointment, exclude string) []Interval {
	busy := make([]Interval, 0, len(appts))
	for _, a := range appts {
		if a.Status == model.StatusCancelled || (exclude != "" && a.ID == exclude) {
			continue
		}
		iv, err := AppointmentInterval(a)
		if err != nil {
			continue
		}
		busy = append(busy, iv)
	}
	return busy
}

// Window is a day's opening hours.
type Window struct {
	Open  localtime.Clock
	Close localtime.Clock
}

func (w Window) Contains(iv Interval) bool {
	return iv.Start >= w.Open && iv.End <= w.Close
}

// WindowFor returns the active window of weekday. Missing, inactive or malformed
// records mean the business is closed.
func WindowFor(days []model.Availability, weekday time.Weekday) (Window, bool) {
	for _, d := range days {
		if d.DayOfWeek != int(weekday) {
			continue
		}
		if !d.IsActive {
			return Window{}, false
		}
		open, err := localtime.ParseClock(d.StartTime)
		if err != nil {
			return Window{}, false
		}
		closeAt, err := localtime.ParseClock(d.EndTime)
		if err != nil || closeAt <= open {
			return Window{}, false
		}
		return Window{Open: open, Close: closeAt}, true
	}
	return Window{}, false
}

// GenerateSlots walks w from Open in step increments and returns, in ascending order,
// every start whose [start, start+duration) fits before Close, overlaps nothing in busy,
// and is not before notBefore.
func GenerateSlots(w Window, duration, step int, busy []Interval, notBefore localtime.Clock) []localtime.Clock {
	if duration <= 0 || step <= 0 {
		return nil
	}
	var slots []localtime.Clock
	for start := w.Open; start.Add(duration) <= w.Close; start = start.Add(step) {
		if start < notBefore {
			continue
		}
		if !Conflicts(NewInterval(start, duration), busy) {
			slots = append(slots, start)
		}
	}
	return slots
}
