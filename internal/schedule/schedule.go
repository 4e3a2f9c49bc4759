package schedule

import (
	"errors"
	"time"

	"terminbook/internal/domain"
)

var ErrInvalidRange = errors.New("invalid slot range")

// Calendar holds the business rules for bookable days and times. The current
// policy is fixed: weekday-only, 13:00-16:00 in 15-minute steps, 5 days shown.
type Calendar struct {
	DaysShown       int
	StartTime       string
	EndTime         string
	IntervalMinutes int
	ClosedWeekdays  [2]time.Weekday
}

func Default() Calendar {
	return Calendar{
		DaysShown:       5,
		StartTime:       "13:00",
		EndTime:         "16:00",
		IntervalMinutes: 15,
		ClosedWeekdays:  [2]time.Weekday{time.Saturday, time.Sunday},
	}
}

func (c Calendar) closed(w time.Weekday) bool {
	return w == c.ClosedWeekdays[0] || w == c.ClosedWeekdays[1]
}

// NextBookableDays returns the next count calendar dates starting at from,
// skipping the closed weekdays. Always terminates: every 7-day window holds
// at least five open days.
func (c Calendar) NextBookableDays(count int, from time.Time) []time.Time {
	days := make([]time.Time, 0, count)
	cur := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for len(days) < count {
		if !c.closed(cur.Weekday()) {
			days = append(days, cur)
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return days
}

// GenerateSlots produces the ordered HH:mm slot values in the half-open
// interval [start, end), stepping by interval minutes.
func GenerateSlots(startTime, endTime string, intervalMinutes int) ([]string, error) {
	if intervalMinutes <= 0 {
		return nil, ErrInvalidRange
	}
	start, err := time.Parse(domain.TimeLayout, startTime)
	if err != nil {
		return nil, ErrInvalidRange
	}
	end, err := time.Parse(domain.TimeLayout, endTime)
	if err != nil {
		return nil, ErrInvalidRange
	}

	slots := make([]string, 0)
	for cur := start; cur.Before(end); cur = cur.Add(time.Duration(intervalMinutes) * time.Minute) {
		slots = append(slots, cur.Format(domain.TimeLayout))
	}
	return slots, nil
}

// Slots applies the calendar's own time window.
func (c Calendar) Slots() ([]string, error) {
	return GenerateSlots(c.StartTime, c.EndTime, c.IntervalMinutes)
}
