package business

import (
	"fmt"
	"time"
)

// GetHoursForDay returns the configured window for a weekday, nil when closed.
func (b *BusinessHours) GetHoursForDay(weekday time.Weekday) *DayHours {
	switch weekday {
	case time.Sunday:
		return b.Sunday
	case time.Monday:
		return b.Monday
	case time.Tuesday:
		return b.Tuesday
	case time.Wednesday:
		return b.Wednesday
	case time.Thursday:
		return b.Thursday
	case time.Friday:
		return b.Friday
	case time.Saturday:
		return b.Saturday
	default:
		return nil
	}
}

// Location resolves the business timezone, falling back to UTC when the
// configured zone name is invalid.
func (p *Profile) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LocalNow returns the wall-clock time in the business timezone.
func (p *Profile) LocalNow(now time.Time) time.Time {
	return now.In(p.Location())
}

// IsOpenAt checks whether the business is open at the given instant, using
// the business's own timezone. A weekday with no configured window is closed.
func (p *Profile) IsOpenAt(t time.Time) bool {
	localTime := t.In(p.Location())

	hours := p.BusinessHours.GetHoursForDay(localTime.Weekday())
	if hours == nil {
		return false
	}

	openMinutes, err := parseClockMinutes(hours.Open)
	if err != nil {
		return false
	}
	closeMinutes, err := parseClockMinutes(hours.Close)
	if err != nil {
		return false
	}

	currentMinutes := localTime.Hour()*60 + localTime.Minute()
	return currentMinutes >= openMinutes && currentMinutes < closeMinutes
}

// OpenWindowOn returns the open/close instants for the given calendar date,
// or false when the business is closed that day.
func (p *Profile) OpenWindowOn(date time.Time) (open, close time.Time, ok bool) {
	loc := p.Location()
	local := date.In(loc)

	hours := p.BusinessHours.GetHoursForDay(local.Weekday())
	if hours == nil {
		return time.Time{}, time.Time{}, false
	}

	openClock, err := time.Parse("15:04", hours.Open)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	closeClock, err := time.Parse("15:04", hours.Close)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	open = time.Date(local.Year(), local.Month(), local.Day(), openClock.Hour(), openClock.Minute(), 0, 0, loc)
	close = time.Date(local.Year(), local.Month(), local.Day(), closeClock.Hour(), closeClock.Minute(), 0, 0, loc)
	return open, close, true
}

// HoursContext renders the weekly schedule as prompt-ready text.
func (p *Profile) HoursContext() string {
	days := []struct {
		name  string
		hours *DayHours
	}{
		{"Monday", p.BusinessHours.Monday},
		{"Tuesday", p.BusinessHours.Tuesday},
		{"Wednesday", p.BusinessHours.Wednesday},
		{"Thursday", p.BusinessHours.Thursday},
		{"Friday", p.BusinessHours.Friday},
		{"Saturday", p.BusinessHours.Saturday},
		{"Sunday", p.BusinessHours.Sunday},
	}

	out := "Business hours:\n"
	for _, d := range days {
		if d.hours == nil {
			out += fmt.Sprintf("- %s: closed\n", d.name)
			continue
		}
		out += fmt.Sprintf("- %s: %s-%s\n", d.name, d.hours.Open, d.hours.Close)
	}
	return out
}

func parseClockMinutes(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
