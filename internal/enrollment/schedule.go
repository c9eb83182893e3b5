package enrollment

import (
	"fmt"
	"strings"
	"time"
)

const (
	slotLayout      = "03:04 PM"
	slotLayoutShort = "3:04 PM"
	dateLayout      = "2006-01-02"

	// SessionLength is the length of a trial lesson; the end time is always
	// the start time plus this, modulo 24 hours.
	SessionLength = 30 * time.Minute

	minutesPerDay = 24 * 60
)

// DefaultSlots returns the bookable start times: 09:00 AM through 02:00 PM
// every half hour.
func DefaultSlots() []string {
	var slots []string
	for m := 9 * 60; m <= 14*60; m += 30 {
		slots = append(slots, FormatSlot(m))
	}
	return slots
}

// ParseSlot parses a 12-hour time of day such as "09:30 AM" or "9:30 pm" and
// returns minutes since midnight.
func ParseSlot(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	t, err := time.Parse(slotLayout, s)
	if err != nil {
		t, err = time.Parse(slotLayoutShort, s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want hh:mm AM/PM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatSlot renders minutes since midnight as "hh:mm AM".
func FormatSlot(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return time.Date(2000, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format(slotLayout)
}

// EndTime returns the slot label SessionLength after start, wrapping past
// midnight: "11:30 AM" → "12:00 PM", "11:45 PM" → "12:15 AM".
func EndTime(start string) (string, error) {
	m, err := ParseSlot(start)
	if err != nil {
		return "", err
	}
	return FormatSlot(m + int(SessionLength/time.Minute)), nil
}

// NormalizeSlots parses and re-renders slot labels, dropping duplicates.
func NormalizeSlots(in []string) ([]string, error) {
	seen := make(map[int]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		m, err := ParseSlot(s)
		if err != nil {
			return nil, err
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, FormatSlot(m))
	}
	return out, nil
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// IsPastDate reports whether day falls on a calendar day strictly before now,
// both taken in loc. Today is not in the past.
func IsPastDate(day, now time.Time, loc *time.Location) bool {
	d := day.In(loc)
	n := now.In(loc)
	dy, dm, dd := d.Date()
	ny, nm, nd := n.Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, loc).Before(time.Date(ny, nm, nd, 0, 0, 0, 0, loc))
}

// Window returns the start and end instants of the lesson booked for date at
// start in loc. The end falls on the next day when the slot wraps midnight.
func Window(date, start string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	m, err := ParseSlot(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, loc)
	return from, from.Add(SessionLength), nil
}
