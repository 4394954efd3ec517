package utils

import (
	"time"
)

// DateLayout is the canonical calendar-date format used across the service.
const DateLayout = "2006-01-02"

// DateOnly strips the time-of-day component, keeping the date in UTC. All
// calendar-date columns store midnight UTC regardless of the user's timezone;
// the timezone only decides WHICH date a given instant falls on.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a calendar date by whole days.
func AddDays(t time.Time, days int) time.Time {
	return DateOnly(t).AddDate(0, 0, days)
}

// LocalDate resolves the calendar date for an instant in the given IANA
// timezone, normalized back to midnight UTC for storage.
func LocalDate(instant time.Time, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	local := instant.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders a calendar date for API payloads and log lines.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a canonical calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// SameDate reports whether two instants fall on the same calendar date
// after normalization.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
