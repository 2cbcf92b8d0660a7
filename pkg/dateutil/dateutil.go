package dateutil

import "time"

// AtClock returns the given date's calendar day at hour:minute, in the date's location
func AtClock(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

// ShiftDays moves the date by n calendar days keeping the wall clock.
// Unlike Add(n*24h) the result keeps its hour/minute across DST changes.
func ShiftDays(date time.Time, n int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day()+n,
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// DaysFromMonday returns 0 for Monday through 6 for Sunday
func DaysFromMonday(date time.Time) int {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	return weekday - 1
}

// FormatISO8601 formats date to ISO 8601 format with timezone
// Example: 2025-01-15T10:00:00.000+0000
func FormatISO8601(date time.Time) string {
	return date.Format("2006-01-02T15:04:05.000-0700")
}
