package schedule

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks a bad hour, minute, weekday or timezone.
// A build fails on it before any external query is issued.
var ErrInvalidInput = errors.New("invalid input")

// TimeOfDay is an hour/minute pair independent of any calendar date
type TimeOfDay struct {
	Hour   int
	Minute int
}

// NewTimeOfDay validates hour in [0,23] and minute in [0,59]
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if err := validateClock(hour, minute); err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseTimeOfDay parses "HH:MM" (24-hour clock)
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	var rest string
	n, _ := fmt.Sscanf(s, "%d:%d%s", &h, &m, &rest)
	if n != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: time %q is not in HH:MM format", ErrInvalidInput, s)
	}
	return NewTimeOfDay(h, m)
}

// Valid reports whether the hour and minute are in range
func (t TimeOfDay) Valid() bool {
	return validateClock(t.Hour, t.Minute) == nil
}

// Minutes returns minutes since midnight
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return FormatClock12(t.Hour, t.Minute)
}

func validateClock(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%w: hour %d out of range 0-23", ErrInvalidInput, hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("%w: minute %d out of range 0-59", ErrInvalidInput, minute)
	}
	return nil
}
