package schedule

import (
	"fmt"
	"time"

	"github.com/username/traffic-heatmap-planner/pkg/dateutil"
)

// NextOccurrence returns the soonest timestamp strictly after now that falls
// on day at hour:minute in loc.
//
// A candidate equal to now is treated as already passed, so calling it at
// exactly the target moment yields the occurrence one week later. The week
// is added on the calendar, so the wall clock survives DST changes; a wall
// time inside a DST gap is normalised by time.Date.
func NextOccurrence(now time.Time, day Weekday, hour, minute int, loc *time.Location) (time.Time, error) {
	if !day.Valid() {
		return time.Time{}, fmt.Errorf("%w: weekday %d out of range", ErrInvalidInput, int(day))
	}
	if err := validateClock(hour, minute); err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		return time.Time{}, fmt.Errorf("%w: nil location", ErrInvalidInput)
	}

	now = now.In(loc)
	daysAhead := ((int(day)-int(WeekdayOf(now)))%daysPerWeek + daysPerWeek) % daysPerWeek

	candidate := dateutil.AtClock(dateutil.ShiftDays(now, daysAhead), hour, minute)
	if !candidate.After(now) {
		// Rebuild from the calendar date; candidate may have been moved out of a DST gap
		candidate = dateutil.AtClock(dateutil.ShiftDays(now, daysAhead+daysPerWeek), hour, minute)
	}

	return candidate, nil
}

// LoadLocation resolves an IANA timezone name. Whether to fall back to a
// default zone on failure is up to the caller.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty timezone", ErrInvalidInput)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q: %v", ErrInvalidInput, name, err)
	}
	return loc, nil
}

// Resolver computes next occurrences against a clock in a fixed location
type Resolver struct {
	Location *time.Location
	Now      func() time.Time
}

// NewResolver creates a Resolver for the named timezone using the wall clock
func NewResolver(tzName string) (*Resolver, error) {
	loc, err := LoadLocation(tzName)
	if err != nil {
		return nil, err
	}
	return &Resolver{Location: loc, Now: time.Now}, nil
}

// Next returns the next occurrence of day at t after the resolver's current time
func (r *Resolver) Next(day Weekday, t TimeOfDay) (time.Time, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return NextOccurrence(now(), day, t.Hour, t.Minute, r.Location)
}
