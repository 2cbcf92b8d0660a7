package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/username/traffic-heatmap-planner/pkg/dateutil"
)

// Weekday is a day of week in Monday-first order (Monday=0 .. Sunday=6).
// The order is used both for sorting matrix rows and for offset arithmetic.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

const daysPerWeek = 7

var weekdayNames = [daysPerWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// String returns the English day name
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Valid reports whether d is one of the seven days
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// WeekdayOf returns the Monday-first weekday of t in t's location
func WeekdayOf(t time.Time) Weekday {
	return Weekday(dateutil.DaysFromMonday(t))
}

// ParseWeekday accepts a full day name or its three-letter abbreviation, case-insensitive
func ParseWeekday(s string) (Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return 0, fmt.Errorf("%w: empty weekday", ErrInvalidInput)
	}
	for i, full := range weekdayNames {
		lower := strings.ToLower(full)
		if name == lower || (len(name) == 3 && strings.HasPrefix(lower, name)) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, s)
}

// ParseWeekdays parses every name, failing on the first unknown one
func ParseWeekdays(names []string) ([]Weekday, error) {
	days := make([]Weekday, 0, len(names))
	for _, name := range names {
		day, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

// AllWeekdays returns Monday through Sunday
func AllWeekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// UniqueWeekdays drops repeated days, keeping the first occurrence order
func UniqueWeekdays(days []Weekday) []Weekday {
	seen := make(map[Weekday]bool, len(days))
	result := make([]Weekday, 0, len(days))
	for _, day := range days {
		if seen[day] {
			continue
		}
		seen[day] = true
		result = append(result, day)
	}
	return result
}

// SortWeekdays returns the distinct days in canonical Monday..Sunday order.
// The input slice is not modified.
func SortWeekdays(days []Weekday) []Weekday {
	result := UniqueWeekdays(days)
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
