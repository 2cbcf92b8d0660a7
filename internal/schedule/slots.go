package schedule

import "fmt"

// TimeSlot is a labeled time of day used as a matrix column key
type TimeSlot struct {
	Label string
	Time  TimeOfDay
}

// BuildSlots emits slots from startHour:00 to endHour:00 inclusive, advancing
// by stepMinutes. No slot is ever emitted past endHour:00, so a step that does
// not divide the range leaves the last slot short of the boundary.
//
// The hour range is validated by the caller. A non-positive step yields only
// the first slot.
func BuildSlots(startHour, endHour, stepMinutes int) []TimeSlot {
	var slots []TimeSlot

	currentMinutes := startHour * 60
	endMinutes := endHour * 60

	for currentMinutes <= endMinutes {
		hour := currentMinutes / 60
		minute := currentMinutes % 60
		slots = append(slots, TimeSlot{
			Label: SlotLabel(hour, minute),
			Time:  TimeOfDay{Hour: hour, Minute: minute},
		})
		if stepMinutes <= 0 {
			break
		}
		currentMinutes += stepMinutes
	}

	return slots
}

// FormatHour12 converts a 24-hour clock hour to "12 AM", "7 AM", "12 PM", "1 PM"...
func FormatHour12(hour int) string {
	display, period := hour12(hour)
	return fmt.Sprintf("%d %s", display, period)
}

// FormatClock12 renders hour:minute on the 12-hour clock, e.g. "1:05 PM", "12:00 AM"
func FormatClock12(hour, minute int) string {
	display, period := hour12(hour)
	return fmt.Sprintf("%d:%02d %s", display, minute, period)
}

// SlotLabel is the column label of a slot: the hour label on the hour
// ("7 AM") and the full clock otherwise ("7:30 AM").
func SlotLabel(hour, minute int) string {
	if minute == 0 {
		return FormatHour12(hour)
	}
	return FormatClock12(hour, minute)
}

func hour12(hour int) (int, string) {
	switch {
	case hour == 0:
		return 12, "AM"
	case hour < 12:
		return hour, "AM"
	case hour == 12:
		return 12, "PM"
	default:
		return hour - 12, "PM"
	}
}
