package heatmap

import (
	"github.com/username/traffic-heatmap-planner/internal/schedule"
)

// Cell is one day×slot measurement. Valid is false when the query failed.
type Cell struct {
	Minutes float64
	Valid   bool
}

// Matrix holds travel times by weekday (rows, Monday..Sunday) and slot
// (columns, chronological). It is built once per request and read-only afterwards.
type Matrix struct {
	days   []schedule.Weekday
	slots  []schedule.TimeSlot
	index  map[string]int
	rows   map[schedule.Weekday][]Cell
	origin string
	dest   string
}

func newMatrix(days []schedule.Weekday, slots []schedule.TimeSlot) *Matrix {
	m := &Matrix{
		days:  schedule.SortWeekdays(days),
		slots: append([]schedule.TimeSlot(nil), slots...),
		index: make(map[string]int, len(slots)),
		rows:  make(map[schedule.Weekday][]Cell, len(days)),
	}
	for i, slot := range m.slots {
		if _, ok := m.index[slot.Label]; !ok {
			m.index[slot.Label] = i
		}
	}
	for _, day := range m.days {
		m.rows[day] = make([]Cell, len(m.slots))
	}
	return m
}

func (m *Matrix) set(day schedule.Weekday, slot int, minutes float64) {
	m.rows[day][slot] = Cell{Minutes: minutes, Valid: true}
}

// Days returns the row keys in canonical weekday order
func (m *Matrix) Days() []schedule.Weekday {
	return append([]schedule.Weekday(nil), m.days...)
}

// Slots returns the column keys in chronological order
func (m *Matrix) Slots() []schedule.TimeSlot {
	return append([]schedule.TimeSlot(nil), m.slots...)
}

// Labels returns the column labels
func (m *Matrix) Labels() []string {
	labels := make([]string, len(m.slots))
	for i, slot := range m.slots {
		labels[i] = slot.Label
	}
	return labels
}

// Route returns the origin and destination the matrix was built for
func (m *Matrix) Route() (origin, destination string) {
	return m.origin, m.dest
}

// Row returns a copy of the cells for day, or nil if the day was not selected
func (m *Matrix) Row(day schedule.Weekday) []Cell {
	row, ok := m.rows[day]
	if !ok {
		return nil
	}
	return append([]Cell(nil), row...)
}

// Cell looks a measurement up by day and slot label. The second result is
// false when the day or label is not part of the matrix.
func (m *Matrix) Cell(day schedule.Weekday, label string) (Cell, bool) {
	row, ok := m.rows[day]
	if !ok {
		return Cell{}, false
	}
	i, ok := m.index[label]
	if !ok {
		return Cell{}, false
	}
	return row[i], true
}

// Len returns the number of cells
func (m *Matrix) Len() int {
	return len(m.days) * len(m.slots)
}

// Valid returns the number of cells holding a measurement
func (m *Matrix) Valid() int {
	n := 0
	for _, row := range m.rows {
		for _, c := range row {
			if c.Valid {
				n++
			}
		}
	}
	return n
}

// Absent returns the number of cells whose query failed
func (m *Matrix) Absent() int {
	return m.Len() - m.Valid()
}

// Empty reports whether no cell holds a measurement, which callers treat as
// an overall failure of the build.
func (m *Matrix) Empty() bool {
	return m.Valid() == 0
}
