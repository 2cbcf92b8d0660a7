package heatmap

import (
	"github.com/username/traffic-heatmap-planner/internal/schedule"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CellRef points at one populated cell
type CellRef struct {
	Day     schedule.Weekday
	Slot    schedule.TimeSlot
	Minutes float64
}

// Summary describes the populated cells of a matrix
type Summary struct {
	Count   int
	Absent  int
	Mean    float64
	StdDev  float64
	Fastest CellRef
	Slowest CellRef
}

// Summarize computes statistics over valid cells. ok is false for an empty matrix.
func (m *Matrix) Summarize() (summary Summary, ok bool) {
	values, refs := m.collect(m.days)
	if len(values) == 0 {
		return Summary{Absent: m.Len()}, false
	}

	summary = Summary{
		Count:   len(values),
		Absent:  m.Len() - len(values),
		Mean:    stat.Mean(values, nil),
		Fastest: refs[floats.MinIdx(values)],
		Slowest: refs[floats.MaxIdx(values)],
	}
	if len(values) > 1 {
		summary.StdDev = stat.StdDev(values, nil)
	}
	return summary, true
}

// FastestByDay returns the quickest departure of every day with at least one
// measurement, in row order. Ties go to the earlier slot.
func (m *Matrix) FastestByDay() []CellRef {
	var result []CellRef
	for _, day := range m.days {
		values, refs := m.collect([]schedule.Weekday{day})
		if len(values) == 0 {
			continue
		}
		result = append(result, refs[floats.MinIdx(values)])
	}
	return result
}

func (m *Matrix) collect(days []schedule.Weekday) ([]float64, []CellRef) {
	var values []float64
	var refs []CellRef
	for _, day := range days {
		for i, c := range m.rows[day] {
			if !c.Valid {
				continue
			}
			values = append(values, c.Minutes)
			refs = append(refs, CellRef{Day: day, Slot: m.slots[i], Minutes: c.Minutes})
		}
	}
	return values, refs
}
