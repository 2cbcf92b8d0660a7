package heatmap

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/username/traffic-heatmap-planner/internal/schedule"
)

func sampleMatrix() *Matrix {
	slots := schedule.BuildSlots(7, 8, 30) // 7 AM, 7:30 AM, 8 AM
	m := newMatrix([]schedule.Weekday{schedule.Wednesday, schedule.Monday}, slots)
	m.set(schedule.Monday, 0, 42)
	m.set(schedule.Monday, 1, 55.25)
	m.set(schedule.Monday, 2, 61)
	m.set(schedule.Wednesday, 0, 40)
	m.set(schedule.Wednesday, 2, 58)
	return m
}

func TestMatrix_WriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleMatrix().WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "day,7 AM,7:30 AM,8 AM\n" +
		"Monday,42.0,55.2,61.0\n" +
		"Wednesday,40.0,,58.0\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestMatrix_WriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleMatrix().WriteTable(&buf); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("WriteTable() produced %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "7:30 AM") {
		t.Errorf("header %q missing slot label", lines[0])
	}
	if !strings.Contains(lines[1], "Monday") || !strings.Contains(lines[1], "55.2") {
		t.Errorf("Monday row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "Wednesday") || !strings.Contains(lines[2], "-") {
		t.Errorf("Wednesday row = %q, want absent marker", lines[2])
	}
}

func TestMatrix_Row(t *testing.T) {
	m := sampleMatrix()

	row := m.Row(schedule.Wednesday)
	if len(row) != 3 || !row[0].Valid || row[1].Valid || !row[2].Valid {
		t.Errorf("Row(Wednesday) = %+v", row)
	}

	row[0].Minutes = 999
	if c, _ := m.Cell(schedule.Wednesday, "7 AM"); c.Minutes != 40 {
		t.Error("Row() returned a slice sharing matrix storage")
	}

	if m.Row(schedule.Sunday) != nil {
		t.Error("Row(Sunday) != nil for an unselected day")
	}
}

func TestMatrix_Summarize(t *testing.T) {
	summary, ok := sampleMatrix().Summarize()
	if !ok {
		t.Fatal("Summarize() ok = false")
	}

	if summary.Count != 5 || summary.Absent != 1 {
		t.Errorf("Count/Absent = %d/%d, want 5/1", summary.Count, summary.Absent)
	}
	wantMean := (42 + 55.25 + 61 + 40 + 58) / 5
	if math.Abs(summary.Mean-wantMean) > 1e-9 {
		t.Errorf("Mean = %v, want %v", summary.Mean, wantMean)
	}
	if summary.StdDev <= 0 {
		t.Errorf("StdDev = %v, want > 0", summary.StdDev)
	}
	if summary.Fastest.Day != schedule.Wednesday || summary.Fastest.Slot.Label != "7 AM" || summary.Fastest.Minutes != 40 {
		t.Errorf("Fastest = %+v", summary.Fastest)
	}
	if summary.Slowest.Day != schedule.Monday || summary.Slowest.Slot.Label != "8 AM" || summary.Slowest.Minutes != 61 {
		t.Errorf("Slowest = %+v", summary.Slowest)
	}
}

func TestMatrix_Summarize_Empty(t *testing.T) {
	m := newMatrix([]schedule.Weekday{schedule.Monday}, schedule.BuildSlots(7, 8, 60))

	summary, ok := m.Summarize()
	if ok {
		t.Error("Summarize() ok = true for an empty matrix")
	}
	if summary.Absent != 2 {
		t.Errorf("Absent = %d, want 2", summary.Absent)
	}
	if len(m.FastestByDay()) != 0 {
		t.Error("FastestByDay() not empty for an empty matrix")
	}
}

func TestMatrix_FastestByDay(t *testing.T) {
	best := sampleMatrix().FastestByDay()

	if len(best) != 2 {
		t.Fatalf("FastestByDay() returned %d entries, want 2", len(best))
	}
	if best[0].Day != schedule.Monday || best[0].Slot.Label != "7 AM" {
		t.Errorf("best[0] = %+v", best[0])
	}
	if best[1].Day != schedule.Wednesday || best[1].Minutes != 40 {
		t.Errorf("best[1] = %+v", best[1])
	}
}
