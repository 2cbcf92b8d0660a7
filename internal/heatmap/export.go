package heatmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// WriteCSV writes one row per day and one column per slot label.
// Absent cells are left blank.
func (m *Matrix) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{"day"}, m.Labels()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, day := range m.days {
		record := make([]string, 0, len(m.slots)+1)
		record = append(record, day.String())
		for _, c := range m.rows[day] {
			record = append(record, formatCell(c, ""))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", day, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteTable renders the matrix as aligned text columns, "-" marking absent cells
func (m *Matrix) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "Day\t%s\t\n", strings.Join(m.Labels(), "\t"))
	for _, day := range m.days {
		cells := make([]string, len(m.slots))
		for i, c := range m.rows[day] {
			cells[i] = formatCell(c, "-")
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", day, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

func formatCell(c Cell, absent string) string {
	if !c.Valid {
		return absent
	}
	return strconv.FormatFloat(c.Minutes, 'f', 1, 64)
}
