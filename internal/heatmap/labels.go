package heatmap

import (
	"time"
)

// WeekdayLabels are the row labels, every other day is left blank.
var WeekdayLabels = []string{"Sun", "", "Tue", "", "Thu", "", "Sat"}

// monthLabels puts the short month name at the week column holding the 1st of that month.
func monthLabels(cells []GridCell, weekCount int) []string {
	labels := make([]string, weekCount)

	seen := make(map[string]bool)
	for _, cell := range cells {
		date, err := time.Parse(dateLayout, cell.Date)
		if err != nil || date.Day() != 1 {
			continue
		}
		month := date.Format("2006-01")
		if seen[month] {
			continue
		}
		seen[month] = true

		if cell.WeekIndex < 0 || cell.WeekIndex >= weekCount {
			continue
		}
		labels[cell.WeekIndex] = date.Format("Jan")
	}

	return labels
}
