package heatmap

import (
	"fmt"
	"math"
	"time"
)

// Tooltip describes a single cell, e.g. "Jan 2, 2024 • Recovery: 55.0%".
func Tooltip(cell GridCell, metric Metric, unit string) string {
	dateStr := cell.Date
	if date, err := time.Parse(dateLayout, cell.Date); err == nil {
		dateStr = date.Format("Jan 2, 2006")
	}

	valueStr := "no data"
	if cell.RawValue != nil && !math.IsNaN(*cell.RawValue) {
		valueStr = fmt.Sprintf("%.1f%s", *cell.RawValue, unit)
	}

	return fmt.Sprintf("%s • %s: %s", dateStr, metric.Label(), valueStr)
}
