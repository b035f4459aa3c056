package heatmap

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/2beens/whoopgrid/internal/daily"
)

const dateLayout = daily.DateLayout

// GridCell is one day placed in the calendar: column WeekIndex, row Weekday (0 = Sunday).
type GridCell struct {
	Date            string   `json:"date"`
	WeekIndex       int      `json:"weekIndex"`
	Weekday         int      `json:"weekday"`
	RawValue        *float64 `json:"rawValue"`
	NormalizedValue *float64 `json:"normalizedValue"`
	ColorBucket     Band     `json:"colorBucket"`
	Color           string   `json:"color"`
}

type Grid struct {
	Metric      Metric     `json:"metric"`
	Cells       []GridCell `json:"cells"`
	WeekCount   int        `json:"weekCount"`
	MonthLabels []string   `json:"monthLabels"`
}

// Layout places a daily series onto a week column / weekday row grid.
// The first column starts on the Sunday on or before the first day, days before it stay empty.
func Layout(series daily.Series, metric Metric) Grid {
	grid := Grid{
		Metric:      metric,
		Cells:       []GridCell{},
		MonthLabels: []string{},
	}
	if len(series) == 0 {
		return grid
	}

	sorted := slices.Clone(series)
	slices.SortStableFunc(sorted, func(a, b daily.DailyMetric) int {
		return strings.Compare(a.Date, b.Date)
	})

	firstWeekday := 0
	if first, err := time.Parse(dateLayout, sorted[0].Date); err == nil {
		firstWeekday = int(first.Weekday())
	}

	minValue, maxValue, hasValues := valueRange(sorted, metric)

	grid.Cells = make([]GridCell, 0, len(sorted))
	for i, dm := range sorted {
		raw := metric.valueOf(dm)
		band := BandOf(metric, raw)
		grid.Cells = append(grid.Cells, GridCell{
			Date:            dm.Date,
			WeekIndex:       (firstWeekday + i) / 7,
			Weekday:         (firstWeekday + i) % 7,
			RawValue:        raw,
			NormalizedValue: normalize(raw, minValue, maxValue, hasValues),
			ColorBucket:     band,
			Color:           band.Color(),
		})
	}

	grid.WeekCount = grid.Cells[len(grid.Cells)-1].WeekIndex + 1
	grid.MonthLabels = monthLabels(grid.Cells, grid.WeekCount)

	return grid
}

// At returns the cell at the given column and row, if a day was placed there.
func (g Grid) At(weekIndex, weekday int) (GridCell, bool) {
	if len(g.Cells) == 0 || weekday < 0 || weekday > 6 {
		return GridCell{}, false
	}
	i := weekIndex*7 + weekday - g.Cells[0].Weekday
	if i < 0 || i >= len(g.Cells) {
		return GridCell{}, false
	}
	return g.Cells[i], true
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v)
}

func valueRange(series daily.Series, metric Metric) (float64, float64, bool) {
	minValue, maxValue := math.Inf(1), math.Inf(-1)
	hasValues := false
	for _, dm := range series {
		v := metric.valueOf(dm)
		if !usable(v) {
			continue
		}
		hasValues = true
		minValue = math.Min(minValue, *v)
		maxValue = math.Max(maxValue, *v)
	}
	return minValue, maxValue, hasValues
}

func normalize(raw *float64, minValue, maxValue float64, hasValues bool) *float64 {
	if !hasValues || !usable(raw) {
		return nil
	}
	normalized := 0.5
	if maxValue > minValue {
		normalized = (*raw - minValue) / (maxValue - minValue)
	}
	return &normalized
}
