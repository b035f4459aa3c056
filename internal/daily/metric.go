package daily

import (
	"time"

	"github.com/2beens/whoopgrid/internal/whoop"
)

const DateLayout = "2006-01-02"

// DailyMetric is one calendar day of the merged series.
// A nil field means there was no data for that day, it is never zero-filled.
type DailyMetric struct {
	Date             string   `json:"date"`
	Recovery         *float64 `json:"recovery"`
	SleepPerformance *float64 `json:"sleepPerformance"`
	Strain           *float64 `json:"strain"`
	SleepHours       *float64 `json:"sleepHours"`
}

func (m DailyMetric) Empty() bool {
	return m.Recovery == nil && m.SleepPerformance == nil && m.Strain == nil && m.SleepHours == nil
}

// Series holds exactly one DailyMetric per day of a date range, ascending by date.
type Series []DailyMetric

// DateRange is an inclusive range of UTC calendar days, plus the instant it was computed for.
type DateRange struct {
	Start time.Time
	End   time.Time
	now   time.Time
}

// NewDateRange returns the range of the last days calendar days ending with the day of now.
func NewDateRange(days int, now time.Time) DateRange {
	now = now.UTC()
	end := truncateToDay(now)
	if days < 1 {
		days = 1
	}
	return DateRange{
		Start: end.AddDate(0, 0, -(days - 1)),
		End:   end,
		now:   now,
	}
}

func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Window is the interval records are requested for: from the start of the first day
// up to the reference instant.
func (r DateRange) Window() whoop.TimeWindow {
	end := r.now
	if end.IsZero() {
		end = r.End.AddDate(0, 0, 1).Add(-time.Second)
	}
	return whoop.TimeWindow{
		Start: truncateToDay(r.Start),
		End:   end,
	}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
