package daily

import (
	"time"

	"github.com/2beens/whoopgrid/internal/whoop"

	log "github.com/sirupsen/logrus"
)

type accumulator struct {
	recovery         *float64
	sleepPerformance *float64
	strain           *float64
	sleepHours       *float64
}

func (a *accumulator) finalize(date string) DailyMetric {
	return DailyMetric{
		Date:             date,
		Recovery:         a.recovery,
		SleepPerformance: a.sleepPerformance,
		Strain:           a.strain,
		SleepHours:       a.sleepHours,
	}
}

// accumulators keeps one accumulator per date, in order of first appearance.
type accumulators struct {
	byDate map[string]*accumulator
	dates  []string
}

func newAccumulators() *accumulators {
	return &accumulators{
		byDate: make(map[string]*accumulator),
	}
}

func (a *accumulators) upsert(date string) *accumulator {
	if acc, ok := a.byDate[date]; ok {
		return acc
	}
	acc := &accumulator{}
	a.byDate[date] = acc
	a.dates = append(a.dates, date)
	return acc
}

// add merges all records of one stream; later records overwrite earlier ones of the same day.
// Returns the number of records dropped for having no usable timestamp.
func (a *accumulators) add(adapter streamAdapter, records []whoop.RawRecord) int {
	dropped := 0
	for _, rec := range records {
		date, ok := dateKey(rec, adapter.timestampFields)
		if !ok {
			dropped++
			continue
		}

		acc := a.upsert(date)
		for _, m := range adapter.metrics {
			if v, ok := firstValue(rec, m.accessors); ok {
				m.set(acc, v)
			}
		}
	}
	if dropped > 0 {
		log.Tracef("aggregate %s: dropped %d records without timestamp", adapter.stream, dropped)
	}
	return dropped
}

// series walks every day from start to end and emits the merged entry or an empty one.
func (a *accumulators) series(start, end time.Time) Series {
	start, end = truncateToDay(start), truncateToDay(end)
	if end.Before(start) {
		return Series{}
	}

	series := make(Series, 0, int(end.Sub(start).Hours()/24)+1)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(DateLayout)
		if acc, ok := a.byDate[date]; ok {
			series = append(series, acc.finalize(date))
		} else {
			series = append(series, DailyMetric{Date: date})
		}
	}
	return series
}

// Aggregate merges the three record streams into one gap-free daily series over [start, end].
// Records outside the range are ignored, days without records have all fields nil.
func Aggregate(recovery, sleep, cycle []whoop.RawRecord, start, end time.Time) Series {
	series, _ := aggregate(recovery, sleep, cycle, start, end)
	return series
}

func aggregate(recovery, sleep, cycle []whoop.RawRecord, start, end time.Time) (Series, map[whoop.Stream]int) {
	accs := newAccumulators()
	dropped := map[whoop.Stream]int{
		whoop.StreamRecovery: accs.add(recoveryAdapter, recovery),
		whoop.StreamSleep:    accs.add(sleepAdapter, sleep),
		whoop.StreamCycle:    accs.add(cycleAdapter, cycle),
	}
	return accs.series(start, end), dropped
}
