package daily

import (
	"math"
	"time"

	"github.com/2beens/whoopgrid/internal/whoop"
)

// valueAccessor reads one candidate field of a record.
// The second return value is false when the field is absent or not a finite number.
type valueAccessor func(rec whoop.RawRecord) (float64, bool)

// streamAdapter describes where a stream keeps its timestamp and metric values.
// Candidates are tried in order, the first hit wins.
type streamAdapter struct {
	stream          whoop.Stream
	timestampFields []string
	metrics         []metricAccessors
}

type metricAccessors struct {
	set       func(acc *accumulator, v float64)
	accessors []valueAccessor
}

var (
	recoveryAdapter = streamAdapter{
		stream:          whoop.StreamRecovery,
		timestampFields: []string{"timestamp", "created_at", "start"},
		metrics: []metricAccessors{
			{
				set: func(acc *accumulator, v float64) { acc.recovery = &v },
				accessors: []valueAccessor{
					field("score", "recovery_score"),
					field("score", "recovery_score_percentage"),
					field("recovery_score_percentage"),
					field("score"),
				},
			},
		},
	}

	sleepAdapter = streamAdapter{
		stream:          whoop.StreamSleep,
		timestampFields: []string{"start", "timestamp", "created_at"},
		metrics: []metricAccessors{
			{
				set: func(acc *accumulator, v float64) { acc.sleepPerformance = &v },
				accessors: []valueAccessor{
					field("score", "sleep_performance_percentage"),
					field("sleep_performance_percentage"),
				},
			},
			{
				set: func(acc *accumulator, v float64) { acc.sleepHours = &v },
				accessors: []valueAccessor{
					stageSummaryHours,
					positive(scaled(field("score", "sleep_duration"), 1.0/3600)),
					positive(scaled(field("sleep_duration"), 1.0/3600)),
				},
			},
		},
	}

	cycleAdapter = streamAdapter{
		stream:          whoop.StreamCycle,
		timestampFields: []string{"start", "timestamp", "created_at"},
		metrics: []metricAccessors{
			{
				set: func(acc *accumulator, v float64) { acc.strain = &v },
				accessors: []valueAccessor{
					field("score", "strain"),
					field("strain"),
				},
			},
		},
	}
)

func firstValue(rec whoop.RawRecord, accessors []valueAccessor) (float64, bool) {
	for _, accessor := range accessors {
		if v, ok := accessor(rec); ok {
			return v, true
		}
	}
	return 0, false
}

// field walks nested objects along the given keys and returns the number found at the end.
func field(keys ...string) valueAccessor {
	return func(rec whoop.RawRecord) (float64, bool) {
		v, ok := lookup(rec, keys...)
		if !ok {
			return 0, false
		}
		return number(v)
	}
}

func scaled(accessor valueAccessor, factor float64) valueAccessor {
	return func(rec whoop.RawRecord) (float64, bool) {
		v, ok := accessor(rec)
		if !ok {
			return 0, false
		}
		return v * factor, true
	}
}

// positive treats zero and negative durations as missing.
func positive(accessor valueAccessor) valueAccessor {
	return func(rec whoop.RawRecord) (float64, bool) {
		v, ok := accessor(rec)
		if !ok || v <= 0 {
			return 0, false
		}
		return v, true
	}
}

// stageSummaryHours is time in bed minus time awake, from the v2 sleep score.
func stageSummaryHours(rec whoop.RawRecord) (float64, bool) {
	inBed, ok := field("score", "stage_summary", "total_in_bed_time_milli")(rec)
	if !ok {
		return 0, false
	}
	awake, ok := field("score", "stage_summary", "total_awake_time_milli")(rec)
	if !ok {
		awake = 0
	}
	hours := (inBed - awake) / float64(time.Hour/time.Millisecond)
	if hours <= 0 {
		return 0, false
	}
	return hours, true
}

func lookup(rec whoop.RawRecord, keys ...string) (any, bool) {
	var current any = map[string]any(rec)
	for _, key := range keys {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// dateKey returns the UTC calendar day of the first usable timestamp field.
func dateKey(rec whoop.RawRecord, timestampFields []string) (string, bool) {
	for _, name := range timestampFields {
		ts, ok := rec[name].(string)
		if !ok || ts == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			return t.UTC().Format(DateLayout), true
		}
		if len(ts) >= len(DateLayout) {
			if d, err := time.Parse(DateLayout, ts[:len(DateLayout)]); err == nil {
				return d.Format(DateLayout), true
			}
		}
		return "", false
	}
	return "", false
}
