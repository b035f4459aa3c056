package daily

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/2beens/whoopgrid/internal/whoop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecord(t *testing.T, raw string) whoop.RawRecord {
	t.Helper()
	var rec whoop.RawRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	return rec
}

func TestFirstValue_Recovery(t *testing.T) {
	accessors := recoveryAdapter.metrics[0].accessors

	testCases := []struct {
		name     string
		record   string
		expected float64
		found    bool
	}{
		{name: "v2 score", record: `{"score":{"recovery_score":55,"recovery_score_percentage":12}}`, expected: 55, found: true},
		{name: "score percentage", record: `{"score":{"recovery_score_percentage":61.5}}`, expected: 61.5, found: true},
		{name: "top level percentage", record: `{"recovery_score_percentage":70}`, expected: 70, found: true},
		{name: "numeric score", record: `{"score":42}`, expected: 42, found: true},
		{name: "string value", record: `{"score":{"recovery_score":"55"}}`},
		{name: "bool value", record: `{"recovery_score_percentage":true}`},
		{name: "null value", record: `{"score":{"recovery_score":null}}`},
		{name: "score object without value", record: `{"score":{"hrv_rmssd_milli":31.8}}`},
		{name: "empty", record: `{}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := firstValue(decodeRecord(t, tc.record), accessors)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.expected, v)
		})
	}
}

func TestFirstValue_SleepHours(t *testing.T) {
	accessors := sleepAdapter.metrics[1].accessors

	testCases := []struct {
		name     string
		record   string
		expected float64
		found    bool
	}{
		{
			name:     "stage summary",
			record:   `{"score":{"stage_summary":{"total_in_bed_time_milli":28800000,"total_awake_time_milli":1800000}}}`,
			expected: 7.5,
			found:    true,
		},
		{
			name:     "stage summary without awake time",
			record:   `{"score":{"stage_summary":{"total_in_bed_time_milli":25200000}}}`,
			expected: 7,
			found:    true,
		},
		{
			name:     "zero stage summary falls through",
			record:   `{"score":{"stage_summary":{"total_in_bed_time_milli":0,"total_awake_time_milli":0},"sleep_duration":27000}}`,
			expected: 7.5,
			found:    true,
		},
		{name: "score sleep duration seconds", record: `{"score":{"sleep_duration":21600}}`, expected: 6, found: true},
		{name: "top level sleep duration", record: `{"sleep_duration":32400}`, expected: 9, found: true},
		{name: "zero duration", record: `{"sleep_duration":0}`},
		{name: "negative duration", record: `{"score":{"sleep_duration":-100}}`},
		{name: "missing", record: `{"score":{"sleep_performance_percentage":90}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := firstValue(decodeRecord(t, tc.record), accessors)
			assert.Equal(t, tc.found, ok)
			assert.InDelta(t, tc.expected, v, 1e-9)
		})
	}
}

func TestFirstValue_Strain(t *testing.T) {
	accessors := cycleAdapter.metrics[0].accessors

	v, ok := firstValue(decodeRecord(t, `{"score":{"strain":12.3},"strain":3}`), accessors)
	assert.True(t, ok)
	assert.Equal(t, 12.3, v)

	v, ok = firstValue(decodeRecord(t, `{"strain":3}`), accessors)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	_, ok = firstValue(decodeRecord(t, `{"score_state":"PENDING_SCORE"}`), accessors)
	assert.False(t, ok)
}

func TestNumber(t *testing.T) {
	v, ok := number(12)
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)

	_, ok = number(math.NaN())
	assert.False(t, ok)
	_, ok = number(math.Inf(1))
	assert.False(t, ok)
	_, ok = number(math.Inf(-1))
	assert.False(t, ok)
	_, ok = number("12")
	assert.False(t, ok)
	_, ok = number(map[string]any{})
	assert.False(t, ok)
}

func TestDateKey(t *testing.T) {
	fields := []string{"start", "timestamp", "created_at"}

	testCases := []struct {
		name     string
		record   whoop.RawRecord
		expected string
		found    bool
	}{
		{name: "rfc3339 utc", record: whoop.RawRecord{"start": "2024-01-02T22:10:00.000Z"}, expected: "2024-01-02", found: true},
		{name: "offset converted to utc", record: whoop.RawRecord{"start": "2024-01-02T22:10:00-05:00"}, expected: "2024-01-03", found: true},
		{name: "second candidate", record: whoop.RawRecord{"timestamp": "2024-01-04T01:00:00Z"}, expected: "2024-01-04", found: true},
		{name: "empty first candidate skipped", record: whoop.RawRecord{"start": "", "created_at": "2024-01-05T01:00:00Z"}, expected: "2024-01-05", found: true},
		{name: "non string first candidate skipped", record: whoop.RawRecord{"start": 1704153600, "timestamp": "2024-01-06T01:00:00Z"}, expected: "2024-01-06", found: true},
		{name: "date prefix fallback", record: whoop.RawRecord{"start": "2024-01-07 08:00:00"}, expected: "2024-01-07", found: true},
		{name: "plain date", record: whoop.RawRecord{"start": "2024-01-08"}, expected: "2024-01-08", found: true},
		{name: "garbage", record: whoop.RawRecord{"start": "yesterday morning"}},
		{name: "garbage does not fall to next candidate", record: whoop.RawRecord{"start": "soon", "timestamp": "2024-01-09T00:00:00Z"}},
		{name: "no timestamp", record: whoop.RawRecord{"score": 40.0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			date, ok := dateKey(tc.record, fields)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.expected, date)
		})
	}
}
