package heatmap

import (
	"math"
)

// Band is the colour bucket of a cell, derived from the raw value and the metric.
type Band string

const (
	BandNone Band = "none"
	BandLow  Band = "low"
	BandMid  Band = "mid"
	BandHigh Band = "high"
)

var bandColors = map[Band]string{
	BandNone: "#E5E7EB",
	BandLow:  "#EF4444",
	BandMid:  "#FACC15",
	BandHigh: "#22C55E",
}

func (b Band) Color() string {
	if c, ok := bandColors[b]; ok {
		return c
	}
	return bandColors[BandNone]
}

func (b Band) Label() string {
	switch b {
	case BandLow:
		return "Low"
	case BandMid:
		return "Mid"
	case BandHigh:
		return "High"
	default:
		return "No data"
	}
}

// thresholds are inclusive upper bounds of the low and mid bands
type thresholds struct {
	low float64
	mid float64
}

var metricThresholds = map[Metric]thresholds{
	MetricRecovery:         {low: 33, mid: 66},
	MetricSleepPerformance: {low: 33, mid: 66},
	MetricStrain:           {low: 9, mid: 14},
}

// legend sample values, one per band
var legendSamples = map[Metric][3]float64{
	MetricRecovery:         {10, 50, 90},
	MetricSleepPerformance: {10, 50, 90},
	MetricStrain:           {5, 12, 18},
}

func BandOf(metric Metric, raw *float64) Band {
	if raw == nil || math.IsNaN(*raw) {
		return BandNone
	}
	t, ok := metricThresholds[metric]
	if !ok {
		return BandNone
	}

	switch v := *raw; {
	case v <= t.low:
		return BandLow
	case v <= t.mid:
		return BandMid
	default:
		return BandHigh
	}
}

type LegendEntry struct {
	Band   Band    `json:"band"`
	Label  string  `json:"label"`
	Sample float64 `json:"sample"`
	Color  string  `json:"color"`
}

func Legend(metric Metric) []LegendEntry {
	samples, ok := legendSamples[metric]
	if !ok {
		return nil
	}

	legend := make([]LegendEntry, 0, len(samples))
	for _, sample := range samples {
		band := BandOf(metric, &sample)
		legend = append(legend, LegendEntry{
			Band:   band,
			Label:  band.Label(),
			Sample: sample,
			Color:  band.Color(),
		})
	}
	return legend
}
