package heatmap

import (
	"errors"
	"fmt"

	"github.com/2beens/whoopgrid/internal/daily"
)

type Metric string

const (
	MetricRecovery         Metric = "recovery"
	MetricSleepPerformance Metric = "sleepPerformance"
	MetricStrain           Metric = "strain"
)

var Metrics = []Metric{MetricRecovery, MetricSleepPerformance, MetricStrain}

var ErrUnknownMetric = errors.New("unknown metric")

func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

func (m Metric) Label() string {
	switch m {
	case MetricRecovery:
		return "Recovery"
	case MetricSleepPerformance:
		return "Sleep performance"
	case MetricStrain:
		return "Strain"
	default:
		return string(m)
	}
}

// Unit is appended to values shown to the user.
func (m Metric) Unit() string {
	switch m {
	case MetricRecovery, MetricSleepPerformance:
		return "%"
	default:
		return ""
	}
}

func (m Metric) valueOf(dm daily.DailyMetric) *float64 {
	switch m {
	case MetricRecovery:
		return dm.Recovery
	case MetricSleepPerformance:
		return dm.SleepPerformance
	case MetricStrain:
		return dm.Strain
	default:
		return nil
	}
}
