package mockdata

import (
	"math"
	"time"

	"github.com/2beens/whoopgrid/internal/daily"

	"github.com/brianvoe/gofakeit/v6"
)

// Generator produces plausible looking daily metrics: a slow sine wave per metric
// plus gaussian noise, clamped to each metric's domain.
type Generator struct {
	seed int64
}

// NewGenerator with seed 0 gives a different series on every call.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed: seed,
	}
}

func (g *Generator) Series(days int, now time.Time) daily.Series {
	dateRange := daily.NewDateRange(days, now)
	faker := gofakeit.New(g.seed)

	series := make(daily.Series, 0, dateRange.Days())
	for i := 0; i < dateRange.Days(); i++ {
		x := float64(i)
		recovery := clamp(50+40*math.Sin(x/10)+noise(faker, 10), 0, 100)
		sleepPerformance := clamp(80+15*math.Cos(x/13)+noise(faker, 8), 0, 100)
		strain := clamp(10+5*math.Sin(x/7)+noise(faker, 3), 0, 21)
		sleepHours := clamp(7+math.Sin(x/9)+noise(faker, 1), 3, 10)

		series = append(series, daily.DailyMetric{
			Date:             dateRange.Start.AddDate(0, 0, i).Format(daily.DateLayout),
			Recovery:         &recovery,
			SleepPerformance: &sleepPerformance,
			Strain:           &strain,
			SleepHours:       &sleepHours,
		})
	}

	return series
}

// noise is normally distributed with the given standard deviation (Box-Muller).
func noise(faker *gofakeit.Faker, sd float64) float64 {
	u := 1 - faker.Float64Range(0, 1)
	v := 1 - faker.Float64Range(0, 1)
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v) * sd
}

func clamp(v, minValue, maxValue float64) float64 {
	return math.Min(maxValue, math.Max(minValue, v))
}
