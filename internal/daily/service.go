package daily

import (
	"context"
	"time"

	"github.com/2beens/whoopgrid/internal/telemetry/metrics"
	"github.com/2beens/whoopgrid/internal/telemetry/tracing"
	"github.com/2beens/whoopgrid/internal/whoop"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=daily

type recordFetcher interface {
	Fetch(ctx context.Context, token string, stream whoop.Stream, window whoop.TimeWindow, pageLimit int) whoop.FetchResult
}

type Service struct {
	fetcher        recordFetcher
	pageLimit      int
	metricsManager *metrics.Manager
}

func NewService(fetcher recordFetcher, pageLimit int, metricsManager *metrics.Manager) *Service {
	return &Service{
		fetcher:        fetcher,
		pageLimit:      pageLimit,
		metricsManager: metricsManager,
	}
}

// DailyMetrics fetches the three record streams concurrently and merges them into
// a daily series over the date range. Failing streams only make the series sparser,
// the only error returned is a missing credential.
func (s *Service) DailyMetrics(ctx context.Context, token string, dateRange DateRange) (series Series, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "daily.service.dailyMetrics")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if token == "" {
		return nil, whoop.ErrMissingCredential
	}

	window := dateRange.Window()
	results := make([]whoop.FetchResult, len(whoop.Streams))

	var g errgroup.Group
	for i, stream := range whoop.Streams {
		g.Go(func() error {
			results[i] = s.fetcher.Fetch(ctx, token, stream, window, s.pageLimit)
			return nil
		})
	}
	// fetches never fail as a whole, partial results are in each FetchResult
	_ = g.Wait()

	var fetchErrs error
	records := make(map[whoop.Stream][]whoop.RawRecord, len(results))
	for _, result := range results {
		records[result.Stream] = result.Records
		fetchErrs = multierr.Append(fetchErrs, result.Err)
	}
	if fetchErrs != nil {
		log.Warnf("daily metrics built from partial data: %s", fetchErrs)
	}

	aggregationStart := time.Now()
	series, dropped := aggregate(
		records[whoop.StreamRecovery],
		records[whoop.StreamSleep],
		records[whoop.StreamCycle],
		dateRange.Start,
		dateRange.End,
	)
	s.observeAggregation(time.Since(aggregationStart), dropped)

	span.SetAttributes(
		attribute.Int("days", len(series)),
		attribute.Int("recovery.records", len(records[whoop.StreamRecovery])),
		attribute.Int("sleep.records", len(records[whoop.StreamSleep])),
		attribute.Int("cycle.records", len(records[whoop.StreamCycle])),
	)

	return series, nil
}

func (s *Service) observeAggregation(took time.Duration, dropped map[whoop.Stream]int) {
	if s.metricsManager == nil {
		return
	}
	s.metricsManager.HistogramAggregationDuration.Observe(took.Seconds())
	for stream, count := range dropped {
		s.metricsManager.CounterDroppedRecords.WithLabelValues(string(stream)).Add(float64(count))
	}
}
