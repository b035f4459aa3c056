package heatmap

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/whoopgrid/internal/auth"
	"github.com/2beens/whoopgrid/internal/daily"
	"github.com/2beens/whoopgrid/internal/telemetry/tracing"
	"github.com/2beens/whoopgrid/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type seriesProvider interface {
	DailyMetrics(ctx context.Context, token string, dateRange daily.DateRange) (daily.Series, error)
}

// MockSource produces a generated series, used when there is no whoop data to show.
type MockSource func(days int, now time.Time) daily.Series

type Handler struct {
	provider     seriesProvider
	mockSource   MockSource
	defaultDays  int
	maxDays      int
	mockFallback bool
	now          func() time.Time
}

type NewHandlerParams struct {
	Provider     seriesProvider
	MockSource   MockSource
	DefaultDays  int
	MaxDays      int
	MockFallback bool
}

func NewHandler(params NewHandlerParams) *Handler {
	h := &Handler{
		provider:     params.Provider,
		mockSource:   params.MockSource,
		defaultDays:  params.DefaultDays,
		maxDays:      params.MaxDays,
		mockFallback: params.MockFallback,
		now:          time.Now,
	}
	if h.defaultDays <= 0 {
		h.defaultDays = daily.DefaultRangeDays
	}
	if h.maxDays <= 0 {
		h.maxDays = daily.MaxRangeDays
	}
	return h
}

func (h *Handler) SetupRoutes(router *mux.Router, middlewares ...mux.MiddlewareFunc) {
	var handler http.Handler = http.HandlerFunc(h.HandleHeatmap)
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	router.Handle("/heatmap", handler).Methods("GET", "OPTIONS").Name("heatmap")
}

type heatmapResponse struct {
	Grid
	Legend        []LegendEntry `json:"legend"`
	WeekdayLabels []string      `json:"weekdayLabels"`
	Tooltips      []string      `json:"tooltips"`
	Mock          bool          `json:"mock"`
}

func (h *Handler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	var err error
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "heatmap.handler.heatmap")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	metricParam := r.URL.Query().Get("metric")
	if metricParam == "" {
		metricParam = string(MetricRecovery)
	}
	metric, err := ParseMetric(metricParam)
	if err != nil {
		pkg.SendJsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	days, err := daily.ParseDays(r.URL.Query().Get("days"), h.defaultDays, h.maxDays)
	if err != nil {
		pkg.SendJsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	useMock := false
	if mockParam := r.URL.Query().Get("mock"); mockParam != "" {
		if useMock, err = strconv.ParseBool(mockParam); err != nil {
			pkg.SendJsonError(w, http.StatusBadRequest, "invalid mock flag")
			return
		}
	}

	now := h.now()
	var series daily.Series
	if !useMock {
		token, credErr := auth.CredentialFromRequest(r)
		switch {
		case credErr == nil:
			series, err = h.provider.DailyMetrics(ctx, token, daily.NewDateRange(days, now))
			if err != nil {
				log.Errorf("heatmap: get daily metrics: %s", err)
				pkg.SendJsonError(w, http.StatusInternalServerError, "failed to get daily metrics")
				return
			}
		case errors.Is(credErr, auth.ErrMissingCredential) && h.mockFallback:
			log.Debug("heatmap: no whoop session, falling back to mock data")
			useMock = true
		default:
			pkg.SendJsonError(w, http.StatusUnauthorized, credErr.Error())
			return
		}
	}
	if useMock {
		if h.mockSource == nil {
			pkg.SendJsonError(w, http.StatusNotImplemented, "mock data not available")
			return
		}
		series = h.mockSource(days, now)
	}

	grid := Layout(series, metric)
	tooltips := make([]string, 0, len(grid.Cells))
	for _, cell := range grid.Cells {
		tooltips = append(tooltips, Tooltip(cell, metric, metric.Unit()))
	}

	span.SetAttributes(
		attribute.String("metric", string(metric)),
		attribute.Int("days", days),
		attribute.Bool("mock", useMock),
	)

	pkg.SendJsonResponse(w, http.StatusOK, heatmapResponse{
		Grid:          grid,
		Legend:        Legend(metric),
		WeekdayLabels: WeekdayLabels,
		Tooltips:      tooltips,
		Mock:          useMock,
	})
}
