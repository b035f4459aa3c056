package daily

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/whoopgrid/internal/auth"
	"github.com/2beens/whoopgrid/internal/whoop"
	"github.com/2beens/whoopgrid/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultRangeDays = 180
	MaxRangeDays     = 730
)

var ErrInvalidDays = errors.New("invalid days")

// ParseDays reads the days query value. Empty means defaultDays.
func ParseDays(raw string, defaultDays, maxDays int) (int, error) {
	if raw == "" {
		return defaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidDays, raw)
	}
	if days < 1 || days > maxDays {
		return 0, fmt.Errorf("%w: must be between 1 and %d", ErrInvalidDays, maxDays)
	}
	return days, nil
}

type metricsProvider interface {
	DailyMetrics(ctx context.Context, token string, dateRange DateRange) (Series, error)
}

type Handler struct {
	provider    metricsProvider
	defaultDays int
	maxDays     int
	now         func() time.Time
}

func NewHandler(provider metricsProvider, defaultDays, maxDays int) *Handler {
	if defaultDays <= 0 {
		defaultDays = DefaultRangeDays
	}
	if maxDays <= 0 {
		maxDays = MaxRangeDays
	}
	return &Handler{
		provider:    provider,
		defaultDays: defaultDays,
		maxDays:     maxDays,
		now:         time.Now,
	}
}

// SetupRoutes registers the daily metrics route, wrapped by the given middlewares (outermost first).
func (h *Handler) SetupRoutes(router *mux.Router, middlewares ...mux.MiddlewareFunc) {
	var handler http.Handler = http.HandlerFunc(h.HandleDailyMetrics)
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	router.Handle("/daily-metrics", handler).Methods("GET", "OPTIONS").Name("daily-metrics")
}

func (h *Handler) HandleDailyMetrics(w http.ResponseWriter, r *http.Request) {
	days, err := ParseDays(r.URL.Query().Get("days"), h.defaultDays, h.maxDays)
	if err != nil {
		pkg.SendJsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := auth.CredentialFromRequest(r)
	if err != nil {
		pkg.SendJsonError(w, http.StatusUnauthorized, err.Error())
		return
	}

	series, err := h.provider.DailyMetrics(r.Context(), token, NewDateRange(days, h.now()))
	if err != nil {
		if errors.Is(err, whoop.ErrMissingCredential) {
			pkg.SendJsonError(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.Errorf("get daily metrics: %s", err)
		pkg.SendJsonError(w, http.StatusInternalServerError, "failed to get daily metrics")
		return
	}

	pkg.SendJsonResponse(w, http.StatusOK, series)
}
