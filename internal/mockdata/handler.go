package mockdata

import (
	"net/http"
	"time"

	"github.com/2beens/whoopgrid/internal/daily"
	"github.com/2beens/whoopgrid/pkg"

	"github.com/gorilla/mux"
)

type Handler struct {
	generator   *Generator
	defaultDays int
	maxDays     int
	now         func() time.Time
}

func NewHandler(generator *Generator, defaultDays, maxDays int) *Handler {
	if defaultDays <= 0 {
		defaultDays = daily.DefaultRangeDays
	}
	if maxDays <= 0 {
		maxDays = daily.MaxRangeDays
	}
	return &Handler{
		generator:   generator,
		defaultDays: defaultDays,
		maxDays:     maxDays,
		now:         time.Now,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/mock-metrics", h.HandleMockMetrics).Methods("GET", "OPTIONS").Name("mock-metrics")
}

func (h *Handler) HandleMockMetrics(w http.ResponseWriter, r *http.Request) {
	days, err := daily.ParseDays(r.URL.Query().Get("days"), h.defaultDays, h.maxDays)
	if err != nil {
		pkg.SendJsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	pkg.SendJsonResponse(w, http.StatusOK, h.generator.Series(days, h.now()))
}
