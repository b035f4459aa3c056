package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/2beens/whoopgrid/internal/telemetry/metrics"
	"github.com/2beens/whoopgrid/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					route := "unknown"
					if current := mux.CurrentRoute(req); current != nil && current.GetName() != "" {
						route = current.GetName()
					}
					log.Errorf("http: panic serving %s [route: %s]: %v\n%s", req.URL.Path, route, r, debug.Stack())
					if metricsManager != nil {
						metricsManager.CounterHandleRequestPanic.Inc()
					}
					pkg.SendJsonError(respWriter, http.StatusInternalServerError, "internal error")
				}
			}()

			next.ServeHTTP(respWriter, req)
		})
	}
}
