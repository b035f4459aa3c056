package middleware

import (
	"net/http"

	"github.com/2beens/whoopgrid/internal/auth"
	"github.com/2beens/whoopgrid/internal/telemetry/tracing"
	"github.com/2beens/whoopgrid/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type AuthMiddlewareHandler struct {
	protectedPaths map[string]bool
}

// NewAuthMiddlewareHandler guards the routes that read whoop data on behalf of the user.
// Everything else (mock data, login flow, heatmap with its own fallback) passes through.
func NewAuthMiddlewareHandler() *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		protectedPaths: map[string]bool{
			"/whoop/daily-metrics": true,
			"/whoop/test-fetch":    true,
			"/whoop/profile":       true,
		},
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions || !h.protectedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			if _, err := auth.CredentialFromRequest(r); err != nil {
				log.Tracef("[missing credential] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.SendJsonError(w, http.StatusUnauthorized, err.Error())
				span.SetStatus(codes.Error, "missing-credential")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
