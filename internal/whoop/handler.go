package whoop

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/whoopgrid/internal/auth"
	"github.com/2beens/whoopgrid/internal/telemetry/tracing"
	"github.com/2beens/whoopgrid/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const testFetchPageLimit = 5

type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{
		client: client,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/test-fetch", h.HandleTestFetch).Methods("GET", "OPTIONS").Name("whoop-test-fetch")
	router.HandleFunc("/profile", h.HandleProfile).Methods("GET", "OPTIONS").Name("whoop-profile")
}

type testFetchResponse struct {
	Status int             `json:"status"`
	Json   json.RawMessage `json:"json"`
	Raw    string          `json:"raw"`
}

// HandleTestFetch passes the first recovery page through as is, used to inspect
// what the whoop API actually returns for the current token.
func (h *Handler) HandleTestFetch(w http.ResponseWriter, r *http.Request) {
	var err error
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "whoop.handler.testFetch")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	token, err := auth.CredentialFromRequest(r)
	if err != nil {
		pkg.SendJsonError(w, http.StatusUnauthorized, err.Error())
		return
	}

	status, body, err := h.client.RawPage(ctx, token, StreamRecovery, testFetchPageLimit)
	if err != nil {
		log.Errorf("test fetch: %s", err)
		pkg.SendJsonError(w, http.StatusBadGateway, "whoop request failed")
		return
	}

	resp := testFetchResponse{
		Status: status,
		Json:   json.RawMessage("null"),
		Raw:    string(body),
	}
	if json.Valid(body) {
		resp.Json = body
	}

	pkg.SendJsonResponse(w, http.StatusOK, resp)
}

func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	var err error
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "whoop.handler.profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	token, err := auth.CredentialFromRequest(r)
	if err != nil {
		pkg.SendJsonError(w, http.StatusUnauthorized, err.Error())
		return
	}

	profile, err := h.client.Profile(ctx, token)
	if err != nil {
		log.Errorf("get whoop profile: %s", err)
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			pkg.SendJsonError(w, http.StatusUnauthorized, "whoop rejected the access token")
			return
		}
		pkg.SendJsonError(w, http.StatusBadGateway, "failed to get whoop profile")
		return
	}

	pkg.SendJsonResponse(w, http.StatusOK, profile)
}
