package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/whoopgrid/internal/telemetry/tracing"
	"github.com/2beens/whoopgrid/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	defaultAccessTokenMaxAge = 3600
	refreshTokenMaxAge       = 30 * 24 * 3600
)

type stateStore interface {
	NewState(ctx context.Context) (string, error)
	ConsumeState(ctx context.Context, state string) (bool, error)
}

type Handler struct {
	oauthConfig   *oauth2.Config
	states        stateStore
	httpClient    *http.Client
	secureCookies bool
	now           func() time.Time
}

func NewHandler(
	oauthConfig *oauth2.Config,
	states stateStore,
	httpClient *http.Client,
	secureCookies bool,
) *Handler {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Handler{
		oauthConfig:   oauthConfig,
		states:        states,
		httpClient:    httpClient,
		secureCookies: secureCookies,
		now:           time.Now,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/login", h.HandleLogin).Methods("GET")
	router.HandleFunc("/callback", h.HandleCallback).Methods("GET")
	router.HandleFunc("/logout", h.HandleLogout).Methods("GET", "POST")
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var err error
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "auth.handler.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	state, err := h.states.NewState(ctx)
	if err != nil {
		log.Errorf("login: %s", err)
		pkg.SendJsonError(w, http.StatusInternalServerError, "failed to start whoop login")
		return
	}

	h.setCookie(w, StateCookie, state, int(DefaultStateTTL.Seconds()))
	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusFound)
}

func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var err error
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "auth.handler.callback")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		log.Warnf("whoop authorization denied: %s", errParam)
		pkg.SendJsonError(w, http.StatusBadRequest, "whoop authorization denied: "+errParam)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		pkg.SendJsonError(w, http.StatusBadRequest, "missing code in callback")
		return
	}

	state := r.URL.Query().Get("state")
	stateCookie, cookieErr := r.Cookie(StateCookie)
	if cookieErr != nil || stateCookie.Value == "" || stateCookie.Value != state {
		pkg.SendJsonError(w, http.StatusBadRequest, "state mismatch")
		return
	}

	issued, err := h.states.ConsumeState(ctx, state)
	if err != nil {
		log.Errorf("callback: %s", err)
		pkg.SendJsonError(w, http.StatusInternalServerError, "failed to verify state")
		return
	}
	if !issued {
		pkg.SendJsonError(w, http.StatusBadRequest, "state mismatch")
		return
	}

	tok, err := h.oauthConfig.Exchange(context.WithValue(ctx, oauth2.HTTPClient, h.httpClient), code)
	if err != nil {
		log.Errorf("whoop token exchange: %s", err)
		pkg.SendJsonError(w, http.StatusBadGateway, "whoop token exchange failed")
		return
	}
	if tok.AccessToken == "" {
		err = errors.New("empty access token")
		log.Error("whoop token exchange returned no access token")
		pkg.SendJsonError(w, http.StatusBadGateway, "whoop token exchange failed")
		return
	}

	h.setCookie(w, AccessTokenCookie, tok.AccessToken, h.accessTokenMaxAge(tok))
	if tok.RefreshToken != "" {
		h.setCookie(w, RefreshTokenCookie, tok.RefreshToken, refreshTokenMaxAge)
	}
	h.setCookie(w, StateCookie, "", -1)

	log.Debugf("whoop login completed, token [%s]", pkg.Fingerprint(tok.AccessToken))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, AccessTokenCookie, "", -1)
	h.setCookie(w, RefreshTokenCookie, "", -1)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) accessTokenMaxAge(tok *oauth2.Token) int {
	if tok.Expiry.IsZero() {
		return defaultAccessTokenMaxAge
	}
	maxAge := int(tok.Expiry.Sub(h.now()).Seconds())
	if maxAge <= 0 {
		return defaultAccessTokenMaxAge
	}
	return maxAge
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
