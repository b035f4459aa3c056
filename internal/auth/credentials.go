package auth

import (
	"errors"
	"net/http"
	"strings"
)

const (
	AccessTokenCookie  = "whoop_access_token"
	RefreshTokenCookie = "whoop_refresh_token"
	StateCookie        = "whoop_oauth_state"
)

var ErrMissingCredential = errors.New("no whoop access token found, connect whoop again to authorize")

// CredentialFromRequest returns the whoop bearer token of the request.
// The session cookie set on login wins over an Authorization header.
func CredentialFromRequest(r *http.Request) (string, error) {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if scheme, token, found := strings.Cut(authHeader, " "); found && strings.EqualFold(scheme, "bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token, nil
		}
	}

	return "", ErrMissingCredential
}
