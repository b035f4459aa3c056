package misc

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouterForTests(t *testing.T, versionInfo string) *mux.Router {
	t.Helper()
	r := mux.NewRouter()
	NewHandler(versionInfo).SetupRoutes(r)
	return r
}

func TestHandler_Root(t *testing.T) {
	r := setupRouterForTests(t, "")

	req, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "whoop grid: I'm OK, thanks ;)", rr.Body.String())
}

func TestHandler_Version(t *testing.T) {
	rr := httptest.NewRecorder()
	setupRouterForTests(t, "c0ffee").ServeHTTP(rr, httptest.NewRequest("GET", "/version", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "c0ffee", rr.Body.String())

	rr = httptest.NewRecorder()
	setupRouterForTests(t, "").ServeHTTP(rr, httptest.NewRequest("GET", "/version", nil))
	assert.Equal(t, "unknown", rr.Body.String())
}

func TestHandler_MyIp(t *testing.T) {
	r := setupRouterForTests(t, "")

	req := httptest.NewRequest("GET", "/myip", nil)
	req.Header.Set("X-Forwarded-For", "93.87.11.2, 10.0.0.1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "93.87.11.2", rr.Body.String())

	req = httptest.NewRequest("GET", "/myip", nil)
	req.RemoteAddr = "not an address"
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
