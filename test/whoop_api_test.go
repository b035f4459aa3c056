package test

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	liveToken    = "live-token"
	goodAuthCode = "good-code"
)

// fakeWhoopApi serves the record streams, the basic profile and the oauth token endpoint.
// Records are placed relative to the current day, recovery is split over two pages.
type fakeWhoopApi struct {
	mu       sync.Mutex
	requests map[string]int
}

func newFakeWhoopApi() *fakeWhoopApi {
	return &fakeWhoopApi{
		requests: make(map[string]int),
	}
}

func (a *fakeWhoopApi) requestCount(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests[path]
}

func daysAgo(days int) string {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -days).Add(6 * time.Hour).Format(time.RFC3339)
}

func (a *fakeWhoopApi) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.requests[r.URL.Path]++
	a.mu.Unlock()

	if r.URL.Path == "/oauth/oauth2/token" {
		a.handleToken(w, r)
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+liveToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "invalid token"}`))
		return
	}

	var body any
	switch r.URL.Path {
	case "/v2/recovery":
		if r.URL.Query().Get("nextToken") == "" {
			body = map[string]any{
				"records": []any{
					map[string]any{"created_at": daysAgo(1), "score": map[string]any{"recovery_score": 80}},
				},
				"next_token": "page-2",
			}
		} else {
			body = map[string]any{
				"records": []any{
					map[string]any{"created_at": daysAgo(2), "score": map[string]any{"recovery_score": 20}},
				},
			}
		}
	case "/v2/activity/sleep":
		body = map[string]any{
			"records": []any{
				map[string]any{
					"start": daysAgo(1),
					"score": map[string]any{
						"sleep_performance_percentage": 91,
						"stage_summary": map[string]any{
							"total_in_bed_time_milli": 8 * 3600 * 1000,
							"total_awake_time_milli":  3600 * 1000,
						},
					},
				},
			},
		}
	case "/v2/cycle":
		body = map[string]any{
			"records": []any{
				map[string]any{"start": daysAgo(1), "score": map[string]any{"strain": 12.5}},
			},
		}
	case "/v2/user/profile/basic":
		body = map[string]any{
			"user_id":    10129,
			"email":      "jane@example.com",
			"first_name": "Jane",
			"last_name":  "Doe",
		}
	default:
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (a *fakeWhoopApi) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("code") != goodAuthCode ||
		r.PostForm.Get("client_id") != testClientID ||
		r.PostForm.Get("client_secret") != testClientSecret ||
		!strings.HasSuffix(r.PostForm.Get("redirect_uri"), "/auth/whoop/callback") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{
		"access_token": "` + liveToken + `",
		"refresh_token": "refresh-token",
		"token_type": "bearer",
		"expires_in": 3600
	}`))
}
