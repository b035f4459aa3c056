package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/2beens/whoopgrid/internal/auth"
	"github.com/2beens/whoopgrid/internal/daily"
	"github.com/2beens/whoopgrid/internal/whoop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *IntegrationTestSuite) get(ctx context.Context, path, token string) *http.Response {
	t := s.T()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverEndpoint+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decode[T any](t require.TestingT, resp *http.Response) T {
	var v T
	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(respBytes, &v), string(respBytes))
	return v
}

func (s *IntegrationTestSuite) TestDailyMetrics() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp := s.get(ctx, "/whoop/daily-metrics?days=3", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.get(ctx, "/whoop/daily-metrics?days=3", liveToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	series := decode[[]daily.DailyMetric](t, resp)
	require.Len(t, series, 3)

	twoDaysAgo, yesterday, today := series[0], series[1], series[2]
	require.NotNil(t, twoDaysAgo.Recovery)
	assert.InDelta(t, 20, *twoDaysAgo.Recovery, 0.001)
	assert.Nil(t, twoDaysAgo.Strain)

	require.NotNil(t, yesterday.Recovery)
	assert.InDelta(t, 80, *yesterday.Recovery, 0.001)
	require.NotNil(t, yesterday.SleepPerformance)
	assert.InDelta(t, 91, *yesterday.SleepPerformance, 0.001)
	require.NotNil(t, yesterday.SleepHours)
	assert.InDelta(t, 7, *yesterday.SleepHours, 0.001)
	require.NotNil(t, yesterday.Strain)
	assert.InDelta(t, 12.5, *yesterday.Strain, 0.001)

	assert.True(t, today.Empty())

	// the second recovery page was followed
	assert.GreaterOrEqual(t, s.whoopApi.requestCount("/v2/recovery"), 2)

	resp = s.get(ctx, "/whoop/daily-metrics?days=999", liveToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestHeatmap() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type heatmapResponse struct {
		Metric string `json:"metric"`
		Cells  []struct {
			Date        string   `json:"date"`
			RawValue    *float64 `json:"rawValue"`
			ColorBucket string   `json:"colorBucket"`
		} `json:"cells"`
		Legend []any `json:"legend"`
		Mock   bool  `json:"mock"`
	}

	resp := s.get(ctx, "/whoop/heatmap?metric=recovery&days=7", liveToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	live := decode[heatmapResponse](t, resp)
	assert.False(t, live.Mock)
	assert.Equal(t, "recovery", live.Metric)
	require.Len(t, live.Cells, 7)
	assert.Equal(t, "high", live.Cells[5].ColorBucket)
	assert.Equal(t, "low", live.Cells[4].ColorBucket)
	assert.Equal(t, "none", live.Cells[6].ColorBucket)
	assert.Len(t, live.Legend, 3)

	// no whoop session, generated data instead
	resp = s.get(ctx, "/whoop/heatmap?metric=strain&days=30", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mock := decode[heatmapResponse](t, resp)
	assert.True(t, mock.Mock)
	assert.Len(t, mock.Cells, 30)

	resp = s.get(ctx, "/whoop/heatmap?metric=hrv", liveToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestProfileAndTestFetch() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp := s.get(ctx, "/whoop/profile", liveToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := decode[whoop.Profile](t, resp)
	assert.Equal(t, int64(10129), profile.UserID)
	assert.Equal(t, "Jane", profile.FirstName)

	// served from the in-memory cache the second time
	profileRequests := s.whoopApi.requestCount("/v2/user/profile/basic")
	resp = s.get(ctx, "/whoop/profile", liveToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, profileRequests, s.whoopApi.requestCount("/v2/user/profile/basic"))

	resp = s.get(ctx, "/whoop/profile", "expired-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.get(ctx, "/whoop/test-fetch", liveToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testFetch := decode[struct {
		Status int             `json:"status"`
		Json   json.RawMessage `json:"json"`
		Raw    string          `json:"raw"`
	}](t, resp)
	assert.Equal(t, http.StatusOK, testFetch.Status)
	assert.Contains(t, testFetch.Raw, "recovery_score")
}

func (s *IntegrationTestSuite) TestOAuthLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp := s.get(ctx, "/auth/whoop/login", "")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/oauth/oauth2/auth", location.Path)
	assert.Equal(t, testClientID, location.Query().Get("client_id"))
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	var stateCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.StateCookie {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie)
	assert.Equal(t, state, stateCookie.Value)

	callback := func(code string) *http.Response {
		path := fmt.Sprintf("/auth/whoop/callback?code=%s&state=%s", code, url.QueryEscape(state))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverEndpoint+path, nil)
		require.NoError(t, err)
		req.AddCookie(stateCookie)
		resp, err := noRedirectClient().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = resp.Body.Close()
		})
		return resp
	}

	resp = callback(goodAuthCode)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	cookies := map[string]string{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}
	assert.Equal(t, liveToken, cookies[auth.AccessTokenCookie])
	assert.Equal(t, "refresh-token", cookies[auth.RefreshTokenCookie])

	// the state is single use
	resp = callback(goodAuthCode)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// the issued access token cookie works on the data routes
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverEndpoint+"/whoop/daily-metrics?days=2", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: cookies[auth.AccessTokenCookie]})
	dataResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer dataResp.Body.Close()
	assert.Equal(t, http.StatusOK, dataResp.StatusCode)
}

func (s *IntegrationTestSuite) TestRateLimit() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the whoop api rejects this token, the series comes back empty but still 200
	for i := 0; i < testRatePerMinute; i++ {
		resp := s.get(ctx, "/whoop/daily-metrics?days=1", "rate-limited-token")
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i)
	}

	resp := s.get(ctx, "/whoop/daily-metrics?days=1", "rate-limited-token")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// other callers are not affected
	resp = s.get(ctx, "/whoop/daily-metrics?days=1", "another-token")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestMetricsEndpoint() {
	t := s.T()

	resp, err := http.Get(fmt.Sprintf("http://%s:2137/metrics", serverHost))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "whoopgrid_main_life_signal"), "life signal gauge exported")
}
