package whoop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/2beens/whoopgrid/internal/telemetry/metrics"
	"github.com/2beens/whoopgrid/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// example API call
// https://api.prod.whoop.com/developer/v2/recovery?start=2024-01-01T00:00:00Z&end=2024-01-31T10:00:00Z&limit=25

const (
	DefaultPageLimit = 25
	DefaultMaxPages  = 10

	// read at most this much of a single response body
	maxBodyBytes = 5 << 20
)

var ErrMissingCredential = errors.New("missing whoop access token")

type StopReason string

const (
	StopExhausted     StopReason = "exhausted"
	StopRepeatedToken StopReason = "repeated_token"
	StopPageCap       StopReason = "page_cap"
	StopFailed        StopReason = "failed"
)

// FetchResult is what a single stream yielded. A failed page ends pagination,
// Records then holds everything read before the failure and Err holds the cause.
type FetchResult struct {
	Stream  Stream
	Records []RawRecord
	Pages   int
	Stop    StopReason
	Err     error
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("whoop api status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	apiURL         string
	httpClient     *http.Client
	pageLimit      int
	maxPages       int
	profileCache   *freecache.Cache
	metricsManager *metrics.Manager
}

type NewClientParams struct {
	ApiURL         string // https://api.prod.whoop.com/developer
	HttpClient     *http.Client
	PageLimit      int
	MaxPages       int
	MetricsManager *metrics.Manager
}

func NewClient(params NewClientParams) *Client {
	megabyte := 1024 * 1024

	c := &Client{
		apiURL:         params.ApiURL,
		httpClient:     params.HttpClient,
		pageLimit:      params.PageLimit,
		maxPages:       params.MaxPages,
		profileCache:   freecache.NewCache(5 * megabyte),
		metricsManager: params.MetricsManager,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.pageLimit <= 0 {
		c.pageLimit = DefaultPageLimit
	}
	if c.maxPages <= 0 {
		c.maxPages = DefaultMaxPages
	}

	return c
}

// Fetch reads all pages of one record stream within the window, following continuation
// tokens until there are none, the same token comes back twice, or the page cap is hit.
// It never fails as a whole: the result may be partial, see FetchResult.
// A pageLimit <= 0 uses the client default.
func (c *Client) Fetch(ctx context.Context, token string, stream Stream, window TimeWindow, pageLimit int) FetchResult {
	ctx, span := tracing.GlobalTracer.Start(ctx, "whoop.client.fetch")
	result := FetchResult{Stream: stream}
	defer func() {
		span.SetAttributes(
			attribute.String("stream", string(stream)),
			attribute.Int("pages", result.Pages),
			attribute.Int("records", len(result.Records)),
			attribute.String("stop", string(result.Stop)),
		)
		tracing.EndSpanWithErrCheck(span, result.Err)
		c.observeFetch(result)
	}()

	if token == "" {
		result.Stop = StopFailed
		result.Err = ErrMissingCredential
		return result
	}
	if pageLimit <= 0 {
		pageLimit = c.pageLimit
	}

	var nextToken string
	for {
		p, err := c.fetchPage(ctx, token, stream, window, pageLimit, nextToken)
		if err != nil {
			log.Warnf("whoop %s: page %d failed, keeping %d records: %s", stream, result.Pages+1, len(result.Records), err)
			result.Stop = StopFailed
			result.Err = err
			return result
		}

		result.Pages++
		result.Records = append(result.Records, p.Records...)

		switch {
		case p.NextToken == "":
			result.Stop = StopExhausted
		case p.NextToken == nextToken:
			log.Warnf("whoop %s: continuation token [%s] repeated, stopping", stream, p.NextToken)
			result.Stop = StopRepeatedToken
		case result.Pages >= c.maxPages:
			log.Warnf("whoop %s: page cap %d reached, stopping", stream, c.maxPages)
			result.Stop = StopPageCap
		}
		if result.Stop != "" {
			log.Debugf("whoop %s: %d records in %d pages (%s)", stream, len(result.Records), result.Pages, result.Stop)
			return result
		}

		nextToken = p.NextToken
	}
}

func (c *Client) fetchPage(
	ctx context.Context,
	token string,
	stream Stream,
	window TimeWindow,
	pageLimit int,
	nextToken string,
) (*page, error) {
	query := url.Values{}
	query.Set("start", window.Start.UTC().Format(time.RFC3339))
	query.Set("end", window.End.UTC().Format(time.RFC3339))
	query.Set("limit", strconv.Itoa(pageLimit))
	if nextToken != "" {
		query.Set("nextToken", nextToken)
	}

	status, body, err := c.get(ctx, token, stream.Path(), query)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &StatusError{StatusCode: status, Body: string(body)}
	}

	return parsePage(body)
}

// RawPage returns the status and the untouched body of the first page of a stream.
// Used for debugging the API contract.
func (c *Client) RawPage(ctx context.Context, token string, stream Stream, pageLimit int) (int, []byte, error) {
	if token == "" {
		return 0, nil, ErrMissingCredential
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageLimit))
	return c.get(ctx, token, stream.Path(), query)
}

func (c *Client) get(ctx context.Context, token, path string, query url.Values) (int, []byte, error) {
	reqURL := c.apiURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	log.Tracef("calling whoop api: %s", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read whoop api response bytes: %w", err)
	}

	return resp.StatusCode, respBytes, nil
}

func (c *Client) observeFetch(result FetchResult) {
	if c.metricsManager == nil {
		return
	}
	c.metricsManager.CounterWhoopPages.WithLabelValues(string(result.Stream)).Add(float64(result.Pages))
	c.metricsManager.CounterWhoopFetchStops.WithLabelValues(string(result.Stream), string(result.Stop)).Inc()
}
