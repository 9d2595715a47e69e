package otf_api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// The three upstream hosts. The general API serves member/studio/legacy
// booking endpoints, the IO API serves classes and v2 bookings, and the
// telemetry API serves per-workout time series.
const (
	defaultBaseURL      = "https://api.orangetheory.co"
	defaultIOBaseURL    = "https://api.orangetheory.io"
	defaultTelemetryURL = "https://api.yuzu.orangetheory.com"

	userAgent = "okhttp/4.12.0"

	// Responses are fast once connected, but connection setup to these hosts
	// is observed to be slow, hence the asymmetric budgets.
	responseTimeout = 20 * time.Second
	connectTimeout  = 60 * time.Second

	maxAttempts      = 3
	defaultRetryBase = 4 * time.Second
	defaultRetryCap  = 10 * time.Second

	detailCacheTTL = 600 * time.Second
)

func getEnvVar(key string) string {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load(".env")
	return os.Getenv(key)
}

// Client is a typed client for the OTF API, scoped to one logged-in member.
// It is safe for concurrent read-only use within a process.
type Client struct {
	BaseURL      string
	BaseIOURL    string
	TelemetryURL string

	HTTPClient *http.Client

	Bookings *BookingsAPI
	Members  *MembersAPI
	Studios  *StudiosAPI
	Workouts *WorkoutsAPI

	session   Session
	refreshMu sync.Mutex

	cache  *Cache
	logger *slog.Logger

	retryBase time.Duration
	retryCap  time.Duration
	now       func() time.Time
}

// NewClient builds a client around an authenticated session. Base URLs can be
// overridden with OTF_API_BASE_URL, OTF_API_IO_BASE_URL and
// OTF_API_TELEMETRY_BASE_URL.
func NewClient(session Session) (*Client, error) {
	if session == nil {
		return nil, &ConfigurationError{Message: "a session is required"}
	}

	logger := slog.Default()

	c := &Client{
		BaseURL:      defaultBaseURL,
		BaseIOURL:    defaultIOBaseURL,
		TelemetryURL: defaultTelemetryURL,
		session:      session,
		cache:        NewCache(),
		logger:       logger,
		retryBase:    defaultRetryBase,
		retryCap:     defaultRetryCap,
		now:          time.Now,
	}

	if v := getEnvVar("OTF_API_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := getEnvVar("OTF_API_IO_BASE_URL"); v != "" {
		c.BaseIOURL = v
	}
	if v := getEnvVar("OTF_API_TELEMETRY_BASE_URL"); v != "" {
		c.TelemetryURL = v
	}

	c.HTTPClient = &http.Client{
		Timeout: responseTimeout,
		Transport: Chain(
			&http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
			AddHeader("User-Agent", userAgent),
			TraceRequests(logger),
		),
	}

	c.Bookings = &BookingsAPI{client: c}
	c.Members = &MembersAPI{client: c}
	c.Studios = &StudiosAPI{client: c}
	c.Workouts = &WorkoutsAPI{client: c}

	return c, nil
}

// SetLogger replaces the client's logger. The request-trace middleware keeps
// the logger it was built with; this affects the domain-level warnings.
func (c *Client) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Cache exposes the client's cache handle, mainly so callers can flush it.
func (c *Client) Cache() *Cache { return c.cache }

// MemberUUID is the authenticated member's identifier.
func (c *Client) MemberUUID() string { return c.session.MemberUUID() }

// params carries query parameters. Nil values are dropped entirely; present
// zero values ("0", "false") are kept.
type params map[string]any

func (p params) encode() url.Values {
	values := url.Values{}
	for k, v := range p {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			values.Set(k, val)
		case bool:
			values.Set(k, strconv.FormatBool(val))
		case int:
			values.Set(k, strconv.Itoa(val))
		case float64:
			values.Set(k, strconv.FormatFloat(val, 'f', -1, 64))
		case time.Time:
			values.Set(k, val.UTC().Format("2006-01-02T15:04:05Z"))
		case []string:
			for _, s := range val {
				values.Add(k, s)
			}
		default:
			values.Set(k, fmt.Sprintf("%v", val))
		}
	}
	return values
}

// refreshIfNeeded refreshes the session token when it is expired or about to
// expire. Refreshes are serialized; the expiry check is repeated under the
// lock so concurrent callers refresh once.
func (c *Client) refreshIfNeeded(ctx context.Context) error {
	if !c.session.ExpiresSoon() {
		return nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if !c.session.ExpiresSoon() {
		return nil
	}

	return c.session.Refresh(ctx)
}

// do performs an API request with retry. Retries apply to retryable failures
// only (5xx and network-level errors); terminal 4xx domain errors surface on
// the first attempt.
func (c *Client) do(ctx context.Context, method, baseURL, path string, q params, body any) (json.RawMessage, error) {
	return c.doWithHeaders(ctx, method, baseURL, path, q, body, nil)
}

func (c *Client) doWithHeaders(ctx context.Context, method, baseURL, path string, q params, body any, headers http.Header) (json.RawMessage, error) {
	backoff := c.retryBase

	var out json.RawMessage
	var err error
	for attempt := 1; ; attempt++ {
		out, err = c.doOnce(ctx, method, baseURL, path, q, body, headers)
		if err == nil {
			return out, nil
		}

		var retryable *RetryableRequestError
		if !errors.As(err, &retryable) || attempt >= maxAttempts {
			return nil, err
		}

		c.logger.Debug("retrying request", "method", method, "path", path, "attempt", attempt, "backoff", backoff)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > c.retryCap {
			backoff = c.retryCap
		}
	}
}

func (c *Client) doOnce(ctx context.Context, method, baseURL, path string, q params, body any, headers http.Header) (json.RawMessage, error) {
	if err := c.refreshIfNeeded(ctx); err != nil {
		return nil, err
	}

	fullURL := baseURL + path
	if q != nil {
		if encoded := q.encode().Encode(); encoded != "" {
			fullURL += "?" + encoded
		}
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed marshaling request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("error preparing request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.session.BearerToken())
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		// Timeouts and connection failures are transient by policy.
		return nil, &RetryableRequestError{Path: path, Err: err}
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			c.logger.Debug("error closing response body", "path", path, "error", closeErr)
		}
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &RetryableRequestError{Path: path, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, mapError(res.StatusCode, path, raw)
	}

	return handleBody(method, path, res.StatusCode, raw)
}

// handleBody decodes a 2xx response. An empty successful GET is itself an
// error; empty bodies on writes are fine. A body that parses but carries a
// top-level numeric Status outside [200,299] is a logical error even though
// the HTTP layer said 2xx.
func handleBody(method, path string, status int, raw []byte) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		if method == http.MethodGet {
			return nil, &RequestError{Status: status, Path: path, Message: "empty response"}
		}
		return nil, nil
	}

	if !json.Valid(raw) {
		return nil, &RequestError{Status: status, Path: path, Body: raw, Message: "response is not valid JSON"}
	}

	var probe struct {
		Status *int `json:"Status"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Status != nil {
		if *probe.Status < 200 || *probe.Status > 299 {
			return nil, &RequestError{Status: *probe.Status, Path: path, Body: raw, Message: "bad API response"}
		}
	}

	return json.RawMessage(raw), nil
}

// defaultRequest targets the general API host.
func (c *Client) defaultRequest(ctx context.Context, method, path string, q params, body any) (json.RawMessage, error) {
	return c.do(ctx, method, c.BaseURL, path, q, body)
}

// classesRequest targets the classes/bookings-v2 host.
func (c *Client) classesRequest(ctx context.Context, method, path string, q params, body any) (json.RawMessage, error) {
	return c.do(ctx, method, c.BaseIOURL, path, q, body)
}

// telemetryRequest targets the telemetry host.
func (c *Client) telemetryRequest(ctx context.Context, method, path string, q params) (json.RawMessage, error) {
	return c.do(ctx, method, c.TelemetryURL, path, q, nil)
}

// perfSummaryRequest targets the performance summary endpoints, which live on
// the IO host but require member identification headers.
func (c *Client) perfSummaryRequest(ctx context.Context, method, path string, q params) (json.RawMessage, error) {
	return c.doWithHeaders(ctx, method, c.BaseIOURL, path, q, nil, http.Header{
		"koji-member-id":    []string{c.session.MemberUUID()},
		"koji-member-email": []string{c.session.Email()},
	})
}

// homeStudioUUID resolves the authenticated member's home studio, via the
// cached member detail lookup.
func (c *Client) homeStudioUUID(ctx context.Context) (string, error) {
	raw, err := c.Members.detailRaw(ctx)
	if err != nil {
		return "", err
	}

	var probe struct {
		HomeStudio struct {
			StudioUUID string `json:"studioUUId"`
		} `json:"homeStudio"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", &ValidationError{Field: "homeStudio", Cause: err}
	}
	if probe.HomeStudio.StudioUUID == "" {
		return "", &ValidationError{Field: "homeStudio.studioUUId"}
	}
	return probe.HomeStudio.StudioUUID, nil
}
