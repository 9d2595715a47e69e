package otf_api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSession struct {
	token       string
	expiresSoon bool
	refreshed   atomic.Int32
}

func (s *fakeSession) BearerToken() string {
	if s.token != "" {
		return s.token
	}
	return "test-token"
}

func (s *fakeSession) ExpiresSoon() bool { return s.expiresSoon }

func (s *fakeSession) Refresh(ctx context.Context) error {
	s.refreshed.Add(1)
	s.expiresSoon = false
	return nil
}

func (s *fakeSession) MemberUUID() string { return "member-uuid-1" }
func (s *fakeSession) Email() string      { return "member@example.com" }
func (s *fakeSession) CognitoID() string  { return "cognito-sub-1" }

// newTestClient points every host at the given handler and shrinks the retry
// backoff so retry tests finish quickly.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(&fakeSession{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.BaseURL = server.URL
	c.BaseIOURL = server.URL
	c.TelemetryURL = server.URL
	c.retryBase = time.Millisecond
	c.retryCap = 2 * time.Millisecond
	c.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return c
}

func TestNewClientRequiresSession(t *testing.T) {
	_, err := NewClient(nil)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("NewClient(nil) error = %v, want ConfigurationError", err)
	}
}

func TestParamsEncode(t *testing.T) {
	q := params{
		"str":     "hello",
		"zero":    0,
		"flag":    false,
		"skip":    nil,
		"float":   1.5,
		"multi":   []string{"a", "b"},
		"instant": time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
	}.encode()

	if got := q.Get("str"); got != "hello" {
		t.Errorf("str = %q, want hello", got)
	}
	if got := q.Get("zero"); got != "0" {
		t.Errorf("zero = %q, want 0", got)
	}
	if got := q.Get("flag"); got != "false" {
		t.Errorf("flag = %q, want false", got)
	}
	if _, ok := q["skip"]; ok {
		t.Error("nil value was encoded, want it dropped")
	}
	if got := q.Get("float"); got != "1.5" {
		t.Errorf("float = %q, want 1.5", got)
	}
	if got := q["multi"]; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("multi = %v, want [a b]", got)
	}
	if got := q.Get("instant"); got != "2026-09-01T10:30:00Z" {
		t.Errorf("instant = %q, want 2026-09-01T10:30:00Z", got)
	}
}

func TestDoSendsAuthAndUserAgent(t *testing.T) {
	var gotAuth, gotAgent string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	if _, err := c.defaultRequest(context.Background(), http.MethodGet, "/ping", nil, nil); err != nil {
		t.Fatalf("request returned error: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", gotAuth)
	}
	if gotAgent != userAgent {
		t.Errorf("User-Agent = %q, want %q", gotAgent, userAgent)
	}
}

func TestDoRefreshesExpiredSession(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	session := &fakeSession{expiresSoon: true}
	c.session = session

	if _, err := c.defaultRequest(context.Background(), http.MethodGet, "/ping", nil, nil); err != nil {
		t.Fatalf("request returned error: %v", err)
	}
	if got := session.refreshed.Load(); got != 1 {
		t.Fatalf("refresh count = %d, want 1", got)
	}
}

func TestDoEmptyGetResponseIsError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	_, err := c.defaultRequest(context.Background(), http.MethodGet, "/empty", nil, nil)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want RequestError", err)
	}
}

func TestDoEmptyWriteResponseIsFine(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	raw, err := c.defaultRequest(context.Background(), http.MethodDelete, "/thing", nil, nil)
	if err != nil {
		t.Fatalf("DELETE with empty response returned error: %v", err)
	}
	if raw != nil {
		t.Fatalf("raw = %q, want nil", raw)
	}
}

func TestDoRejectsInvalidJSON(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))

	_, err := c.defaultRequest(context.Background(), http.MethodGet, "/garbage", nil, nil)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want RequestError", err)
	}
}

func TestDoRejectsLogicalErrorStatus(t *testing.T) {
	// A 2xx response can still carry a failing top-level Status.
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Status":400,"data":null}`))
	}))

	_, err := c.defaultRequest(context.Background(), http.MethodGet, "/logical", nil, nil)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want RequestError", err)
	}
	if reqErr.Status != 400 {
		t.Fatalf("Status = %d, want 400", reqErr.Status)
	}
}

func TestDoRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	raw, err := c.defaultRequest(context.Background(), http.MethodGet, "/flaky", nil, nil)
	if err != nil {
		t.Fatalf("request returned error after transient failures: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Fatalf("raw = %q, want the final body", raw)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("server calls = %d, want 3", got)
	}
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.defaultRequest(context.Background(), http.MethodGet, "/down", nil, nil)
	var retryErr *RetryableRequestError
	if !errors.As(err, &retryErr) {
		t.Fatalf("error = %v, want RetryableRequestError", err)
	}
	if got := calls.Load(); got != maxAttempts {
		t.Fatalf("server calls = %d, want %d", got, maxAttempts)
	}
}

func TestDoDoesNotRetryTerminalErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := c.defaultRequest(context.Background(), http.MethodGet, "/bad", nil, nil)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want RequestError", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("server calls = %d, want 1", got)
	}
}

func TestPerfSummaryRequestSendsKojiHeaders(t *testing.T) {
	var gotID, gotEmail string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("koji-member-id")
		gotEmail = r.Header.Get("koji-member-email")
		_, _ = w.Write([]byte(`{}`))
	}))

	if _, err := c.perfSummaryRequest(context.Background(), http.MethodGet, "/v1/performance-summaries/x", nil); err != nil {
		t.Fatalf("request returned error: %v", err)
	}
	if gotID != "member-uuid-1" {
		t.Errorf("koji-member-id = %q, want member-uuid-1", gotID)
	}
	if gotEmail != "member@example.com" {
		t.Errorf("koji-member-email = %q, want member@example.com", gotEmail)
	}
}

func TestHomeStudioUUID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"memberUUId": "member-uuid-1",
				"homeStudio": map[string]any{"studioUUId": "11111111-1111-1111-1111-111111111111"},
			},
		})
	}))

	got, err := c.homeStudioUUID(context.Background())
	if err != nil {
		t.Fatalf("homeStudioUUID returned error: %v", err)
	}
	if got != "11111111-1111-1111-1111-111111111111" {
		t.Fatalf("home studio = %q", got)
	}
}
