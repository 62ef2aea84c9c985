package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	cfg := DefaultConfig("f1-results-pipeline-test/1.0")
	cfg.BaseURL = serverURL
	cfg.Timeout = 2 * time.Second
	cfg.Retry = fastRetry(3)

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "empty base url", mutate: func(c *Config) { c.BaseURL = " " }, errorMsg: "base url is required"},
		{name: "empty user agent", mutate: func(c *Config) { c.UserAgent = "" }, errorMsg: "user-agent is required"},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, errorMsg: "timeout must be > 0 (got 0s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("TestApp/1.0.0")
			tt.mutate(&cfg)

			c, err := New(cfg)
			if tt.errorMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if c == nil {
					t.Fatal("client is nil")
				}
				return
			}
			if err == nil || err.Error() != tt.errorMsg {
				t.Errorf("error = %v, want %q", err, tt.errorMsg)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("TestApp/1.0.0")

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.Redis != nil {
		t.Error("cache should be disabled by default")
	}
	if cfg.Timeout <= 0 {
		t.Errorf("Timeout = %v, should be > 0", cfg.Timeout)
	}
}

func TestGet_HeadersAndQuery(t *testing.T) {
	var gotUA, gotAccept, gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL+"/ergast/f1/")
	body, err := c.Get(context.Background(), "/2021/5/laps.json", url.Values{"limit": {"100"}, "offset": {"0"}})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
	if gotUA != "f1-results-pipeline-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotPath != "/ergast/f1/2021/5/laps.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "limit=100&offset=0" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestGetJSON_Decodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MRData":{"total":"42"}}`))
	}))
	defer server.Close()

	var out struct {
		MRData struct {
			Total string `json:"total"`
		} `json:"MRData"`
	}
	if err := newTestClient(t, server.URL).GetJSON(context.Background(), "/x.json", nil, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out.MRData.Total != "42" {
		t.Errorf("total = %q, want 42", out.MRData.Total)
	}
}

func TestGetJSON_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	var out map[string]any
	err := newTestClient(t, server.URL).GetJSON(context.Background(), "/x.json", nil, &out)
	if ClassOf(err) != ErrorClassDecode {
		t.Errorf("ClassOf(err) = %q, want decode (err=%v)", ClassOf(err), err)
	}
}

func TestGet_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Get(context.Background(), "/1900/results.json", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.ErrorClass != ErrorClassClient {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestGet_ServerErrorRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL).Get(context.Background(), "/2020.json", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestGet_RetryExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Get(context.Background(), "/2020.json", nil)
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("err = %v, want ErrRetryExhausted", err)
	}
}

func TestGet_RateLimitFeedsTracker(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	if _, err := c.Get(context.Background(), "/2020.json", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got := c.RateLimitState().RateLimitedTotal; got != 1 {
		t.Errorf("RateLimitedTotal = %d, want 1", got)
	}
}

func TestGet_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, server.URL).Get(ctx, "/2020.json", nil)
	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("err = %v, want ErrContextCancelled", err)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorClass
	}{
		{200, ""},
		{204, ""},
		{304, ErrorClassClient},
		{400, ErrorClassClient},
		{404, ErrorClassClient},
		{429, ErrorClassRateLimit},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.expected {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.expected)
		}
	}
}

func TestEndpointLabel(t *testing.T) {
	tests := map[string]string{
		"/2021/5/laps.json":           "/{n}/{n}/laps.json",
		"2021/driverStandings/1.json": "/{n}/driverStandings/{n}.json",
		"/circuits.json":              "/circuits.json",
		"/2021.json":                  "/{n}.json",
	}

	for in, want := range tests {
		if got := endpointLabel(in); got != want {
			t.Errorf("endpointLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
