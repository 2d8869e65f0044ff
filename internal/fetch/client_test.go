package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contract-parity/parity-go/internal/parity"
)

func testClient(opts Options) *Client {
	return NewWithHTTPClient(&http.Client{Timeout: 5 * time.Second}, opts)
}

func envFor(srv *httptest.Server, name string) parity.Environment {
	return parity.Environment{Name: name, BaseURL: srv.URL}
}

func TestFetch_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/health", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	out := testClient(Options{}).Fetch(context.Background(), envFor(srv, "canary"), parity.EndpointSpec{Name: "health", Path: "/v1/health"})

	require.True(t, out.Success(), "reason: %s", out.Reason)
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(out.Body))
	assert.Equal(t, "application/json", out.Headers.Get("Content-Type"))
}

func TestFetch_Non2xxIsStillSuccess(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	out := testClient(Options{}).Fetch(context.Background(), envFor(srv, "prod"), parity.EndpointSpec{Name: "missing", Path: "/nope"})

	require.True(t, out.Success(), "status codes are contract data, not fetch failures")
	assert.Equal(t, http.StatusNotFound, out.StatusCode)
}

func TestFetch_ConnectionRefused(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse everything

	out := testClient(Options{}).Fetch(context.Background(), envFor(srv, "canary"), parity.EndpointSpec{Name: "x", Path: "/x"})

	require.False(t, out.Success())
	assert.Contains(t, out.Reason, "request failed")
}

func TestFetch_Timeout(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewWithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}, Options{})
	out := c.Fetch(context.Background(), envFor(srv, "canary"), parity.EndpointSpec{Name: "slow", Path: "/slow"})

	require.False(t, out.Success())
	assert.Contains(t, out.Reason, "request failed")
}

func TestFetch_BearerTokenPerEnvironment(t *testing.T) {
	t.Parallel()
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := testClient(Options{Tokens: map[string]string{"canary": "sekret"}})

	c.Fetch(context.Background(), envFor(srv, "canary"), parity.EndpointSpec{Name: "a", Path: "/a"})
	assert.Equal(t, "Bearer sekret", got)

	c.Fetch(context.Background(), envFor(srv, "prod"), parity.EndpointSpec{Name: "a", Path: "/a"})
	assert.Empty(t, got, "no token configured for this environment")
}

func TestFetch_PathQueryPreserved(t *testing.T) {
	t.Parallel()
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	testClient(Options{}).Fetch(context.Background(), envFor(srv, "canary"),
		parity.EndpointSpec{Name: "events", Path: "/v1/events?limit=5&order=asc"})

	assert.Equal(t, "limit=5&order=asc", gotQuery)
}

func TestFetch_BodySizeCap(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	c := testClient(Options{MaxBodyBytes: 1024})
	out := c.Fetch(context.Background(), envFor(srv, "canary"), parity.EndpointSpec{Name: "big", Path: "/big"})

	require.False(t, out.Success())
	assert.Contains(t, out.Reason, "body exceeds 1024 bytes")
}

func TestFetch_InvalidBaseURL(t *testing.T) {
	t.Parallel()
	out := testClient(Options{}).Fetch(context.Background(),
		parity.Environment{Name: "bad", BaseURL: "not a url"},
		parity.EndpointSpec{Name: "x", Path: "/x"})

	require.False(t, out.Success())
	assert.Contains(t, out.Reason, "invalid URL")
}

func TestFetch_MethodOverride(t *testing.T) {
	t.Parallel()
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	testClient(Options{}).Fetch(context.Background(), envFor(srv, "canary"),
		parity.EndpointSpec{Name: "probe", Method: http.MethodHead, Path: "/probe"})

	assert.Equal(t, http.MethodHead, gotMethod)
}

func TestJoinURL_BasePathPrefixPreserved(t *testing.T) {
	t.Parallel()
	u, err := joinURL("https://api.example.com/base", "/v1/events?x=1")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/base/v1/events?x=1", u.String())
}
