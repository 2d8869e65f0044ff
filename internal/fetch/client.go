// Package fetch implements the HTTP fetcher that pulls endpoint responses
// from the environments under comparison, satisfying parity.Fetcher.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/ratelimit"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 10 << 20 // 10 MiB
)

// Options configures a Client.
type Options struct {
	// Timeout bounds one request end to end. Zero means 15s.
	Timeout time.Duration
	// RPS rate-limits requests per target host. Zero means unlimited.
	RPS   float64
	Burst int
	// Tokens maps environment name to a bearer token sent with its requests.
	Tokens map[string]string
	// MaxBodyBytes caps response bodies. Zero means 10 MiB.
	MaxBodyBytes int64
	UserAgent    string
}

// Client fetches endpoints over HTTP. It never returns Go errors from Fetch:
// everything that goes wrong becomes a failure outcome.
type Client struct {
	httpClient   *http.Client
	limiter      *ratelimit.PerHostLimiter
	tokens       map[string]string
	maxBodyBytes int64
	userAgent    string
}

// New creates a Client with an OTel-instrumented transport.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return NewWithHTTPClient(httpClient, opts)
}

// NewWithHTTPClient creates a Client with a custom HTTP client (for testing).
func NewWithHTTPClient(httpClient *http.Client, opts Options) *Client {
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Client{
		httpClient:   httpClient,
		limiter:      ratelimit.NewPerHostLimiter(opts.RPS, opts.Burst),
		tokens:       opts.Tokens,
		maxBodyBytes: maxBody,
		userAgent:    opts.UserAgent,
	}
}

// Fetch retrieves one endpoint from one environment. Non-2xx statuses are
// success outcomes; the status code is part of the contract under
// comparison. Transport errors, rate-limit cancellation, and oversized
// bodies are failure outcomes.
func (c *Client) Fetch(ctx context.Context, env parity.Environment, spec parity.EndpointSpec) parity.Outcome {
	u, err := joinURL(env.BaseURL, spec.Path)
	if err != nil {
		return parity.FailureOutcome(fmt.Sprintf("invalid URL: %v", err))
	}

	if err := c.limiter.Wait(ctx, u.Host); err != nil {
		return parity.FailureOutcome(err.Error())
	}

	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return parity.FailureOutcome(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.tokens[env.Name]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return parity.FailureOutcome(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return parity.FailureOutcome(fmt.Sprintf("read body: %v", err))
	}
	if int64(len(body)) > c.maxBodyBytes {
		return parity.FailureOutcome(fmt.Sprintf("body exceeds %d bytes", c.maxBodyBytes))
	}

	return parity.SuccessOutcome(resp.StatusCode, resp.Header, body)
}

// joinURL resolves an endpoint path (optionally carrying a query string)
// against an environment base URL, preserving any base path prefix.
func joinURL(base, path string) (*url.URL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base %q must be absolute", base)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	joined := u.JoinPath(ref.Path)
	joined.RawQuery = ref.RawQuery
	return joined, nil
}
