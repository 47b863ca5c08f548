package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Deva-here/ScribbleForge/pkg/httputil"
	"github.com/Deva-here/ScribbleForge/pkg/observability"
)

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 8 << 20

// Client provides shared HTTP functionality for the provider clients.
// It handles retry logic, status mapping, and common request headers.
type Client struct {
	http     *http.Client
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// NewClient creates a Client with default headers applied to every request.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string, opts ...ClientOption) *Client {
	c := &Client{
		http:     NewHTTPClient(),
		headers:  headers,
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTPClient returns the underlying HTTP client, for SDKs that bring their
// own request logic.
func (c *Client) HTTPClient() *http.Client { return c.http }

// PostJSON sends body as JSON to rawURL and returns the raw response body.
// Network failures, 5xx and 429 responses are retried with backoff;
// everything else is returned on the first attempt.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var out []byte
	err = httputil.Retry(ctx, c.attempts, c.delay, func() error {
		out, err = c.doRequest(ctx, http.MethodPost, rawURL, payload)
		return err
	})
	return out, err
}

func (c *Client) doRequest(ctx context.Context, method, rawURL string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	// Path only: the query may carry an API key.
	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	if err := checkStatus(resp.StatusCode, resp.Header, data); err != nil {
		return nil, err
	}
	return data, nil
}

// checkStatus maps an HTTP status to the package sentinels. The provider's
// own error message, when the body carries one, is kept for diagnostics.
func checkStatus(code int, header http.Header, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}

	detail := fmt.Sprintf("status %d", code)
	if msg := upstreamMessage(body); msg != "" {
		detail += ": " + msg
	}

	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{
			Err:   fmt.Errorf("%w: %s", ErrRateLimited, detail),
			After: httputil.ParseRetryAfter(header.Get("Retry-After")),
		}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %s", ErrNetwork, detail)}
	default:
		return fmt.Errorf("%w: %s", ErrNetwork, detail)
	}
}

// upstreamMessage pulls the human-readable error out of a provider error
// body. Both Gemini and OpenAI use {"error": {"message": ...}}.
func upstreamMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	msg := gjson.GetBytes(body, "error.message").String()
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}
