package integrations

import (
	"errors"
	"net/http"
	"time"
)

// Model calls routinely take several seconds; image analysis longer.
const httpTimeout = 90 * time.Second

var (
	// ErrNotFound is returned when the model or endpoint does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is returned when the API key is missing or rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned when the provider throttles the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrEmptyResponse is returned when the provider answered without any
	// usable content (no candidates, blocked output, empty text).
	ErrEmptyResponse = errors.New("empty response")
)

// NewHTTPClient creates an HTTP client with a standard timeout for model requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
