// Package httputil provides retry helpers shared by the model provider
// clients.
//
// # Retry
//
// [Retry] re-runs an operation for transient failures only. Callers mark
// such failures by wrapping them in [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Every other error is returned immediately. The delay doubles after each
// attempt unless the server named its own delay with a Retry-After header,
// which [ParseRetryAfter] decodes:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    if httputil.RetryableStatus(resp.StatusCode) {
//	        return &httputil.RetryableError{
//	            Err:   fmt.Errorf("status %d", resp.StatusCode),
//	            After: httputil.ParseRetryAfter(resp.Header.Get("Retry-After")),
//	        }
//	    }
//	    return nil
//	})
//
// # Configuration
//
// The caller picks the attempt count and first delay. The provider clients
// default to 3 attempts starting at 1 second. Server-requested delays are
// capped at [MaxRetryAfter].
package httputil
