package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrResponseTooLarge is wrapped by a TransportError when a response body
// exceeds the 8 MiB read limit.
var ErrResponseTooLarge = errors.New("klipy: response body too large")

// InvalidURLError means an endpoint could not be turned into a request. It
// points at a defect in the endpoint or base URL, not a transient condition.
type InvalidURLError struct {
	Raw string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("klipy: invalid request url %q: %v", e.Raw, e.Err)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }

// TransportError wraps a failure below HTTP: DNS, TLS, resets, timeouts and
// context cancellation.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("klipy: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError carries a non-2xx response.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("klipy: unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// DecodingError means a 2xx body did not match the expected shape.
type DecodingError struct {
	Type string
	Body []byte
	Err  error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("klipy: decode %s: %v", e.Type, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// IsRetryable reports whether repeating the call may succeed: transport
// failures other than caller cancellation and oversized bodies, 429 and 5xx
// responses.
func IsRetryable(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, ErrResponseTooLarge)
	}
	code := StatusCode(err)
	return code == http.StatusTooManyRequests || code >= 500
}
