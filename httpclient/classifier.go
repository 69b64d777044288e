package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
)

// RetryClassifier decides whether a failed attempt should be retried.
// Returning true schedules another attempt with backoff.
type RetryClassifier func(resp *http.Response, err error) bool

// DefaultClassifier retries transient failures only:
//
//   - network errors (refused, reset, timeout, DNS)
//   - 429 Too Many Requests
//   - 502, 503, 504 upstream failures
//
// Everything else, notably 4xx responses, is permanent. 401 in particular is
// never retried here; the refresh protocol above this layer owns it.
func DefaultClassifier(resp *http.Response, err error) bool {
	if err != nil {
		return isRetryableNetworkError(err)
	}
	if resp == nil {
		return false
	}
	return isRetryableStatusCode(resp.StatusCode)
}

func isRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func isRetryableNetworkError(err error) bool {
	if err == nil {
		return false
	}
	// A canceled or expired context is the caller's decision, not a
	// transient fault.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return !dnsErr.IsNotFound
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// StatusCodeClassifier retries only on the given status codes.
func StatusCodeClassifier(codes ...int) RetryClassifier {
	set := make(map[int]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return func(resp *http.Response, err error) bool {
		if err != nil {
			return isRetryableNetworkError(err)
		}
		if resp == nil {
			return false
		}
		_, ok := set[resp.StatusCode]
		return ok
	}
}

// NeverRetryClassifier disables retries entirely.
func NeverRetryClassifier() RetryClassifier {
	return func(*http.Response, error) bool { return false }
}
