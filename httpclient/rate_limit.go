package httpclient

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures client-level rate limiting. The zero value
// disables it.
type RateLimitConfig struct {
	// RequestsPerSecond is the maximum sustained request rate.
	RequestsPerSecond float64

	// Burst allows brief spikes above the sustained rate.
	Burst int

	// WaitOnLimit selects the behavior at the limit: wait for a token
	// (respecting the context deadline) or fail fast with ErrRateLimited.
	WaitOnLimit bool
}

// DefaultRateLimitConfig allows 50 requests per second with a burst of 10,
// waiting when the limit is hit.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		Burst:             10,
		WaitOnLimit:       true,
	}
}

// ErrRateLimited is returned when a request is rejected by the client-side
// rate limiter.
var ErrRateLimited = errors.New("rate limit exceeded")

type rateLimitTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
	wait    bool
}

func newRateLimitTransport(next http.RoundTripper, cfg RateLimitConfig) http.RoundTripper {
	if cfg.RequestsPerSecond <= 0 {
		return next
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &rateLimitTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		wait:    cfg.WaitOnLimit,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.wait {
		if err := t.limiter.Wait(req.Context()); err != nil {
			// Wait reports deadline problems with its own error that does
			// not wrap the context one. Consult the context directly, and
			// treat a pre-empted "would exceed deadline" the same as an
			// elapsed deadline.
			if ctxErr := req.Context().Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if _, hasDeadline := req.Context().Deadline(); hasDeadline {
				return nil, context.DeadlineExceeded
			}
			return nil, ErrRateLimited
		}
	} else if !t.limiter.Allow() {
		return nil, ErrRateLimited
	}
	return t.next.RoundTrip(req)
}
