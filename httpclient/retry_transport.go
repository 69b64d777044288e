package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig configures transient-failure retries with exponential backoff.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt.
	// Zero disables retries.
	MaxRetries int

	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay.
	MaxInterval time.Duration

	// Multiplier grows the delay between attempts.
	Multiplier float64

	// MaxElapsedTime bounds the total time spent retrying. Zero means no
	// bound beyond MaxRetries.
	MaxElapsedTime time.Duration
}

// IsEnabled reports whether the configuration allows any retries.
func (rc RetryConfig) IsEnabled() bool {
	return rc.MaxRetries > 0
}

// DefaultRetryConfig retries up to 2 times with 250ms initial backoff.
// Dashboard requests are interactive, so retries stay short.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  10 * time.Second,
	}
}

// DisabledRetryConfig turns transient retries off.
func DisabledRetryConfig() RetryConfig {
	return RetryConfig{}
}

// retryTransport wraps a RoundTripper with classifier-driven retries.
type retryTransport struct {
	base       http.RoundTripper
	cfg        *internalConfig
	classifier RetryClassifier
}

func newRetryTransport(base http.RoundTripper, cfg *internalConfig) http.RoundTripper {
	if !cfg.RetryConfig.IsEnabled() {
		return base
	}
	classifier := cfg.RetryClassifier
	if classifier == nil {
		classifier = DefaultClassifier
	}
	return &retryTransport{
		base:       base,
		cfg:        cfg,
		classifier: classifier,
	}
}

// RoundTrip implements http.RoundTripper with automatic retries.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	rc := t.cfg.RetryConfig

	var bodyBytes []byte
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = rc.InitialInterval
	expo.MaxInterval = rc.MaxInterval
	expo.Multiplier = rc.Multiplier

	attempt := 0
	opts := []backoff.RetryOption{
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(rc.MaxRetries + 1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			attempt++
			t.cfg.Metrics.recordRetry(ctx)
			if t.cfg.Debug {
				t.cfg.Logger.Debug().
					Err(err).
					Int("attempt", attempt).
					Dur("next_delay", next).
					Str("url", req.URL.String()).
					Msg("retrying request")
			}
		}),
	}
	if rc.MaxElapsedTime > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(rc.MaxElapsedTime))
	}

	return backoff.Retry(ctx, func() (*http.Response, error) {
		clone := t.cloneRequest(req, bodyBytes)
		resp, err := t.base.RoundTrip(clone)
		if t.classifier(resp, err) {
			drainBody(resp)
			if err == nil {
				err = &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			}
			return nil, err
		}
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return resp, nil
	}, opts...)
}

// cloneRequest copies the request with a replayable body for the next
// attempt.
func (t *retryTransport) cloneRequest(req *http.Request, bodyBytes []byte) *http.Request {
	clone := req.Clone(req.Context())
	switch {
	case bodyBytes != nil:
		clone.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		clone.ContentLength = int64(len(bodyBytes))
	case req.GetBody != nil:
		if body, err := req.GetBody(); err == nil {
			clone.Body = body
		}
	}
	return clone
}
