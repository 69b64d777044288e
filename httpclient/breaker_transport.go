package httpclient

import (
	"errors"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"
)

// circuitBreakerTransport wraps requests in a circuit breaker.
type circuitBreakerTransport struct {
	breaker    CircuitBreaker
	next       http.RoundTripper
	classifier BreakerClassifier
	cfg        *internalConfig
	name       string
}

// errBreakerFailure signals the breaker that a request failed (e.g. a 5xx
// status) even though RoundTrip returned no error. It is unwrapped before
// returning to the caller.
var errBreakerFailure = errors.New("breaker: classified failure")

func newCircuitBreakerTransport(next http.RoundTripper, cfg *internalConfig) http.RoundTripper {
	if cfg.BreakerConfig == nil {
		return next
	}

	bc := cfg.BreakerConfig
	name := cfg.ServiceName
	if name == "" {
		name = "flowmastery-client"
	}
	classifier := bc.Classifier
	if classifier == nil {
		classifier = DefaultBreakerClassifier
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if bc.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= bc.ConsecutiveFailures {
				return true
			}
			if bc.FailureThreshold > 0 && counts.Requests < bc.FailureThreshold {
				return false
			}
			if bc.FailureRatio > 0 && counts.Requests > 0 {
				return float64(counts.TotalFailures)/float64(counts.Requests) >= bc.FailureRatio
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			cfg.Logger.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			if bc.OnStateChange != nil {
				bc.OnStateChange(name, from, to)
			}
		},
	}

	var cb CircuitBreaker
	if bc.Store != nil {
		dcb, err := gobreaker.NewDistributedCircuitBreaker[interface{}](bc.Store, settings)
		if err != nil {
			// Fall back to a local breaker; process-level protection is
			// still better than none when the store is unreachable.
			cb = gobreaker.NewCircuitBreaker[interface{}](settings)
		} else {
			cb = dcb
		}
	} else {
		cb = gobreaker.NewCircuitBreaker[interface{}](settings)
	}

	return &circuitBreakerTransport{
		breaker:    cb,
		next:       next,
		classifier: classifier,
		cfg:        cfg,
		name:       name,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *circuitBreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.breaker.Execute(func() (interface{}, error) {
		resp, rtErr := t.next.RoundTrip(req) //nolint:bodyclose // caller closes
		if t.classifier(resp, rtErr) {
			if rtErr != nil {
				return resp, rtErr
			}
			return resp, errBreakerFailure
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			t.cfg.Metrics.recordBreakerRejected(req.Context(), t.name)
			return nil, err
		}
		// A classified failure still returns its response to the caller.
		if errors.Is(err, errBreakerFailure) {
			if resp, ok := res.(*http.Response); ok {
				return resp, nil
			}
		}
		return nil, err
	}

	if resp, ok := res.(*http.Response); ok {
		return resp, nil
	}
	return nil, errors.New("breaker: unexpected result type")
}
