package httpclient

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	gobreakerredis "github.com/sony/gobreaker/v2/redis"
)

// CircuitBreaker is the subset of gobreaker used by the breaker transport.
type CircuitBreaker interface {
	Execute(req func() (interface{}, error)) (interface{}, error)
}

// BreakerClassifier reports whether a response or error should count as a
// failure toward tripping the circuit.
type BreakerClassifier func(resp *http.Response, err error) bool

// BreakerConfig configures circuit breaking around backend calls. The
// dashboard uses it to stop hammering the backend while n8n or the proxy in
// front of it is down.
type BreakerConfig struct {
	// MaxRequests is how many probe requests pass while half-open.
	MaxRequests uint32

	// Interval is the cyclic period for clearing counts while closed.
	Interval time.Duration

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the minimum request count before FailureRatio
	// applies.
	FailureThreshold uint32

	// FailureRatio trips the circuit once this share of requests fail.
	FailureRatio float64

	// ConsecutiveFailures trips the circuit after this many sequential
	// failures. Zero disables the rule.
	ConsecutiveFailures uint32

	// Store shares breaker state across instances (Redis). Nil keeps the
	// breaker local.
	Store gobreaker.SharedDataStore

	// Classifier decides what counts as a failure. Defaults to
	// DefaultBreakerClassifier.
	Classifier BreakerClassifier

	// OnStateChange is invoked on circuit state transitions.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns a local breaker tuned for an interactive
// dashboard: trip fast, recover fast.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            10 * time.Second,
		Timeout:             10 * time.Second,
		FailureThreshold:    10,
		FailureRatio:        0.5,
		ConsecutiveFailures: 5,
		Classifier:          DefaultBreakerClassifier,
	}
}

// DistributedBreakerConfig returns a breaker whose state is shared through
// the given store, so every client instance stops together.
func DistributedBreakerConfig(store gobreaker.SharedDataStore) BreakerConfig {
	cfg := DefaultBreakerConfig()
	cfg.Store = store
	return cfg
}

// NewRedisStore adapts a go-redis client into a shared breaker store.
func NewRedisStore(client redis.UniversalClient) gobreaker.SharedDataStore {
	return gobreakerredis.NewStoreFromClient(client)
}

// DefaultBreakerClassifier counts 5xx responses and network errors as
// failures. 429s are left to retry backoff rather than tripping the circuit.
func DefaultBreakerClassifier(resp *http.Response, err error) bool {
	if err != nil {
		return isRetryableNetworkError(err)
	}
	return resp != nil && resp.StatusCode >= 500
}
