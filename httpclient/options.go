package httpclient

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBaseURL points at the local development backend.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultAPIPrefix is the versioned path segment prepended to every
	// request path.
	DefaultAPIPrefix = "/api/v1"

	// bypassHeader is required on every request so the tunneling proxy in
	// front of the backend does not serve its interstitial page.
	bypassHeader = "ngrok-skip-browser-warning"

	// correlationHeader carries a client-generated request ID the backend
	// echoes back in error envelopes.
	correlationHeader = "X-Request-ID"

	// refreshPath is the session refresh endpoint, relative to the API
	// prefix.
	refreshPath = "/auth/refresh"

	// DefaultRefreshSettleDelay is the pause between a successful refresh
	// and the replay of suspended requests. It papers over cookie
	// propagation latency observed in some deployments; tune with
	// WithRefreshSettleDelay.
	DefaultRefreshSettleDelay = 100 * time.Millisecond

	defaultTimeout             = 15 * time.Second
	defaultDialTimeout         = 5 * time.Second
	defaultTLSHandshakeTimeout = 5 * time.Second
	defaultIdleConnTimeout     = 90 * time.Second
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
)

// Config holds transport-level tuning for the underlying http.Transport.
type Config struct {
	// Timeout is the total request timeout applied to the http.Client.
	Timeout time.Duration

	// DialTimeout bounds TCP connection establishment.
	DialTimeout time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake.
	TLSHandshakeTimeout time.Duration

	// IdleConnTimeout is how long idle connections stay pooled.
	IdleConnTimeout time.Duration

	// MaxIdleConns caps the total idle connection pool.
	MaxIdleConns int

	// MaxIdleConnsPerHost caps idle connections per backend host.
	MaxIdleConnsPerHost int
}

// DefaultConfig returns transport settings suitable for the dashboard's
// request volume.
func DefaultConfig() Config {
	return Config{
		Timeout:             defaultTimeout,
		DialTimeout:         defaultDialTimeout,
		TLSHandshakeTimeout: defaultTLSHandshakeTimeout,
		IdleConnTimeout:     defaultIdleConnTimeout,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
	}
}

// internalConfig aggregates all client configuration resolved from options.
type internalConfig struct {
	httpConfig Config

	BaseURL     string
	APIPrefix   string
	ServiceName string

	DefaultHeaders http.Header
	BypassToken    string

	RefreshSettleDelay time.Duration
	OnSessionExpired   func()
	DisableRefresh     bool

	RetryConfig     RetryConfig
	RetryClassifier RetryClassifier
	BreakerConfig   *BreakerConfig
	RateLimit       RateLimitConfig
	Coalesce        bool
	Fault           *FaultConfig

	Debug  bool
	Logger zerolog.Logger

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Metrics        *meters

	Jar           http.CookieJar
	MockTransport http.RoundTripper
}

// Option configures the client during construction.
type Option func(*internalConfig)

func newConfig(opts ...Option) *internalConfig {
	cfg := &internalConfig{
		httpConfig:         DefaultConfig(),
		BaseURL:            DefaultBaseURL,
		APIPrefix:          DefaultAPIPrefix,
		DefaultHeaders:     make(http.Header),
		BypassToken:        "true",
		RefreshSettleDelay: DefaultRefreshSettleDelay,
		RetryConfig:        DefaultRetryConfig(),
		Logger:             defaultLogger,
		TracerProvider:     otel.GetTracerProvider(),
		MeterProvider:      otel.GetMeterProvider(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Jar == nil {
		// cookiejar.New only errors on invalid PublicSuffixList options.
		cfg.Jar, _ = cookiejar.New(nil)
	}

	meter := cfg.MeterProvider.Meter(instrumentationName)
	cfg.Metrics = newMeters(meter)

	return cfg
}

// buildTransport constructs the pooled base http.Transport.
func (cfg *internalConfig) buildTransport() http.RoundTripper {
	if cfg.MockTransport != nil {
		return cfg.MockTransport
	}
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.httpConfig.DialTimeout,
		}).DialContext,
		TLSHandshakeTimeout: cfg.httpConfig.TLSHandshakeTimeout,
		IdleConnTimeout:     cfg.httpConfig.IdleConnTimeout,
		MaxIdleConns:        cfg.httpConfig.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.httpConfig.MaxIdleConnsPerHost,
	}
}

// refreshURL resolves the absolute URL of the session refresh endpoint.
func (cfg *internalConfig) refreshURL() (*url.URL, error) {
	return url.Parse(joinURL(cfg.BaseURL, cfg.APIPrefix+refreshPath))
}

// WithConfig replaces the transport-level configuration.
func WithConfig(c Config) Option {
	return func(cfg *internalConfig) {
		cfg.httpConfig = c
	}
}

// WithBaseURL sets the backend base URL. Defaults to DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(cfg *internalConfig) {
		cfg.BaseURL = baseURL
	}
}

// WithAPIPrefix overrides the versioned API path segment prepended to every
// request path. Defaults to DefaultAPIPrefix.
func WithAPIPrefix(prefix string) Option {
	return func(cfg *internalConfig) {
		cfg.APIPrefix = prefix
	}
}

// WithServiceName labels spans and metrics emitted by this client.
func WithServiceName(name string) Option {
	return func(cfg *internalConfig) {
		cfg.ServiceName = name
	}
}

// WithBypassToken sets the value of the tunnel bypass header sent on every
// request. An empty value disables the header.
func WithBypassToken(token string) Option {
	return func(cfg *internalConfig) {
		cfg.BypassToken = token
	}
}

// WithHeader adds a default header applied to all requests.
func WithHeader(key, value string) Option {
	return func(cfg *internalConfig) {
		cfg.DefaultHeaders.Set(key, value)
	}
}

// WithRefreshSettleDelay tunes the pause between a successful session
// refresh and request replay. Set to zero to replay immediately.
func WithRefreshSettleDelay(d time.Duration) Option {
	return func(cfg *internalConfig) {
		cfg.RefreshSettleDelay = d
	}
}

// WithSessionExpiredHook registers a callback invoked exactly once when a
// session refresh fails and the session is unrecoverable. The dashboard uses
// this to navigate to the login page.
func WithSessionExpiredHook(fn func()) Option {
	return func(cfg *internalConfig) {
		cfg.OnSessionExpired = fn
	}
}

// WithoutRefresh disables the 401 refresh-and-retry protocol. Unauthorized
// responses then pass through as normalized errors.
func WithoutRefresh() Option {
	return func(cfg *internalConfig) {
		cfg.DisableRefresh = true
	}
}

// WithRetryConfig configures transient-failure retries.
func WithRetryConfig(rc RetryConfig) Option {
	return func(cfg *internalConfig) {
		cfg.RetryConfig = rc
	}
}

// WithRetryClassifier overrides the predicate deciding which failures are
// retried.
func WithRetryClassifier(classifier RetryClassifier) Option {
	return func(cfg *internalConfig) {
		cfg.RetryClassifier = classifier
	}
}

// WithBreakerConfig enables circuit breaking with the given configuration.
func WithBreakerConfig(bc BreakerConfig) Option {
	return func(cfg *internalConfig) {
		cfg.BreakerConfig = &bc
	}
}

// WithRateLimitConfig enables client-level rate limiting.
func WithRateLimitConfig(rc RateLimitConfig) Option {
	return func(cfg *internalConfig) {
		cfg.RateLimit = rc
	}
}

// WithFaultConfig enables fault injection below the retry and breaker
// layers. Intended for resilience testing against non-production backends.
func WithFaultConfig(fc FaultConfig) Option {
	return func(cfg *internalConfig) {
		cfg.Fault = &fc
	}
}

// WithCoalescing deduplicates identical concurrent GET requests so only one
// reaches the backend.
func WithCoalescing(enabled bool) Option {
	return func(cfg *internalConfig) {
		cfg.Coalesce = enabled
	}
}

// WithDebug enables request/response logging.
func WithDebug(enabled bool) Option {
	return func(cfg *internalConfig) {
		cfg.Debug = enabled
	}
}

// WithLogger replaces the zerolog logger used for debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *internalConfig) {
		cfg.Logger = logger
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *internalConfig) {
		cfg.TracerProvider = tp
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *internalConfig) {
		cfg.MeterProvider = mp
	}
}

// WithCookieJar replaces the cookie jar holding the session cookie pair.
// Useful for tests that pre-seed a session.
func WithCookieJar(jar http.CookieJar) Option {
	return func(cfg *internalConfig) {
		cfg.Jar = jar
	}
}

// WithMockTransport replaces the base transport, typically with a
// *MockTransport in tests. The full middleware chain (refresh, redirect
// correction, retries) still runs above it.
func WithMockTransport(rt http.RoundTripper) Option {
	return func(cfg *internalConfig) {
		cfg.MockTransport = rt
	}
}
