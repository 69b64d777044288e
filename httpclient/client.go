package httpclient

import (
	"context"
	"net/http"
	"strings"
)

// Client is the authenticated FlowMastery API client. Every request carries
// the tunnel bypass header and the session cookies, and the transport chain
// transparently recovers from access-token expiry exactly once per request.
//
// Construct one Client per application session:
//
//	client := httpclient.New(
//	    httpclient.WithBaseURL("https://api.flowmastery.app"),
//	    httpclient.WithServiceName("dashboard"),
//	)
type Client struct {
	httpClient     *http.Client
	config         *internalConfig
	baseURL        string
	apiPrefix      string
	defaultHeaders http.Header
	session        *session
	debug          bool
}

// New creates a Client with the full transport chain:
//
//	auth refresh → otel → 307 correction → coalesce → breaker → retry → rate limit → pool
//
// WithFaultConfig slots a fault-injection layer just above the pool.
//
// All refresh state lives inside the returned Client, so the single-flight
// invariant holds per instance and fresh instances are independent.
func New(opts ...Option) *Client {
	cfg := newConfig(opts...)

	chain := cfg.buildTransport()
	if cfg.Fault != nil {
		chain = newFaultTransport(chain, *cfg.Fault)
	}
	chain = newRateLimitTransport(chain, cfg.RateLimit)
	chain = newRetryTransport(chain, cfg)
	chain = newCircuitBreakerTransport(chain, cfg)
	chain = newCoalesceTransport(chain, cfg)
	chain = newRedirectTransport(chain, cfg)
	chain = newOtelTransport(chain, cfg)

	sess := newSession(chain, cfg)
	top := newAuthTransport(chain, sess, cfg)

	httpClient := &http.Client{
		Transport: top,
		Jar:       cfg.Jar,
		Timeout:   cfg.httpConfig.Timeout,
	}

	return &Client{
		httpClient:     httpClient,
		config:         cfg,
		baseURL:        cfg.BaseURL,
		apiPrefix:      cfg.APIPrefix,
		defaultHeaders: cfg.DefaultHeaders,
		session:        sess,
		debug:          cfg.Debug,
	}
}

// HTTP returns the underlying *http.Client for advanced use cases, such as
// passing it to libraries that expect one. Requests made through it still go
// through the full transport chain.
func (c *Client) HTTP() *http.Client {
	return c.httpClient
}

// Request creates a RequestBuilder for the named operation. The operation
// name labels spans, metrics and debug logs.
func (c *Client) Request(operationName string) *RequestBuilder {
	return &RequestBuilder{
		client:        c,
		operationName: operationName,
		headers:       make(http.Header),
		pathParams:    make(map[string]string),
	}
}

// Get issues a GET request and unwraps the response envelope into out.
// Pass nil when the payload is not needed.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	_, err := c.Request(http.MethodGet).Decode(out).Get(ctx, path)
	return err
}

// Post issues a POST request with a JSON body and unwraps the response
// envelope into out. Either body or out may be nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.Request(http.MethodPost).Body(body).Decode(out).Post(ctx, path)
	return err
}

// Put issues a PUT request with a JSON body and unwraps the response
// envelope into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	_, err := c.Request(http.MethodPut).Body(body).Decode(out).Put(ctx, path)
	return err
}

// Patch issues a PATCH request with a JSON body and unwraps the response
// envelope into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	_, err := c.Request(http.MethodPatch).Body(body).Decode(out).Patch(ctx, path)
	return err
}

// Delete issues a DELETE request and unwraps the response envelope into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	_, err := c.Request(http.MethodDelete).Decode(out).Delete(ctx, path)
	return err
}

// joinURL concatenates a base URL and a path without duplicating slashes.
func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
