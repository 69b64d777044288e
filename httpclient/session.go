package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// session coordinates the single-flight refresh of the httpOnly cookie pair.
//
// The refreshing flag and the waiter queue are the only shared mutable state
// in the client; both are guarded by mu. At most one refresh call is ever in
// flight: the first request that observes a 401 becomes the leader and
// issues POST /auth/refresh, every concurrent 401 enqueues a one-shot
// completion handle and suspends. When the refresh settles, the queue is
// drained in FIFO order and every handle receives the same outcome.
type session struct {
	transport  http.RoundTripper
	cfg        *internalConfig
	jar        http.CookieJar
	refreshURL *url.URL

	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
}

func newSession(transport http.RoundTripper, cfg *internalConfig) *session {
	u, err := cfg.refreshURL()
	if err != nil {
		// An unparseable base URL fails on first use with a clear error
		// rather than at construction time.
		u = nil
	}
	return &session{
		transport:  transport,
		cfg:        cfg,
		jar:        cfg.Jar,
		refreshURL: u,
	}
}

// refresh mints a new cookie pair, collapsing concurrent demand into a
// single refresh call. The returned error is the shared outcome: nil means
// the caller may replay its original request.
func (s *session) refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.refreshing {
		waiter := make(chan error, 1)
		s.waiters = append(s.waiters, waiter)
		s.mu.Unlock()

		select {
		case err := <-waiter:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.refreshing = true
	s.mu.Unlock()

	err := s.doRefresh(ctx)
	if err != nil {
		// Wrap before the broadcast so the leader and every queued waiter
		// reject with the same error.
		err = fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	s.mu.Lock()
	s.refreshing = false
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	// Drain in enqueue order. Buffered channels make the broadcast
	// non-blocking even for waiters that already gave up on their context.
	for _, waiter := range waiters {
		waiter <- err
	}

	if err != nil {
		s.cfg.Logger.Warn().Err(err).Msg("session refresh failed")
		s.cfg.Metrics.recordRefresh(ctx, false)
		// The session is unrecoverable. The hook fires once per failed
		// refresh, not once per suspended request.
		if s.cfg.OnSessionExpired != nil {
			s.cfg.OnSessionExpired()
		}
		return err
	}

	s.cfg.Metrics.recordRefresh(ctx, true)
	return nil
}

// doRefresh performs the actual POST /auth/refresh call through the inner
// transport chain, below the 401 handling so it can never recurse.
func (s *session) doRefresh(ctx context.Context) error {
	if s.refreshURL == nil {
		return fmt.Errorf("invalid base URL %q", s.cfg.BaseURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.refreshURL.String(), http.NoBody)
	if err != nil {
		return err
	}
	if s.cfg.BypassToken != "" {
		req.Header.Set(bypassHeader, s.cfg.BypassToken)
	}
	// The jar is applied by http.Client, which this call bypasses, so the
	// refresh cookie is attached by hand.
	s.applyCookies(req)

	resp, err := s.transport.RoundTrip(req)
	if err != nil {
		return fmt.Errorf("refresh call: %w", err)
	}
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// Store the fresh cookie pair so replayed requests carry it.
		s.jar.SetCookies(s.refreshURL, resp.Cookies())
		return nil
	}
	if readErr != nil {
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return DecodeEnvelope(body, resp.StatusCode, nil)
}

// applyCookies rewrites the request's Cookie header from the jar.
func (s *session) applyCookies(req *http.Request) {
	req.Header.Del("Cookie")
	for _, cookie := range s.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}
}

// maxErrorBodySize bounds how much of an error response body is read when
// normalizing failures.
const maxErrorBodySize = 64 << 10
