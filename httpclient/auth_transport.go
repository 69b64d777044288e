package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// retriedKey marks a request that has already been replayed after a
// refresh. A second 401 on a marked request is terminal.
type retriedKey struct{}

// authTransport is the outermost RoundTripper. It attaches the ambient
// headers every request needs and implements the 401 refresh-and-retry
// protocol on top of the session coordinator.
type authTransport struct {
	next    http.RoundTripper
	session *session
	cfg     *internalConfig
}

func newAuthTransport(next http.RoundTripper, sess *session, cfg *internalConfig) http.RoundTripper {
	return &authTransport{
		next:    next,
		session: sess,
		cfg:     cfg,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.injectHeaders(req)

	// Capture the body up front so the request can be replayed after a
	// refresh. Requests built by the RequestBuilder always carry GetBody.
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

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if t.cfg.DisableRefresh || t.isAuthEndpoint(req) {
		return resp, nil
	}
	if req.Context().Value(retriedKey{}) != nil {
		// Already retried once. Surface the 401 as-is; the response layer
		// normalizes it into an auth error. Issuing another refresh here
		// would open an infinite loop.
		return resp, nil
	}

	drainBody(resp)

	if err := t.session.refresh(req.Context()); err != nil {
		return nil, err
	}

	// Give freshly minted cookies a moment to settle before the replay.
	if t.cfg.RefreshSettleDelay > 0 {
		select {
		case <-time.After(t.cfg.RefreshSettleDelay):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	retry, err := t.cloneForRetry(req, bodyBytes)
	if err != nil {
		return nil, err
	}
	return t.next.RoundTrip(retry)
}

// injectHeaders adds the tunnel bypass token and a correlation ID unless the
// caller already set them.
func (t *authTransport) injectHeaders(req *http.Request) {
	if t.cfg.BypassToken != "" && req.Header.Get(bypassHeader) == "" {
		req.Header.Set(bypassHeader, t.cfg.BypassToken)
	}
	if req.Header.Get(correlationHeader) == "" {
		req.Header.Set(correlationHeader, uuid.NewString())
	}
}

// isAuthEndpoint reports whether req targets the session endpoints that must
// never trigger a refresh: a 401 from login or refresh is a genuine failure.
func (t *authTransport) isAuthEndpoint(req *http.Request) bool {
	path := req.URL.Path
	return strings.HasSuffix(path, "/auth/refresh") || strings.HasSuffix(path, "/auth/login")
}

// cloneForRetry rebuilds the request with the retried marker, a fresh body,
// and the cookie pair minted by the refresh.
func (t *authTransport) cloneForRetry(req *http.Request, bodyBytes []byte) (*http.Request, error) {
	ctx := context.WithValue(req.Context(), retriedKey{}, true)
	retry := req.Clone(ctx)

	switch {
	case bodyBytes != nil:
		retry.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		retry.ContentLength = int64(len(bodyBytes))
	case req.GetBody != nil:
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}

	// http.Client attached jar cookies before the first attempt; swap them
	// for the refreshed pair.
	retry.Header.Del("Cookie")
	for _, cookie := range t.session.jar.Cookies(retry.URL) {
		retry.AddCookie(cookie)
	}
	return retry, nil
}

// drainBody discards and closes a response body so the underlying
// connection can be reused.
func drainBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
	resp.Body.Close()
}
