package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
)

// redirectedKey marks a request that already consumed its one scheme
// correction.
type redirectedKey struct{}

// redirectTransport works around a backend defect: 307 redirects for paths
// missing a trailing slash are sometimes issued with an http:// Location
// even though the API is only reachable over https. The transport rewrites
// the Location to force HTTPS and re-issues the request once, to the
// absolute redirect URL verbatim. The correction is not recursive; a second
// 307 passes through untouched.
type redirectTransport struct {
	next http.RoundTripper
	cfg  *internalConfig
}

func newRedirectTransport(next http.RoundTripper, cfg *internalConfig) http.RoundTripper {
	return &redirectTransport{next: next, cfg: cfg}
}

// RoundTrip implements http.RoundTripper.
func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
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
	if resp.StatusCode != http.StatusTemporaryRedirect {
		return resp, nil
	}
	if req.Context().Value(redirectedKey{}) != nil {
		return resp, nil
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return resp, nil
	}
	target, perr := url.Parse(location)
	if perr != nil {
		return resp, nil
	}
	if !target.IsAbs() {
		target = req.URL.ResolveReference(target)
	}
	target.Scheme = "https"

	if t.cfg.Debug {
		t.cfg.Logger.Debug().
			Str("from", req.URL.String()).
			Str("to", target.String()).
			Msg("correcting 307 redirect scheme")
	}

	drainBody(resp)

	retry, rerr := t.cloneForRedirect(req, target, bodyBytes)
	if rerr != nil {
		return nil, rerr
	}
	return t.next.RoundTrip(retry)
}

// cloneForRedirect rebuilds the request against the corrected absolute URL.
func (t *redirectTransport) cloneForRedirect(req *http.Request, target *url.URL, bodyBytes []byte) (*http.Request, error) {
	ctx := context.WithValue(req.Context(), redirectedKey{}, true)
	retry := req.Clone(ctx)
	retry.URL = target
	retry.Host = target.Host

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
	return retry, nil
}
