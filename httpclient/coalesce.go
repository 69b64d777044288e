package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"
)

// coalesceTransport deduplicates identical concurrent GET requests. Metrics
// dashboards fan out many widgets that fetch the same resource at mount
// time; only one of each reaches the backend and every caller receives its
// own copy of the shared response.
type coalesceTransport struct {
	next  http.RoundTripper
	group singleflight.Group
}

func newCoalesceTransport(next http.RoundTripper, cfg *internalConfig) http.RoundTripper {
	if !cfg.Coalesce {
		return next
	}
	return &coalesceTransport{next: next}
}

// sharedResponse is the buffered result handed to every coalesced caller.
type sharedResponse struct {
	status int
	header http.Header
	body   []byte
}

// RoundTrip implements http.RoundTripper.
func (t *coalesceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Only safe, body-less reads are coalesced. Replayed requests after a
	// refresh carry a retried marker and skip coalescing so they observe
	// the fresh session.
	if req.Method != http.MethodGet || req.Context().Value(retriedKey{}) != nil {
		return t.next.RoundTrip(req)
	}

	key := coalesceKey(req)
	result, err, _ := t.group.Do(key, func() (any, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		return &sharedResponse{
			status: resp.StatusCode,
			header: resp.Header.Clone(),
			body:   body,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	shared := result.(*sharedResponse)
	return &http.Response{
		StatusCode:    shared.status,
		Status:        http.StatusText(shared.status),
		Header:        shared.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(shared.body)),
		ContentLength: int64(len(shared.body)),
		Request:       req,
	}, nil
}

// coalesceKey normalizes method, URL and sorted query parameters into a
// stable deduplication key.
func coalesceKey(req *http.Request) string {
	query := req.URL.Query()
	params := make([]string, 0, len(query))
	for key, values := range query {
		sort.Strings(values)
		for _, value := range values {
			params = append(params, key+"="+value)
		}
	}
	sort.Strings(params)

	var sb strings.Builder
	sb.WriteString(req.Method)
	sb.WriteByte('|')
	sb.WriteString(req.URL.Scheme)
	sb.WriteString("://")
	sb.WriteString(req.URL.Host)
	sb.WriteString(req.URL.Path)
	sb.WriteByte('|')
	sb.WriteString(strings.Join(params, "&"))
	return sb.String()
}
