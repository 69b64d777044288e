package httpclient

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"
)

// MockTransport is a configurable http.RoundTripper for tests. Stubs are
// matched in registration order; one-shot stubs registered with Once are
// consumed as they match, which makes 401-then-200 refresh flows easy to
// script.
type MockTransport struct {
	mu          sync.Mutex
	stubs       []*mockStub
	defaultResp *mockResponse
	defaultErr  error
	requests    []*http.Request
	requestHook func(*http.Request)
}

type mockStub struct {
	matcher  func(*http.Request) bool
	response *mockResponse
	err      error
	once     bool
	used     bool
}

type mockResponse struct {
	status int
	header http.Header
	body   []byte
}

// NewMockTransport creates an empty MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// StubResponse makes unmatched requests return the given response.
func (m *MockTransport) StubResponse(statusCode int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResp = &mockResponse{status: statusCode, header: make(http.Header), body: []byte(body)}
	return m
}

// StubError makes unmatched requests fail with err.
func (m *MockTransport) StubError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultErr = err
	return m
}

// StubPath stubs requests whose URL path matches exactly.
func (m *MockTransport) StubPath(path string, statusCode int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool {
		return req.URL.Path == path
	}, statusCode, body)
}

// StubFunc stubs requests matching the predicate.
func (m *MockTransport) StubFunc(matcher func(*http.Request) bool, statusCode int, body string) *MockTransport {
	return m.addStub(matcher, statusCode, nil, body, false)
}

// StubOnce stubs the next request matching the predicate, then retires.
// Registration order decides which one-shot fires first.
func (m *MockTransport) StubOnce(matcher func(*http.Request) bool, statusCode int, body string) *MockTransport {
	return m.addStub(matcher, statusCode, nil, body, true)
}

// StubWithHeader stubs matching requests with a response carrying the given
// header, e.g. a Location for redirect tests.
func (m *MockTransport) StubWithHeader(matcher func(*http.Request) bool, statusCode int, header http.Header, body string) *MockTransport {
	return m.addStub(matcher, statusCode, header, body, false)
}

// StubOnceWithHeader is the one-shot form of StubWithHeader: it fires for the
// next matching request, then retires.
func (m *MockTransport) StubOnceWithHeader(matcher func(*http.Request) bool, statusCode int, header http.Header, body string) *MockTransport {
	return m.addStub(matcher, statusCode, header, body, true)
}

// StubFuncError makes requests matching the predicate fail with err.
func (m *MockTransport) StubFuncError(matcher func(*http.Request) bool, err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, &mockStub{matcher: matcher, err: err})
	return m
}

func (m *MockTransport) addStub(matcher func(*http.Request) bool, statusCode int, header http.Header, body string, once bool) *MockTransport {
	if header == nil {
		header = make(http.Header)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, &mockStub{
		matcher:  matcher,
		response: &mockResponse{status: statusCode, header: header, body: []byte(body)},
		once:     once,
	})
	return m
}

// OnRequest registers a hook invoked for every request.
func (m *MockTransport) OnRequest(fn func(*http.Request)) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestHook = fn
	return m
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	hook := m.requestHook

	var matched *mockStub
	for _, s := range m.stubs {
		if s.once && s.used {
			continue
		}
		if s.matcher(req) {
			s.used = true
			matched = s
			break
		}
	}
	defaultResp := m.defaultResp
	defaultErr := m.defaultErr
	m.mu.Unlock()

	if hook != nil {
		hook(req)
	}

	if matched != nil {
		if matched.err != nil {
			return nil, matched.err
		}
		return matched.response.build(req), nil
	}
	if defaultErr != nil {
		return nil, defaultErr
	}
	if defaultResp != nil {
		return defaultResp.build(req), nil
	}
	return nil, errors.New("mock transport: no stub for " + req.Method + " " + req.URL.String())
}

// build materializes a fresh http.Response so each caller gets its own
// readable body.
func (r *mockResponse) build(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode:    r.status,
		Status:        http.StatusText(r.status),
		Header:        r.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(r.body)),
		ContentLength: int64(len(r.body)),
		Request:       req,
	}
}

// Requests returns a copy of all requests seen by the transport.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request{}, m.requests...)
}

// RequestCount returns the number of requests seen.
func (m *MockTransport) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// CountRequests returns how many recorded requests match the predicate.
func (m *MockTransport) CountRequests(matcher func(*http.Request) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, req := range m.requests {
		if matcher(req) {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent request, or nil.
func (m *MockTransport) LastRequest() *http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Reset clears all stubs and recorded requests.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = nil
	m.defaultResp = nil
	m.defaultErr = nil
	m.requests = nil
	m.requestHook = nil
}
