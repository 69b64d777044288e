package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockRequest(t *testing.T, method, rawURL string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, rawURL, nil)
	require.NoError(t, err)
	return req
}

func TestMockTransport_StubOrdering(t *testing.T) {
	mock := NewMockTransport()
	mock.StubOnce(func(*http.Request) bool { return true }, http.StatusUnauthorized, "first")
	mock.StubResponse(http.StatusOK, "second")

	resp, err := mock.RoundTrip(mockRequest(t, http.MethodGet, "http://x/a"))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "first", string(body))

	resp, err = mock.RoundTrip(mockRequest(t, http.MethodGet, "http://x/a"))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "second", string(body))
}

func TestMockTransport_StubOnceWithHeaderRetires(t *testing.T) {
	h := make(http.Header)
	h.Set("Location", "https://x/a")

	mock := NewMockTransport()
	mock.StubOnceWithHeader(func(*http.Request) bool { return true },
		http.StatusTemporaryRedirect, h, "")
	mock.StubResponse(http.StatusOK, "")

	resp, err := mock.RoundTrip(mockRequest(t, http.MethodGet, "http://x/a"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "https://x/a", resp.Header.Get("Location"))

	resp, err = mock.RoundTrip(mockRequest(t, http.MethodGet, "http://x/a"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMockTransport_PathMatching(t *testing.T) {
	mock := NewMockTransport()
	mock.StubPath("/api/v1/auth/refresh", http.StatusNoContent, "")
	mock.StubResponse(http.StatusOK, "fallback")

	resp, err := mock.RoundTrip(mockRequest(t, http.MethodPost, "http://x/api/v1/auth/refresh"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = mock.RoundTrip(mockRequest(t, http.MethodGet, "http://x/api/v1/data"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMockTransport_NoStubIsAnError(t *testing.T) {
	mock := NewMockTransport()

	_, err := mock.RoundTrip(mockRequest(t, http.MethodGet, "http://x/missing"))

	assert.Error(t, err)
}

func TestMockTransport_RequestRecording(t *testing.T) {
	mock := NewMockTransport()
	mock.StubResponse(http.StatusOK, "")

	for i := 0; i < 3; i++ {
		resp, err := mock.RoundTrip(mockRequest(t, http.MethodGet, "http://x/a"))
		require.NoError(t, err)
		resp.Body.Close()
	}
	resp, err := mock.RoundTrip(mockRequest(t, http.MethodPost, "http://x/b"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 4, mock.RequestCount())
	assert.Equal(t, 3, mock.CountRequests(func(r *http.Request) bool {
		return r.Method == http.MethodGet
	}))
	assert.Equal(t, "/b", mock.LastRequest().URL.Path)
}

func TestMockTransport_StubError(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	mock := NewMockTransport()
	mock.StubError(boom)

	_, err := mock.RoundTrip(mockRequest(t, http.MethodGet, "http://x/a"))

	assert.ErrorIs(t, err, boom)
}

func TestMockTransport_Reset(t *testing.T) {
	mock := NewMockTransport()
	mock.StubResponse(http.StatusOK, "")
	resp, err := mock.RoundTrip(mockRequest(t, http.MethodGet, "http://x/a"))
	require.NoError(t, err)
	resp.Body.Close()

	mock.Reset()

	assert.Equal(t, 0, mock.RequestCount())
	_, err = mock.RoundTrip(mockRequest(t, http.MethodGet, "http://x/a"))
	assert.Error(t, err)
}
