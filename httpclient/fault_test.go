package httpclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultTransport_InjectsConnectionError(t *testing.T) {
	mock := NewMockTransport()
	mock.StubResponse(http.StatusOK, "")

	transport := newFaultTransport(mock, FaultConfig{ErrorRate: 1})

	req, err := http.NewRequestWithContext(context.Background(),
		http.MethodGet, "http://localhost:8000/api/v1/data", nil)
	require.NoError(t, err)

	_, err = transport.RoundTrip(req)

	assert.ErrorIs(t, err, ErrFaultInjected)
	assert.Equal(t, 0, mock.RequestCount(), "faulted request never reaches the backend")
}

func TestFaultTransport_StallHonorsDeadline(t *testing.T) {
	mock := NewMockTransport()
	mock.StubResponse(http.StatusOK, "")

	transport := newFaultTransport(mock, FaultConfig{StallRate: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx,
		http.MethodGet, "http://localhost:8000/api/v1/data", nil)
	require.NoError(t, err)

	_, err = transport.RoundTrip(req)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFaultTransport_AddsLatency(t *testing.T) {
	mock := NewMockTransport()
	mock.StubResponse(http.StatusOK, "")

	transport := newFaultTransport(mock, FaultConfig{Latency: 30 * time.Millisecond})

	req, err := http.NewRequestWithContext(context.Background(),
		http.MethodGet, "http://localhost:8000/api/v1/data", nil)
	require.NoError(t, err)

	start := time.Now()
	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 1, mock.RequestCount())
}

func TestFaultTransport_ZeroConfigPassesThrough(t *testing.T) {
	mock := NewMockTransport()
	mock.StubResponse(http.StatusOK, `{"data":{}}`)

	client := New(
		WithMockTransport(mock),
		WithFaultConfig(FaultConfig{}),
		WithRetryConfig(DisabledRetryConfig()),
	)

	require.NoError(t, client.Get(context.Background(), "/workflows", nil))
}

func TestFaultTransport_ClientSurfacesInjectedFault(t *testing.T) {
	mock := NewMockTransport()
	mock.StubResponse(http.StatusOK, `{"data":{}}`)

	client := New(
		WithMockTransport(mock),
		WithFaultConfig(FaultConfig{ErrorRate: 1}),
		WithRetryConfig(DisabledRetryConfig()),
	)

	err := client.Get(context.Background(), "/workflows", nil)

	assert.ErrorIs(t, err, ErrFaultInjected)
}
