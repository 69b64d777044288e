package httpclient

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/flowmastery/flowmastery-go/httpclient"

// meters holds the OpenTelemetry instruments emitted by the client.
type meters struct {
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	retries         metric.Int64Counter
	refreshes       metric.Int64Counter
	breakerRejected metric.Int64Counter
}

func newMeters(meter metric.Meter) *meters {
	m := &meters{}

	// Instrument creation only fails on malformed names, which are fixed
	// at compile time; a nil instrument would panic at record time, so
	// errors are ignored after the names are known-good.
	m.requestDuration, _ = meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	m.requestErrors, _ = meter.Int64Counter(
		"http.client.request.errors",
		metric.WithDescription("Requests that failed with a transport error"),
	)
	m.retries, _ = meter.Int64Counter(
		"http.client.retry.attempts",
		metric.WithDescription("Transient-failure retry attempts"),
	)
	m.refreshes, _ = meter.Int64Counter(
		"http.client.session.refreshes",
		metric.WithDescription("Session refresh calls by outcome"),
	)
	m.breakerRejected, _ = meter.Int64Counter(
		"http.client.breaker.rejected",
		metric.WithDescription("Requests rejected by an open circuit"),
	)

	return m
}

func (m *meters) recordRequest(ctx context.Context, method string, status int, d time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", status),
	))
}

func (m *meters) recordError(ctx context.Context, method string) {
	if m == nil || m.requestErrors == nil {
		return
	}
	m.requestErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.request.method", method),
	))
}

func (m *meters) recordRetry(ctx context.Context) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.Add(ctx, 1)
}

func (m *meters) recordRefresh(ctx context.Context, success bool) {
	if m == nil || m.refreshes == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.refreshes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *meters) recordBreakerRejected(ctx context.Context, name string) {
	if m == nil || m.breakerRejected == nil {
		return
	}
	m.breakerRejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker", name),
	))
}
