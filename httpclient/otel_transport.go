package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// otelTransport instruments requests with spans and metrics. It sits inside
// the refresh layer so replayed requests get their own spans.
type otelTransport struct {
	base   http.RoundTripper
	tracer trace.Tracer
	cfg    *internalConfig
}

func newOtelTransport(base http.RoundTripper, cfg *internalConfig) http.RoundTripper {
	return &otelTransport{
		base:   base,
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
		cfg:    cfg,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *otelTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, span := t.tracer.Start(
		req.Context(),
		fmt.Sprintf("HTTP %s", req.Method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.requestAttributes(req)...),
	)
	defer span.End()

	req = req.WithContext(ctx)
	start := time.Now()

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.cfg.Metrics.recordError(ctx, req.Method)
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, resp.Status)
	}
	t.cfg.Metrics.recordRequest(ctx, req.Method, resp.StatusCode, duration)

	return resp, nil
}

func (t *otelTransport) requestAttributes(req *http.Request) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", req.Method),
		attribute.String("url.full", req.URL.String()),
		attribute.String("server.address", req.URL.Host),
	}
	if t.cfg.ServiceName != "" {
		attrs = append(attrs, attribute.String("peer.service", t.cfg.ServiceName))
	}
	return attrs
}
