package client

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/confhub/backoffice/internal/telemetry"
)

// RequestIDHeader carries a per-request id the API echoes in its logs.
const RequestIDHeader = "X-Request-ID"

const tracerName = "github.com/confhub/backoffice/internal/client"

type requestIDTransport struct {
	next http.RoundTripper
}

func newRequestIDTransport(next http.RoundTripper) http.RoundTripper {
	return &requestIDTransport{next: next}
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set(RequestIDHeader, uuid.Must(uuid.NewV7()).String())

	return t.next.RoundTrip(req)
}

type tracingTransport struct {
	next   http.RoundTripper
	tracer trace.Tracer
}

func newTracingTransport(next http.RoundTripper) http.RoundTripper {
	return &tracingTransport{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	started := time.Now()

	ctx, span := t.tracer.Start(req.Context(), req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)
	defer span.End()

	req = req.Clone(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := t.next.RoundTrip(req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
		span.SetAttributes(attribute.Int("http.status_code", status))
	}

	failed := err != nil || status >= http.StatusBadRequest
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case failed:
		span.SetStatus(codes.Error, http.StatusText(status))
	}

	telemetry.GetMetrics().RecordAPIRequest(ctx, req.Method, status,
		float64(time.Since(started).Microseconds())/1000, failed)

	return resp, err
}
