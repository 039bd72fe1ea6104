package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/confhub/backoffice"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Remote API metrics
	APIRequestsTotal   metric.Int64Counter
	APIErrorsTotal     metric.Int64Counter
	APIRequestDuration metric.Float64Histogram

	// Session metrics
	GuardDecisionsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary.
// Call it after InitTelemetry so instruments bind to the configured provider.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.APIRequestsTotal, _ = meter.Int64Counter(
		"backoffice.api.requests.total",
		metric.WithDescription("Total number of requests sent to the remote API"),
		metric.WithUnit("{request}"),
	)

	m.APIErrorsTotal, _ = meter.Int64Counter(
		"backoffice.api.errors.total",
		metric.WithDescription("Total number of remote API requests that failed"),
		metric.WithUnit("{error}"),
	)

	m.APIRequestDuration, _ = meter.Float64Histogram(
		"backoffice.api.request.duration",
		metric.WithDescription("Duration of remote API requests"),
		metric.WithUnit("ms"),
	)

	m.GuardDecisionsTotal, _ = meter.Int64Counter(
		"backoffice.guard.decisions.total",
		metric.WithDescription("Total number of route guard decisions by outcome"),
		metric.WithUnit("{decision}"),
	)

	return m
}

// RecordAPIRequest records one remote API call. status is 0 when no response arrived.
func (m *Metrics) RecordAPIRequest(ctx context.Context, method string, status int, durationMs float64, failed bool) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.Int("http.status_code", status),
	)

	if m.APIRequestsTotal != nil {
		m.APIRequestsTotal.Add(ctx, 1, attrs)
	}
	if m.APIRequestDuration != nil {
		m.APIRequestDuration.Record(ctx, durationMs, attrs)
	}
	if failed && m.APIErrorsTotal != nil {
		m.APIErrorsTotal.Add(ctx, 1, attrs)
	}
}

// RecordGuardDecision records one route guard decision.
func (m *Metrics) RecordGuardDecision(ctx context.Context, outcome string) {
	if m == nil || m.GuardDecisionsTotal == nil {
		return
	}
	m.GuardDecisionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
