// Package observability provides metrics recording for the event broker.
package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records broker metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records one publish call and how many live subscribers it reached.
	RecordPublish(ctx context.Context, topic string, subscribers int)

	// RecordDelivery records a single subscriber invocation with its duration and error status.
	RecordDelivery(ctx context.Context, topic string, duration time.Duration, err error)

	// RecordPanic records a subscriber panic isolated by the dispatcher.
	RecordPanic(ctx context.Context, topic string)

	// RecordDeadDrop records a subscription skipped and pruned because its owner was gone.
	RecordDeadDrop(ctx context.Context, topic string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishes       metric.Int64Counter
	deliveries      metric.Int64Counter
	deliveryLatency metric.Float64Histogram
	deliveryErrors  metric.Int64Counter
	panics          metric.Int64Counter
	deadDrops       metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("gluepanel")

	publishes, err := meter.Int64Counter("gluepanel.broker.publishes",
		metric.WithDescription("Number of publish calls"),
	)
	if err != nil {
		return nil, err
	}

	deliveries, err := meter.Int64Counter("gluepanel.broker.deliveries",
		metric.WithDescription("Number of subscriber invocations"),
	)
	if err != nil {
		return nil, err
	}

	deliveryLatency, err := meter.Float64Histogram("gluepanel.broker.delivery.latency_ms",
		metric.WithDescription("Subscriber invocation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	deliveryErrors, err := meter.Int64Counter("gluepanel.broker.delivery.errors",
		metric.WithDescription("Number of subscriber invocations that returned errors"),
	)
	if err != nil {
		return nil, err
	}

	panics, err := meter.Int64Counter("gluepanel.broker.delivery.panics",
		metric.WithDescription("Number of isolated subscriber panics"),
	)
	if err != nil {
		return nil, err
	}

	deadDrops, err := meter.Int64Counter("gluepanel.broker.dead_drops",
		metric.WithDescription("Number of dead-owner subscriptions pruned during dispatch"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		publishes:       publishes,
		deliveries:      deliveries,
		deliveryLatency: deliveryLatency,
		deliveryErrors:  deliveryErrors,
		panics:          panics,
		deadDrops:       deadDrops,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider. Falls back to NoopMetrics if instrument creation fails.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordPublish(ctx context.Context, topic string, subscribers int) {
	m.publishes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.Int("subscribers", subscribers),
	))
}

func (m *otelMetrics) RecordDelivery(ctx context.Context, topic string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("topic", topic))
	m.deliveries.Add(ctx, 1, attrs)
	m.deliveryLatency.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
	if err != nil {
		m.deliveryErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordPanic(ctx context.Context, topic string) {
	m.panics.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}

func (m *otelMetrics) RecordDeadDrop(ctx context.Context, topic string) {
	m.deadDrops.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}
