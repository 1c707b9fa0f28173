package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitMeterProvider initializes the Prometheus exporter and MeterProvider.
// It returns an http.Handler for the /metrics endpoint and a shutdown function.
func InitMeterProvider(serviceName, serviceVersion string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	)

	mp := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return promhttp.Handler(), mp.Shutdown, nil
}

// Webhook outcomes recorded by RelayMetrics.
const (
	OutcomeDelivered        = "delivered"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeMalformedBody    = "malformed_body"
	OutcomeBodyTooLarge     = "body_too_large"
	OutcomeDeliveryFailed   = "delivery_failed"
)

// RelayMetrics holds the instruments of the webhook relay. A nil
// *RelayMetrics is valid and records nothing.
type RelayMetrics struct {
	webhooks otelmetric.Int64Counter
	delivery otelmetric.Float64Histogram
}

// NewRelayMetrics creates the relay instruments on the global MeterProvider.
func NewRelayMetrics() (*RelayMetrics, error) {
	meter := otel.Meter("relay")

	webhooks, err := meter.Int64Counter("relay.webhooks",
		otelmetric.WithDescription("Inbound order webhooks by outcome."),
		otelmetric.WithUnit("{webhook}"),
	)
	if err != nil {
		return nil, err
	}

	delivery, err := meter.Float64Histogram("relay.delivery.duration",
		otelmetric.WithDescription("Duration of outbound message delivery calls."),
		otelmetric.WithUnit("s"),
		otelmetric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	return &RelayMetrics{webhooks: webhooks, delivery: delivery}, nil
}

func (m *RelayMetrics) RecordWebhook(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.webhooks.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *RelayMetrics) RecordDelivery(ctx context.Context, elapsed time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.delivery.Record(ctx, elapsed.Seconds(), otelmetric.WithAttributes(attribute.Bool("success", ok)))
}
