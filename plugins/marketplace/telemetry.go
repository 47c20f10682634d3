package marketplace

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "sflowg.marketplace"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)
)

var (
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	retryTotal      metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		requestDuration, err = meter.Float64Histogram(
			"marketplace_request_duration_seconds",
			metric.WithDescription("Duration of single marketplace HTTP attempts"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		requestTotal, err = meter.Int64Counter(
			"marketplace_requests_total",
			metric.WithDescription("Marketplace HTTP attempts by status"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		retryTotal, err = meter.Int64Counter(
			"marketplace_retries_total",
			metric.WithDescription("Marketplace requests retried after a 5xx"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startSendSpan(ctx context.Context, method, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "marketplace.Send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
}

func endSendSpan(span trace.Span, attempts int, err error) {
	span.SetAttributes(attribute.Int("marketplace.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func recordAttempt(ctx context.Context, method string, status int, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Int("status", status),
	)
	requestDuration.Record(ctx, duration.Seconds(), attrs)
	requestTotal.Add(ctx, 1, attrs)
}

func recordRetry(ctx context.Context, method string, status int) {
	if err := initMetrics(); err != nil {
		return
	}
	retryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.Int("status", status),
	))
}
