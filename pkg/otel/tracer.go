// Package otel provides OpenTelemetry tracing utilities for the delegator.
package otel

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/threadlane/delegator/pkg/logger"
)

const (
	// EnvTraceSampleRatio overrides the trace sampling ratio (0.0 to 1.0).
	EnvTraceSampleRatio = "TRACE_SAMPLE_RATIO"

	// DefaultTraceSampleRatio samples 10% of root traces.
	DefaultTraceSampleRatio = 0.1
)

// GetTraceSampleRatio reads TRACE_SAMPLE_RATIO, falling back to the default
// when unset or out of range.
func GetTraceSampleRatio(ctx context.Context, log logger.Logger) float64 {
	ratioStr := os.Getenv(EnvTraceSampleRatio)
	if ratioStr == "" {
		return DefaultTraceSampleRatio
	}

	ratio, err := strconv.ParseFloat(ratioStr, 64)
	if err != nil {
		log.Warnf(ctx, "Invalid %s value %q, using default %.2f: %v", EnvTraceSampleRatio, ratioStr, DefaultTraceSampleRatio, err)
		return DefaultTraceSampleRatio
	}
	if ratio < 0.0 || ratio > 1.0 {
		log.Warnf(ctx, "Invalid %s value %.4f (must be 0.0-1.0), using default %.2f", EnvTraceSampleRatio, ratio, DefaultTraceSampleRatio)
		return DefaultTraceSampleRatio
	}
	return ratio
}

// InitTracer sets up the global TracerProvider and the W3C trace context
// propagator. Trace and span IDs feed log correlation
// (logger.WithOTelTraceContext) and outbound request propagation.
//
// The sampler is ParentBased(TraceIDRatioBased): inbound sampling decisions
// are respected, root spans are sampled probabilistically.
func InitTracer(serviceName, serviceVersion string, sampleRatio float64) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
		resource.WithProcessRuntimeDescription(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp, nil
}
