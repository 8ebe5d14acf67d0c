package otel

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// InjectHTTPHeaders writes the current trace context into outbound request
// headers as W3C traceparent/tracestate, so backend services join the
// inbound trace. A context without an active span injects nothing.
func InjectHTTPHeaders(ctx context.Context, header http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
}

// ExtractHTTPHeaders reads W3C trace context from inbound request headers.
// When a traceparent is present the returned context carries the upstream
// span as parent; otherwise the original context is returned unchanged.
func ExtractHTTPHeaders(ctx context.Context, header http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(header))
}
