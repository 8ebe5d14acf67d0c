package otel

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func init() {
	otel.SetTextMapPropagator(propagation.TraceContext{})
}

const (
	testTraceID     = "0af7651916cd43dd8448eb211c80319c"
	testSpanID      = "b7ad6b7169203331"
	testTraceparent = "00-" + testTraceID + "-" + testSpanID + "-01"
)

func TestExtractHTTPHeaders(t *testing.T) {
	header := http.Header{}
	header.Set("traceparent", testTraceparent)

	ctx := ExtractHTTPHeaders(context.Background(), header)
	spanCtx := trace.SpanContextFromContext(ctx)
	require.True(t, spanCtx.IsValid())
	assert.Equal(t, testTraceID, spanCtx.TraceID().String())
	assert.Equal(t, testSpanID, spanCtx.SpanID().String())
	assert.True(t, spanCtx.IsSampled())
}

func TestExtractHTTPHeadersWithoutTraceparent(t *testing.T) {
	ctx := ExtractHTTPHeaders(context.Background(), http.Header{})
	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
}

func TestInjectHTTPHeadersRoundTrip(t *testing.T) {
	inbound := http.Header{}
	inbound.Set("traceparent", testTraceparent)
	ctx := ExtractHTTPHeaders(context.Background(), inbound)

	outbound := http.Header{}
	InjectHTTPHeaders(ctx, outbound)
	assert.Equal(t, testTraceparent, outbound.Get("traceparent"))
}

func TestInjectHTTPHeadersWithoutSpan(t *testing.T) {
	outbound := http.Header{}
	InjectHTTPHeaders(context.Background(), outbound)
	assert.Empty(t, outbound.Get("traceparent"))
}
