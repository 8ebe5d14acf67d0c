package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// Context keys for storing values in context.Context
const (
	LogFieldsKey contextKey = "log_fields"
)

// Log field name constants - use these directly in WithFields maps
const (
	// Required fields
	ComponentKey = "component"
	VersionKey   = "version"
	HostnameKey  = "hostname"

	// Error fields
	ErrorKey      = "error"
	StackTraceKey = "stack_trace"

	// Correlation fields (distributed tracing)
	TraceIDKey   = "trace_id"
	SpanIDKey    = "span_id"
	RequestIDKey = "request_id"

	// Request-scoped fields
	OwnerIDKey     = "owner_id"
	VirtualhostKey = "virtualhost"
	RouteKey       = "route"

	// Evaluation fields
	StepIndexKey = "step_index"
	ServiceKey   = "service"
	MethodKey    = "method"
)

// LogFields holds dynamic key-value pairs for logging
type LogFields map[string]interface{}

// -----------------------------------------------------------------------------
// Context Setters
// -----------------------------------------------------------------------------

// WithLogField adds a single dynamic log field to the context.
// These fields will be extracted and included in all log entries.
func WithLogField(ctx context.Context, key string, value interface{}) context.Context {
	fields := copyLogFields(ctx)
	fields[key] = value
	return context.WithValue(ctx, LogFieldsKey, fields)
}

// WithLogFields adds multiple dynamic log fields to the context.
func WithLogFields(ctx context.Context, newFields LogFields) context.Context {
	fields := copyLogFields(ctx)
	for k, v := range newFields {
		fields[k] = v
	}
	return context.WithValue(ctx, LogFieldsKey, fields)
}

// copyLogFields returns a mutable copy of the fields currently in the context.
// Copying keeps sibling contexts from observing each other's writes.
func copyLogFields(ctx context.Context) LogFields {
	existing := GetLogFields(ctx)
	fields := make(LogFields, len(existing)+1)
	for k, v := range existing {
		fields[k] = v
	}
	return fields
}

// WithErrorField returns a context with the error message set
func WithErrorField(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return WithLogField(ctx, ErrorKey, err.Error())
}

// WithRequestID returns a context with the inbound request ID set
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return WithLogField(ctx, RequestIDKey, requestID)
}

// WithOwnerID returns a context with the authenticated owner ID set
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return WithLogField(ctx, OwnerIDKey, ownerID)
}

// WithVirtualhost returns a context with the resolved virtualhost name set
func WithVirtualhost(ctx context.Context, name string) context.Context {
	return WithLogField(ctx, VirtualhostKey, name)
}

// WithTraceID returns a context with the trace ID set
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return WithLogField(ctx, TraceIDKey, traceID)
}

// WithSpanID returns a context with the span ID set
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return WithLogField(ctx, SpanIDKey, spanID)
}

// WithOTelTraceContext extracts trace_id and span_id from the active OTel span
// and adds them as log fields for correlation. Returns the context unchanged
// when no span is recording.
func WithOTelTraceContext(ctx context.Context) context.Context {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ctx
	}
	return WithLogFields(ctx, LogFields{
		TraceIDKey: spanCtx.TraceID().String(),
		SpanIDKey:  spanCtx.SpanID().String(),
	})
}

// -----------------------------------------------------------------------------
// Context Getters
// -----------------------------------------------------------------------------

// GetLogFields returns the dynamic log fields from the context, or nil
func GetLogFields(ctx context.Context) LogFields {
	if ctx == nil {
		return nil
	}
	if fields, ok := ctx.Value(LogFieldsKey).(LogFields); ok {
		return fields
	}
	return nil
}
