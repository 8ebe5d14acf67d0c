package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	apperrors "github.com/threadlane/delegator/pkg/errors"
)

// -----------------------------------------------------------------------------
// Stack Trace Capture
// -----------------------------------------------------------------------------

// skipStackTraceCheckers is a list of functions that check if an error should skip stack trace capture.
// Each checker returns true if the error is an expected operational error.
// Add new error types here to extend the blocklist.
var skipStackTraceCheckers = []func(error) bool{
	// Context errors (expected in graceful shutdown)
	func(err error) bool { return errors.Is(err, context.Canceled) },
	func(err error) bool { return errors.Is(err, context.DeadlineExceeded) },
	func(err error) bool { return errors.Is(err, io.EOF) },

	// Network/transient errors (expected in distributed systems)
	apperrors.IsNetworkError,

	// Upstream errors surfaced by the evaluator (non-2xx responses, bad
	// payloads). These carry their own context and occur at request rate.
	isExpectedEvaluateError,
}

// isExpectedEvaluateError checks if the error is an upstream failure the
// evaluator reports as part of normal operation.
func isExpectedEvaluateError(err error) bool {
	var upstream *apperrors.UpstreamError
	if errors.As(err, &upstream) {
		return true
	}
	var structure *apperrors.InvalidStructureError
	return errors.As(err, &structure)
}

// shouldCaptureStackTrace determines if a stack trace should be captured for the given error.
// Returns false for expected operational errors (high frequency, known causes) to avoid
// performance overhead during error storms. Returns true for unexpected errors that
// indicate bugs or require investigation.
func shouldCaptureStackTrace(err error) bool {
	if err == nil {
		return false
	}

	for _, check := range skipStackTraceCheckers {
		if check(err) {
			return false
		}
	}

	return true
}

// WithStackTraceField returns a context with the stack trace set.
// If frames is nil or empty, returns the context unchanged.
func WithStackTraceField(ctx context.Context, frames []string) context.Context {
	if len(frames) == 0 {
		return ctx
	}
	return WithLogField(ctx, StackTraceKey, frames)
}

// WithError attaches the error message to the context and, for unexpected
// errors, a captured stack trace. Expected operational errors (network
// failures, upstream non-2xx, transform failures) skip the capture.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	ctx = WithErrorField(ctx, err)
	if shouldCaptureStackTrace(err) {
		ctx = WithStackTraceField(ctx, CaptureStackTrace(1))
	}
	return ctx
}

// CaptureStackTrace captures the current call stack and returns it as a slice of strings.
// Each string contains the file path, line number, and function name.
// The skip parameter specifies how many stack frames to skip:
//   - skip=0 starts from the caller of CaptureStackTrace
//   - skip=1 skips one additional level, etc.
func CaptureStackTrace(skip int) []string {
	const maxFrames = 32
	pcs := make([]uintptr, maxFrames)
	// +2 to skip runtime.Callers and CaptureStackTrace itself
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	var stack []string
	for {
		frame, more := frames.Next()
		stack = append(stack, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		if !more {
			break
		}
	}
	return stack
}
