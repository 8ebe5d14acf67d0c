// Package errors defines the error kinds surfaced by the delegator's
// evaluator and outbound client, together with their wire encoding.
//
// Every kind encodes as a JSON object of the shape {"err": "<kind>", ...}.
// The one exception is UpstreamError, which passes the upstream response
// context through verbatim.
package errors

import (
	"errors"
	"fmt"
)

// JSONConvertible is implemented by every error kind that has a defined
// JSON response shape. The front-end serializes ErrorJSON() as the body of
// a 500 response.
type JSONConvertible interface {
	error
	// ErrorJSON returns the wire representation of the error.
	ErrorJSON() interface{}
	// Kind returns the short kind identifier (the "err" field value, or
	// "network" for upstream passthrough errors).
	Kind() string
}

// Kind returns the kind identifier for any error, or "internal" for errors
// without a defined wire shape. Used for metrics labels.
func Kind(err error) string {
	var jc JSONConvertible
	if errors.As(err, &jc) {
		return jc.Kind()
	}
	return "internal"
}

// AsJSON returns the wire representation for any error. Errors without a
// defined shape map to {"err": "internal"}.
func AsJSON(err error) interface{} {
	var jc JSONConvertible
	if errors.As(err, &jc) {
		return jc.ErrorJSON()
	}
	return map[string]interface{}{"err": "internal"}
}

// -----------------------------------------------------------------------------
// Client kinds (raised by the outbound HTTP invoker)
// -----------------------------------------------------------------------------

// SendError indicates the outbound HTTP request could not be sent.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return fmt.Sprintf("failed to send request: %v", e.Err) }
func (e *SendError) Unwrap() error { return e.Err }
func (e *SendError) Kind() string  { return "client" }
func (e *SendError) ErrorJSON() interface{} {
	return map[string]interface{}{"err": "client", "value": e.Err.Error()}
}

// InvalidJSONError indicates a 2xx response body that could not be decoded
// as JSON.
type InvalidJSONError struct {
	Err error
}

func (e *InvalidJSONError) Error() string { return fmt.Sprintf("invalid JSON response: %v", e.Err) }
func (e *InvalidJSONError) Unwrap() error { return e.Err }
func (e *InvalidJSONError) Kind() string  { return "protocol" }
func (e *InvalidJSONError) ErrorJSON() interface{} {
	return map[string]interface{}{"err": "protocol", "value": e.Err.Error()}
}

// InvalidPayloadError indicates the response body could not be read.
type InvalidPayloadError struct {
	Err error
}

func (e *InvalidPayloadError) Error() string { return fmt.Sprintf("unreadable response body: %v", e.Err) }
func (e *InvalidPayloadError) Unwrap() error { return e.Err }
func (e *InvalidPayloadError) Kind() string  { return "payload" }
func (e *InvalidPayloadError) ErrorJSON() interface{} {
	return map[string]interface{}{"err": "payload", "value": e.Err.Error()}
}

// UpstreamError indicates a non-2xx response from a backend service.
// Context holds the upstream response body, parsed as JSON when possible,
// otherwise as a string. It is passed through to the caller verbatim.
type UpstreamError struct {
	Context interface{}
}

func (e *UpstreamError) Error() string          { return fmt.Sprintf("upstream error: %v", e.Context) }
func (e *UpstreamError) Kind() string           { return "network" }
func (e *UpstreamError) ErrorJSON() interface{} { return e.Context }

// URIBuilderError indicates the outbound URI could not be assembled from the
// service definition.
type URIBuilderError struct {
	Reason string
}

func (e *URIBuilderError) Error() string { return fmt.Sprintf("uri builder error: %s", e.Reason) }
func (e *URIBuilderError) Kind() string  { return "uri_builder_error" }
func (e *URIBuilderError) ErrorJSON() interface{} {
	return map[string]interface{}{"err": "uri_builder_error"}
}

// UTF8Error indicates a non-UTF-8 upstream response body.
type UTF8Error struct{}

func (e *UTF8Error) Error() string { return "upstream response is not valid UTF-8" }
func (e *UTF8Error) Kind() string  { return "utf8_error" }
func (e *UTF8Error) ErrorJSON() interface{} {
	return map[string]interface{}{"err": "utf8_error"}
}

// -----------------------------------------------------------------------------
// Evaluator kinds
// -----------------------------------------------------------------------------

// UnknownStepError indicates the step index fell outside the cryptogram.
// This is an internal invariant violation.
type UnknownStepError struct {
	Index int
}

func (e *UnknownStepError) Error() string { return fmt.Sprintf("unknown step %d", e.Index) }
func (e *UnknownStepError) Kind() string  { return "unknown_step" }
func (e *UnknownStepError) ErrorJSON() interface{} {
	return map[string]interface{}{"err": "unknown_step", "step": e.Index}
}

// InvalidStructureError indicates a preflight or postflight transform failed.
// History is the path from the root of the expression to the failing node;
// Choices optionally lists the keys that were available at the failure point.
type InvalidStructureError struct {
	History []string
	Choices interface{}
}

func (e *InvalidStructureError) Error() string {
	return fmt.Sprintf("invalid structure at %v", e.History)
}
func (e *InvalidStructureError) Kind() string { return "invalid_structure" }
func (e *InvalidStructureError) ErrorJSON() interface{} {
	out := map[string]interface{}{"err": "invalid_structure", "history": e.History}
	if e.Choices != nil {
		out["choices"] = e.Choices
	}
	return out
}

// InvalidTransitionError indicates a forward step had no successor to
// receive its payload. The linear sweep cannot produce it, but the kind is
// part of the wire vocabulary and older cryptogram encodings may report it.
type InvalidTransitionError struct{}

func (e *InvalidTransitionError) Error() string { return "no next step to receive payload" }
func (e *InvalidTransitionError) Kind() string  { return "unknown_transition" }
func (e *InvalidTransitionError) ErrorJSON() interface{} {
	return map[string]interface{}{"err": "unknown_transition"}
}

// NoStepsSpecifiedError indicates a zero-length cryptogram.
type NoStepsSpecifiedError struct{}

func (e *NoStepsSpecifiedError) Error() string { return "no steps specified" }
func (e *NoStepsSpecifiedError) Kind() string  { return "no_steps_specified" }
func (e *NoStepsSpecifiedError) ErrorJSON() interface{} {
	return map[string]interface{}{"err": "no_steps_specified"}
}

// UnknownMethodError indicates a step referenced a method the service does
// not define.
type UnknownMethodError struct {
	Service string
	Method  string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown method %q on service %q", e.Method, e.Service)
}
func (e *UnknownMethodError) Kind() string { return "unknown_method" }
func (e *UnknownMethodError) ErrorJSON() interface{} {
	return map[string]interface{}{"err": "unknown_method", "service_name": e.Service, "method_name": e.Method}
}

// UnknownServiceError indicates a step referenced a service missing from the
// registry.
type UnknownServiceError struct {
	Name string
}

func (e *UnknownServiceError) Error() string { return fmt.Sprintf("unknown service %q", e.Name) }
func (e *UnknownServiceError) Kind() string  { return "unknown_service" }
func (e *UnknownServiceError) ErrorJSON() interface{} {
	return map[string]interface{}{"err": "unknown_service", "service_name": e.Name}
}
