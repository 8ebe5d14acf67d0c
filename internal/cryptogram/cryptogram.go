// Package cryptogram defines the wire model of an evaluation request: an
// ordered list of backend-call steps with interleaved transforms.
package cryptogram

import (
	"context"
	"encoding/json"

	"github.com/threadlane/delegator/internal/transform"
)

// Header is one outbound request header as a (name, value) pair. Encoded as
// a two-element JSON array.
type Header struct {
	Name  string
	Value string
}

// MarshalJSON encodes the header as ["name", "value"].
func (h Header) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{h.Name, h.Value})
}

// UnmarshalJSON decodes a ["name", "value"] pair.
func (h *Header) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	h.Name, h.Value = pair[0], pair[1]
	return nil
}

// Step is one element of a cryptogram. Service and Method reference the
// registry; when both are absent the step is inert and Postflight runs
// against the payload itself. MemoizationPrefix, when set, enables the
// memo cache for the step.
type Step struct {
	Service           *string            `json:"service,omitempty"`
	Method            *string            `json:"method,omitempty"`
	Payload           interface{}        `json:"payload,omitempty"`
	Preflight         *transform.Program `json:"preflight,omitempty"`
	Postflight        *transform.Program `json:"postflight,omitempty"`
	MemoizationPrefix *string            `json:"memoization_prefix,omitempty"`
	Headers           []Header           `json:"headers,omitempty"`
}

// Cryptogram is the ordered step list driven by the evaluator. Current is
// the index of the step being evaluated; it only ever increases.
type Cryptogram struct {
	Steps   []Step `json:"steps"`
	Current int    `json:"-"`
}

// FromJSON decodes a JSON-encoded cryptogram.
func FromJSON(data []byte) (*Cryptogram, error) {
	var c Cryptogram
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ToJSON encodes the cryptogram.
func (c *Cryptogram) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

// New assembles a cryptogram from finished steps.
func New(steps ...Step) *Cryptogram {
	return &Cryptogram{Steps: steps}
}

// BindRequestBody prepares an edge-route cryptogram for an inbound body:
// the first step's preflight (if any) is applied to body up front and then
// cleared; otherwise the body becomes the first step's payload when none is
// preset. Returns the transform error of the preflight, if it fails.
func (c *Cryptogram) BindRequestBody(ctx context.Context, tc *transform.Context, body interface{}, state *transform.State) *transform.StepError {
	if len(c.Steps) == 0 {
		return nil
	}
	first := &c.Steps[0]
	if first.Preflight != nil {
		value, serr := transform.Eval(ctx, tc, first.Preflight.Root, body, state)
		if serr != nil {
			return serr
		}
		first.Payload = value
		first.Preflight = nil
		return nil
	}
	if first.Payload == nil {
		first.Payload = body
	}
	return nil
}

// StepBuilder accumulates a Step fluently. Build starts a backend step;
// Inert starts a service-less shaping step.
type StepBuilder struct {
	step Step
}

// Build starts a step that calls method on service.
func Build(service, method string) *NeedsPayload {
	return &NeedsPayload{service: service, method: method}
}

// NeedsPayload forces callers to decide the step payload before any of the
// optional attributes.
type NeedsPayload struct {
	service string
	method  string
}

// Payload sets the outbound payload and yields the full builder.
func (n *NeedsPayload) Payload(payload interface{}) *StepBuilder {
	service, method := n.service, n.method
	return &StepBuilder{step: Step{
		Service: &service,
		Method:  &method,
		Payload: payload,
	}}
}

// Inert starts a step with no backend call; its postflight shapes the
// incoming payload.
func Inert() *StepBuilder {
	return &StepBuilder{}
}

// Preflight sets the transform applied to the payload before the call.
func (b *StepBuilder) Preflight(prog transform.Language) *StepBuilder {
	b.step.Preflight = transform.NewProgram(prog)
	return b
}

// Postflight sets the transform applied to the response.
func (b *StepBuilder) Postflight(prog transform.Language) *StepBuilder {
	b.step.Postflight = transform.NewProgram(prog)
	return b
}

// MemoizationPrefix enables memoization for the step under the given key
// namespace.
func (b *StepBuilder) MemoizationPrefix(prefix string) *StepBuilder {
	b.step.MemoizationPrefix = &prefix
	return b
}

// Header appends one outbound request header.
func (b *StepBuilder) Header(name, value string) *StepBuilder {
	b.step.Headers = append(b.step.Headers, Header{Name: name, Value: value})
	return b
}

// Headers appends several outbound request headers.
func (b *StepBuilder) Headers(pairs []Header) *StepBuilder {
	b.step.Headers = append(b.step.Headers, pairs...)
	return b
}

// Finish returns the assembled step.
func (b *StepBuilder) Finish() Step {
	return b.step
}
