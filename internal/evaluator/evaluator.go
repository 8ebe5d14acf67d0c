// Package evaluator drives a cryptogram: the linear sweep that applies
// preflight transforms, consults the memoization cache, invokes backends,
// applies postflight transforms, and threads each step's payload into the
// next.
package evaluator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/threadlane/delegator/internal/cryptogram"
	"github.com/threadlane/delegator/internal/invoker"
	"github.com/threadlane/delegator/internal/memocache"
	"github.com/threadlane/delegator/internal/registry"
	"github.com/threadlane/delegator/internal/transform"
	apperrors "github.com/threadlane/delegator/pkg/errors"
	"github.com/threadlane/delegator/pkg/logger"
)

const tracerName = "delegator/evaluator"

// Observer receives evaluation progress hooks. All methods must be cheap;
// the evaluator calls them inline. A nil observer disables the hooks.
type Observer interface {
	// OnStep fires before a step is processed. service and method are
	// empty for inert steps.
	OnStep(index int, service, method string)
	// OnCacheLookup fires once per memoized step.
	OnCacheLookup(hit bool)
	// OnError fires when evaluation fails, with the wire error kind.
	OnError(kind string)
}

// Config wires an Evaluator.
type Config struct {
	Cache     *memocache.Cache
	Client    invoker.JSONClient
	Services  registry.Services
	Transform *transform.Context
	Logger    logger.Logger
	Observer  Observer
}

// Evaluator evaluates cryptograms against a fixed registry, client and
// cache. Safe for concurrent use; per-evaluation mutable state lives in the
// cryptogram and scratchpad.
type Evaluator struct {
	cache    *memocache.Cache
	client   invoker.JSONClient
	services registry.Services
	tc       *transform.Context
	log      logger.Logger
	observer Observer
}

// New validates the configuration and creates an Evaluator.
func New(cfg *Config) (*Evaluator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("field Cache is required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("field Client is required")
	}
	if cfg.Services == nil {
		return nil, fmt.Errorf("field Services is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("field Logger is required")
	}
	tc := cfg.Transform
	if tc == nil {
		tc = transform.NoopContext()
	}
	return &Evaluator{
		cache:    cfg.Cache,
		client:   cfg.Client,
		services: cfg.Services,
		tc:       tc,
		log:      cfg.Logger,
		observer: cfg.Observer,
	}, nil
}

// Evaluate runs the cryptogram to completion and returns the final JSON
// value together with the updated cryptogram. The scratchpad must be fresh
// per call; Set/Get visibility spans all steps of this evaluation only.
func (e *Evaluator) Evaluate(ctx context.Context, c *cryptogram.Cryptogram, state *transform.State) (interface{}, *cryptogram.Cryptogram, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Evaluate")
	defer span.End()
	ctx = logger.WithOTelTraceContext(ctx)

	final, err := e.sweep(ctx, c, state)
	if err != nil {
		if e.observer != nil {
			e.observer.OnError(apperrors.Kind(err))
		}
		e.log.Errorf(logger.WithError(ctx, err), "Evaluation failed at step %d", c.Current)
		return nil, c, err
	}
	return final, c, nil
}

// EvaluateWithBody is the edge-route entry point: the first step's
// preflight (if any) runs against the inbound body before the sweep and is
// then cleared; without one the body becomes the first payload when none
// is preset.
func (e *Evaluator) EvaluateWithBody(ctx context.Context, c *cryptogram.Cryptogram, body interface{}) (interface{}, *cryptogram.Cryptogram, error) {
	state := transform.NewState()
	if serr := c.BindRequestBody(ctx, e.tc, body, state); serr != nil {
		err := invalidStructure(serr)
		if e.observer != nil {
			e.observer.OnError(apperrors.Kind(err))
		}
		return nil, c, err
	}
	return e.Evaluate(ctx, c, state)
}

func (e *Evaluator) sweep(ctx context.Context, c *cryptogram.Cryptogram, state *transform.State) (interface{}, error) {
	if len(c.Steps) == 0 {
		return nil, &apperrors.NoStepsSpecifiedError{}
	}
	if c.Current < 0 || c.Current >= len(c.Steps) {
		return nil, &apperrors.UnknownStepError{Index: c.Current}
	}

	var final interface{}
	for c.Current < len(c.Steps) {
		i := c.Current
		step := &c.Steps[i]

		stepCtx := logger.WithLogField(ctx, logger.StepIndexKey, i)
		if e.observer != nil {
			e.observer.OnStep(i, deref(step.Service), deref(step.Method))
		}

		newPayload, err := e.evaluateStep(stepCtx, step, state)
		if err != nil {
			return nil, err
		}

		if i+1 < len(c.Steps) {
			if c.Steps[i+1].Payload != nil {
				e.log.Warnf(stepCtx, "Discarding payload for step %d", i+1)
			}
			c.Steps[i+1].Payload = newPayload
		} else {
			final = newPayload
		}
		c.Current = i + 1
	}
	return final, nil
}

func (e *Evaluator) evaluateStep(ctx context.Context, step *cryptogram.Step, state *transform.State) (interface{}, error) {
	outbound := step.Payload
	if step.Preflight != nil {
		value, serr := transform.Eval(ctx, e.tc, step.Preflight.Root, outbound, state)
		if serr != nil {
			return nil, invalidStructure(serr)
		}
		outbound = value
	}

	var memoKey string
	if step.MemoizationPrefix != nil {
		memoKey = *step.MemoizationPrefix + memocache.HashValue(outbound)
		if cached, ok := e.cache.Get(memoKey); ok {
			// postflight already ran when the entry was inserted
			if e.observer != nil {
				e.observer.OnCacheLookup(true)
			}
			e.log.Debugf(ctx, "Memoization hit for key %s", memoKey)
			return cached, nil
		}
		if e.observer != nil {
			e.observer.OnCacheLookup(false)
		}
	}

	if step.Service != nil && step.Method != nil {
		newPayload, err := e.invokeBackend(ctx, *step.Service, *step.Method, outbound, step, state)
		if err != nil {
			return nil, err
		}
		if memoKey != "" {
			e.cache.Insert(memoKey, newPayload, memocache.DefaultTTL)
		}
		return newPayload, nil
	}

	if step.Postflight != nil {
		// inert step: the postflight shapes the payload itself
		value, serr := transform.Eval(ctx, e.tc, step.Postflight.Root, outbound, state)
		if serr != nil {
			return nil, invalidStructure(serr)
		}
		return value, nil
	}

	return outbound, nil
}

func (e *Evaluator) invokeBackend(ctx context.Context, service, method string, outbound interface{}, step *cryptogram.Step, state *transform.State) (interface{}, error) {
	def, meth, err := e.services.Resolve(service, method)
	if err != nil {
		return nil, err
	}
	uri, err := def.BuildURI(meth)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		logger.ServiceKey: service,
		logger.MethodKey:  method,
	})
	resp, err := e.client.IssueRequest(ctx, meth.HTTPMethod, uri, outbound, step.Headers)
	if err != nil {
		return nil, err
	}

	if step.Postflight != nil {
		value, serr := transform.Eval(ctx, e.tc, step.Postflight.Root, resp, state)
		if serr != nil {
			return nil, invalidStructure(serr)
		}
		return value, nil
	}
	return resp, nil
}

func invalidStructure(serr *transform.StepError) error {
	return &apperrors.InvalidStructureError{History: serr.History, Choices: serr.Choices}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
