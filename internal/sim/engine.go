package sim

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gcrsim/worldsim/internal/model"
	"github.com/gcrsim/worldsim/internal/scenario"
)

// Engine exposes the one operation the simulation offers its callers:
// run a scenario to completion, or fail with a typed error.
//
// Every Run configures its own model copy and builds its own series, so
// concurrent runs with different scenarios never observe each other's
// state. Completed results are cached by canonical scenario key, and at
// most one computation per key is ever in flight: concurrent identical
// requests join the running one instead of duplicating it.
//
// Thread-safety: all methods are safe for concurrent use.
type Engine struct {
	base    *model.Definition
	version string
	params  []scenario.Parameter
	outputs []string

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]*RunResult
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutputs overrides the tracked output series.
func WithOutputs(outputs []string) Option {
	return func(e *Engine) {
		e.outputs = append([]string(nil), outputs...)
	}
}

// New creates an Engine around a base model definition.
//
// The modelVersion namespaces cache keys so results recorded under one
// equation set are never served for another.
func New(base *model.Definition, modelVersion string, params []scenario.Parameter, opts ...Option) *Engine {
	e := &Engine{
		base:    base,
		version: modelVersion,
		params:  append([]scenario.Parameter(nil), params...),
		cache:   make(map[string]*RunResult),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewGCR creates an Engine around the versioned GCR world model with its
// declared parameters and default outputs.
func NewGCR(span model.GCRSpan) (*Engine, error) {
	base, err := model.NewGCRModel(span)
	if err != nil {
		return nil, err
	}
	return New(base, model.GCRModelVersion, scenario.GCRParameters(),
		WithOutputs(model.GCRDefaultOutputs)), nil
}

// ModelVersion returns the engine's model version string.
func (e *Engine) ModelVersion() string { return e.version }

// Parameters returns the declared scenario parameters.
func (e *Engine) Parameters() []scenario.Parameter {
	return append([]scenario.Parameter(nil), e.params...)
}

// Outputs returns the tracked output series names.
func (e *Engine) Outputs() []string {
	return append([]string(nil), e.outputs...)
}

// Run executes one scenario and returns its immutable result.
//
// Validation failures return a *scenario.ValidationError before any
// integration starts. Successful results are cached; a cache hit returns
// the shared immutable result without recomputation. Context cancellation
// aborts the run (checked once per integration step) and is not cached.
func (e *Engine) Run(ctx context.Context, s scenario.Scenario) (*RunResult, error) {
	// Validate before deduplication so a bad request fails directly,
	// not through a shared flight.
	if err := scenario.Validate(e.params, s); err != nil {
		return nil, err
	}

	key := scenario.Key(e.version, s)

	e.mu.RLock()
	cached := e.cache[key]
	e.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := e.group.Do(key, func() (any, error) {
		e.mu.RLock()
		hit := e.cache[key]
		e.mu.RUnlock()
		if hit != nil {
			return hit, nil
		}

		cfg, err := scenario.Apply(e.base, e.params, s)
		if err != nil {
			return nil, err
		}
		res, err := Integrate(ctx, cfg, e.outputs)
		if err != nil {
			return nil, err
		}

		e.mu.Lock()
		e.cache[key] = res
		e.mu.Unlock()
		return res, nil
	})
	if err != nil {
		// Cancellation errors are transient; forget the flight so a
		// later identical request recomputes.
		if ctx.Err() != nil {
			e.group.Forget(key)
		}
		return nil, err
	}
	return v.(*RunResult), nil
}
