package model

import (
	"fmt"
	"math"
	"sort"
)

// TimeVar is the reserved name for the current simulation time.
// Auxiliaries and flows may declare it as a dependency; it is always
// defined and set by the integrator before each step.
const TimeVar = "time"

// Values holds the named variable values visible during one evaluation
// pass: the current stocks, the reserved time variable, and every
// auxiliary and flow computed so far this step.
type Values map[string]float64

// Stock is an accumulated state variable. It is mutated only by the
// integrator, once per step, by the net of its declared flows integrated
// over the step size.
type Stock struct {
	Name    string
	Initial float64

	// Inflows and Outflows name the flows contributing to this stock.
	// Inflows add with positive sign, outflows subtract.
	Inflows  []string
	Outflows []string
}

// Flow is a rate of change. It is read-only during a step: evaluated from
// the current stocks and the just-computed auxiliaries, then applied to
// its stocks by the integrator.
type Flow struct {
	Name string

	// Deps names the variables Eval reads. Every entry must resolve to a
	// stock, an auxiliary, or TimeVar.
	Deps []string

	Eval func(v Values) float64
}

// Auxiliary is a derived intermediate variable, recomputed every step.
// Auxiliaries may depend on stocks, TimeVar, and other auxiliaries; the
// auxiliary-to-auxiliary dependency graph must be acyclic.
type Auxiliary struct {
	Name string
	Deps []string
	Eval func(v Values) float64
}

// Config declares a model for New.
type Config struct {
	// T0, TEnd, DT define the simulated time grid. DT must be positive
	// and (TEnd-T0)/DT must be a positive integer.
	T0, TEnd, DT float64

	Stocks      []Stock
	Flows       []Flow
	Auxiliaries []Auxiliary

	// Tables lists the lookup tables referenced by flow and auxiliary
	// equations. Listed here only so construction validates them; the
	// equations capture them directly.
	Tables []*Table
}

// Definition is a validated, immutable model: the closed variable set,
// the precomputed evaluation plan, and the time grid.
//
// A Definition is safe for concurrent reads. Configure produces an
// independent copy; a fresh configured Definition is required per run.
type Definition struct {
	t0, tEnd, dt float64
	steps        int

	stocks []Stock
	flows  []Flow

	// auxes holds auxiliaries in topological evaluation order.
	auxes []Auxiliary

	names map[string]varKind
}

type varKind int

const (
	kindStock varKind = iota
	kindFlow
	kindAux
)

// New validates a model configuration and builds its Definition.
//
// Validation covers the time grid, name uniqueness, reference resolution
// for every declared dependency and stock flow list, table well-formedness,
// and acyclicity of the auxiliary dependency graph. Any violation fails
// with a *DefinitionError; no partially-built Definition is returned.
func New(cfg Config) (*Definition, error) {
	steps, err := stepCount(cfg.T0, cfg.TEnd, cfg.DT)
	if err != nil {
		return nil, err
	}

	for _, t := range cfg.Tables {
		if t == nil {
			return nil, &DefinitionError{Code: ErrCodeBadTable, Message: "nil table in configuration"}
		}
	}

	names := make(map[string]varKind)
	declare := func(name string, kind varKind) error {
		if name == "" {
			return &DefinitionError{Code: ErrCodeDuplicateName, Message: "variable name is required"}
		}
		if name == TimeVar {
			return &DefinitionError{
				Code:    ErrCodeDuplicateName,
				Name:    name,
				Message: fmt.Sprintf("%q is reserved for the simulation time", TimeVar),
			}
		}
		if _, dup := names[name]; dup {
			return &DefinitionError{Code: ErrCodeDuplicateName, Name: name, Message: "variable declared twice"}
		}
		names[name] = kind
		return nil
	}

	for _, s := range cfg.Stocks {
		if err := declare(s.Name, kindStock); err != nil {
			return nil, err
		}
	}
	for _, a := range cfg.Auxiliaries {
		if err := declare(a.Name, kindAux); err != nil {
			return nil, err
		}
	}
	for _, f := range cfg.Flows {
		if err := declare(f.Name, kindFlow); err != nil {
			return nil, err
		}
	}

	// Auxiliary deps resolve to stocks, other auxiliaries, or time.
	for _, a := range cfg.Auxiliaries {
		if a.Eval == nil {
			return nil, &DefinitionError{Code: ErrCodeUndefinedRef, Name: a.Name, Message: "auxiliary has no equation"}
		}
		for _, dep := range a.Deps {
			if dep == TimeVar {
				continue
			}
			kind, ok := names[dep]
			if !ok {
				return nil, &DefinitionError{
					Code:    ErrCodeUndefinedRef,
					Name:    a.Name,
					Message: fmt.Sprintf("auxiliary depends on undefined name %q", dep),
				}
			}
			if kind == kindFlow {
				return nil, &DefinitionError{
					Code:    ErrCodeUndefinedRef,
					Name:    a.Name,
					Message: fmt.Sprintf("auxiliary depends on flow %q: flows are evaluated after auxiliaries", dep),
				}
			}
		}
	}

	// Flow deps resolve to stocks, auxiliaries, or time (not other flows).
	for _, f := range cfg.Flows {
		if f.Eval == nil {
			return nil, &DefinitionError{Code: ErrCodeUndefinedRef, Name: f.Name, Message: "flow has no equation"}
		}
		for _, dep := range f.Deps {
			if dep == TimeVar {
				continue
			}
			kind, ok := names[dep]
			if !ok {
				return nil, &DefinitionError{
					Code:    ErrCodeUndefinedRef,
					Name:    f.Name,
					Message: fmt.Sprintf("flow depends on undefined name %q", dep),
				}
			}
			if kind == kindFlow {
				return nil, &DefinitionError{
					Code:    ErrCodeUndefinedRef,
					Name:    f.Name,
					Message: fmt.Sprintf("flow depends on flow %q: flows may not depend on each other", dep),
				}
			}
		}
	}

	// Stock flow lists resolve to declared flows.
	for _, s := range cfg.Stocks {
		for _, fn := range append(append([]string{}, s.Inflows...), s.Outflows...) {
			kind, ok := names[fn]
			if !ok || kind != kindFlow {
				return nil, &DefinitionError{
					Code:    ErrCodeUndefinedRef,
					Name:    s.Name,
					Message: fmt.Sprintf("stock references undefined flow %q", fn),
				}
			}
		}
	}

	ordered, err := sortAuxiliaries(cfg.Auxiliaries)
	if err != nil {
		return nil, err
	}

	d := &Definition{
		t0:     cfg.T0,
		tEnd:   cfg.TEnd,
		dt:     cfg.DT,
		steps:  steps,
		stocks: append([]Stock(nil), cfg.Stocks...),
		flows:  append([]Flow(nil), cfg.Flows...),
		auxes:  ordered,
		names:  names,
	}
	return d, nil
}

// stepCount validates the time grid and returns the exact step count.
func stepCount(t0, tEnd, dt float64) (int, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0, &DefinitionError{
			Code:    ErrCodeBadTimeGrid,
			Message: fmt.Sprintf("dt must be positive, got %v", dt),
		}
	}
	span := tEnd - t0
	if span <= 0 {
		return 0, &DefinitionError{
			Code:    ErrCodeBadTimeGrid,
			Message: fmt.Sprintf("t_end must be after t0: [%v, %v]", t0, tEnd),
		}
	}
	n := math.Round(span / dt)
	if n < 1 || math.Abs(n*dt-span) > 1e-9*span {
		return 0, &DefinitionError{
			Code:    ErrCodeBadTimeGrid,
			Message: fmt.Sprintf("(t_end-t0)/dt must be a positive integer: span=%v dt=%v", span, dt),
		}
	}
	return int(n), nil
}

// sortAuxiliaries returns the auxiliaries in topological dependency order
// (Kahn's algorithm). Ties are broken by declaration order so the plan is
// deterministic. A cycle fails with a *DefinitionError naming its members.
func sortAuxiliaries(auxes []Auxiliary) ([]Auxiliary, error) {
	pos := make(map[string]int, len(auxes))
	for i, a := range auxes {
		pos[a.Name] = i
	}

	// indegree counts only aux-to-aux edges; stocks and time are always
	// available before the pass starts.
	indegree := make([]int, len(auxes))
	dependents := make([][]int, len(auxes))
	for i, a := range auxes {
		for _, dep := range a.Deps {
			j, isAux := pos[dep]
			if !isAux {
				continue
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	ready := make([]int, 0, len(auxes))
	for i, deg := range indegree {
		if deg == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]Auxiliary, 0, len(auxes))
	for len(ready) > 0 {
		// Declaration order among ready nodes keeps the plan stable.
		sort.Ints(ready)
		i := ready[0]
		ready = ready[1:]
		ordered = append(ordered, auxes[i])
		for _, dep := range dependents[i] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(ordered) != len(auxes) {
		var cycle []string
		for i, deg := range indegree {
			if deg > 0 {
				cycle = append(cycle, auxes[i].Name)
			}
		}
		return nil, &DefinitionError{
			Code:    ErrCodeCycle,
			Cycle:   cycle,
			Message: "auxiliary dependencies are cyclic",
		}
	}
	return ordered, nil
}

// Overrides adjusts a Definition without mutating it: constant values for
// named auxiliaries and replacement initial values for named stocks.
// Scenario parameterization produces these.
type Overrides struct {
	Auxiliaries map[string]float64
	Stocks      map[string]float64
}

// Configure returns an independent copy of the Definition with the given
// overrides applied. The receiver is never modified, so a shared base
// model can configure concurrent runs safely.
//
// Overriding a name the model does not declare (or declares as the wrong
// kind) fails with a *DefinitionError.
func (d *Definition) Configure(ov Overrides) (*Definition, error) {
	cp := &Definition{
		t0:     d.t0,
		tEnd:   d.tEnd,
		dt:     d.dt,
		steps:  d.steps,
		stocks: append([]Stock(nil), d.stocks...),
		flows:  append([]Flow(nil), d.flows...),
		auxes:  append([]Auxiliary(nil), d.auxes...),
		names:  d.names, // read-only after New
	}

	for name, val := range ov.Auxiliaries {
		idx := -1
		for i, a := range cp.auxes {
			if a.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, &DefinitionError{
				Code:    ErrCodeUnknownOverride,
				Name:    name,
				Message: "override targets an undeclared auxiliary",
			}
		}
		v := val
		cp.auxes[idx] = Auxiliary{
			Name: name,
			Eval: func(Values) float64 { return v },
		}
	}

	for name, val := range ov.Stocks {
		idx := -1
		for i, s := range cp.stocks {
			if s.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, &DefinitionError{
				Code:    ErrCodeUnknownOverride,
				Name:    name,
				Message: "override targets an undeclared stock",
			}
		}
		cp.stocks[idx].Initial = val
	}

	return cp, nil
}

// Span returns the time grid: start, end, step size, and exact step count.
// The produced series has steps+1 samples.
func (d *Definition) Span() (t0, tEnd, dt float64, steps int) {
	return d.t0, d.tEnd, d.dt, d.steps
}

// Stocks returns the declared stocks in declaration order.
func (d *Definition) Stocks() []Stock {
	return append([]Stock(nil), d.stocks...)
}

// Flows returns the declared flows in declaration order.
func (d *Definition) Flows() []Flow {
	return append([]Flow(nil), d.flows...)
}

// Plan returns the auxiliaries in topological evaluation order.
func (d *Definition) Plan() []Auxiliary {
	return append([]Auxiliary(nil), d.auxes...)
}

// Trackable reports whether name is eligible for output tracking:
// any declared stock, flow, or auxiliary.
func (d *Definition) Trackable(name string) bool {
	_, ok := d.names[name]
	return ok
}

// TrackableNames returns every name eligible for tracking, sorted.
func (d *Definition) TrackableNames() []string {
	out := make([]string, 0, len(d.names))
	for name := range d.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
