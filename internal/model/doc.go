// Package model defines the stock-and-flow representation of a
// system-dynamics simulation.
//
// A model is a closed set of named variables:
//
//   - Stocks: accumulated state, advanced once per step by the integrator
//   - Flows: rates of change, recomputed every step from stocks and auxiliaries
//   - Auxiliaries: derived intermediate quantities, recomputed every step
//   - Tables: piecewise-linear lookup functions used inside flow and
//     auxiliary equations
//
// plus the simulated time span [t0, t_end] and a fixed step size dt.
//
// # Critical Patterns
//
// CP-1: Definitions Are Immutable
//   - New validates the whole variable graph once; a Definition never
//     changes afterwards
//   - Configure returns an independent copy with overrides applied,
//     so concurrent runs never share mutable state
//
// CP-2: Single-Pass Evaluation Order
//   - Auxiliary dependencies are topologically sorted at construction time
//   - A dependency cycle rejects the model with a DefinitionError,
//     never a runtime stack overflow
//
// CP-3: Lookups Are Data, Not Code
//   - Each Table is an ordered sequence of (x, y) control points with
//     clamped linear interpolation; inputs outside the domain snap to the
//     nearest endpoint, never extrapolate
//
// The versioned GCR world model (world3.go) is the one concrete equation
// set shipped with this package. It is regression-tested against golden
// series; any change to its equations or constants must bump
// GCRModelVersion.
package model
