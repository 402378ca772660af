// Package sim executes fixed-step integrations of configured models and
// publishes their results as immutable run artifacts.
//
// The integrator advances a model with explicit (forward) Euler steps:
// auxiliaries in topological order, then flows, then stock advancement by
// dt times the net flow. Tracked values are recorded pre-advance, so a
// successful run yields series of exactly steps+1 samples sharing one
// time axis.
//
// # Critical Patterns
//
// CP-1: Atomic Publish
//   - Samples accumulate in a private builder; a *RunResult exists only
//     after the final step succeeds
//   - A non-finite value anywhere aborts with a NumericalFailureError and
//     no partial series is ever observable
//
// CP-2: Per-Run Isolation
//   - Every run configures its own model copy and its own builder;
//     nothing mutable is shared between concurrent runs, so no locks are
//     needed inside a run
//
// CP-3: Determinism
//   - A run is a pure function of its configured model: identical inputs
//     produce bit-identical series, which is what makes result caching
//     and golden regression tests sound
//   - The engine performs no retries; retrying unchanged inputs cannot
//     change the outcome
//
// Cancellation is cooperative: the context is checked once per step,
// never mid-step.
package sim
