package sim

import (
	"context"
	"math"

	"github.com/gcrsim/worldsim/internal/model"
)

// Integrate runs a fixed-step explicit Euler integration of the
// configured model and returns its result.
//
// Per step, in order: auxiliaries in the precomputed topological order,
// then flows, then a snapshot of the tracked outputs at the step's time
// stamp, then stock advancement by dt times the net flow. The step count
// is fixed up front, so a successful result always has steps+1 samples
// covering [t0, t_end] at spacing dt.
//
// The definition must be a fresh configured instance owned by this call.
// Integrate never mutates it; all run state lives in locals.
//
// Failure modes:
//   - an untrackable output name fails immediately with *UnknownSeriesError
//   - a non-finite evaluated value aborts with *NumericalFailureError
//   - ctx cancellation is honored once per step, never mid-step
//
// On any failure no partial result is observable.
func Integrate(ctx context.Context, def *model.Definition, outputs []string) (*RunResult, error) {
	if len(outputs) == 0 {
		outputs = def.TrackableNames()
	}
	for _, name := range outputs {
		if !def.Trackable(name) {
			return nil, &UnknownSeriesError{Name: name, Tracked: def.TrackableNames()}
		}
	}

	t0, _, dt, steps := def.Span()
	stocks := def.Stocks()
	plan := def.Plan()
	flows := def.Flows()

	state := make([]float64, len(stocks))
	for i, s := range stocks {
		state[i] = s.Initial
	}

	builder := newSeriesBuilder(outputs, steps+1)
	vals := make(model.Values, len(stocks)+len(plan)+len(flows)+1)

	for step := 0; step <= steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Times advance by exact multiples of dt from t0 so the axis
		// stays strictly monotonic without accumulated rounding drift.
		t := t0 + float64(step)*dt

		clear(vals)
		vals[model.TimeVar] = t
		for i, s := range stocks {
			vals[s.Name] = state[i]
		}

		for _, aux := range plan {
			v := aux.Eval(vals)
			if !isFinite(v) {
				return nil, &NumericalFailureError{Variable: aux.Name, Step: step, Time: t}
			}
			vals[aux.Name] = v
		}

		for _, f := range flows {
			v := f.Eval(vals)
			if !isFinite(v) {
				return nil, &NumericalFailureError{Variable: f.Name, Step: step, Time: t}
			}
			vals[f.Name] = v
		}

		// Pre-advance snapshot: the recorded sample reflects the state
		// at time t, before the stocks move.
		builder.record(t, vals)

		if step == steps {
			break
		}

		for i, s := range stocks {
			net := 0.0
			for _, in := range s.Inflows {
				net += vals[in]
			}
			for _, out := range s.Outflows {
				net -= vals[out]
			}
			// Separate statements keep the update free of fused
			// multiply-add contraction, for cross-platform
			// reproducibility.
			delta := dt * net
			next := state[i] + delta
			if !isFinite(next) {
				return nil, &NumericalFailureError{Variable: s.Name, Step: step, Time: t}
			}
			state[i] = next
		}
	}

	return builder.freeze(), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
