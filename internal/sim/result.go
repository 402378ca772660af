package sim

import (
	"fmt"
	"sort"
)

// RunResult is the immutable bundle of named, time-aligned output series
// from one completed run.
//
// All series share the time axis and have identical length. Accessors
// return defensive copies, so a cached RunResult is safe to share across
// callers and goroutines.
type RunResult struct {
	times  []float64
	series map[string][]float64
}

// NewRunResult assembles a RunResult from a time axis and named series.
// Every series must match the time axis length; at least one sample and
// one series are required.
//
// Used by the persistence layer to rehydrate stored runs; the integrator
// builds results internally and publishes only complete ones.
func NewRunResult(times []float64, series map[string][]float64) (*RunResult, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("run result requires a non-empty time axis")
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("run result requires at least one series")
	}
	r := &RunResult{
		times:  append([]float64(nil), times...),
		series: make(map[string][]float64, len(series)),
	}
	for name, vals := range series {
		if len(vals) != len(times) {
			return nil, fmt.Errorf("series %q has %d samples, time axis has %d", name, len(vals), len(times))
		}
		r.series[name] = append([]float64(nil), vals...)
	}
	return r, nil
}

// Times returns a copy of the shared time axis.
func (r *RunResult) Times() []float64 {
	return append([]float64(nil), r.times...)
}

// Len returns the number of samples per series.
func (r *RunResult) Len() int {
	return len(r.times)
}

// Names returns the tracked series names, sorted.
func (r *RunResult) Names() []string {
	names := make([]string, 0, len(r.series))
	for name := range r.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Series returns a copy of the named series. Unknown names fail with an
// *UnknownSeriesError.
func (r *RunResult) Series(name string) ([]float64, error) {
	vals, ok := r.series[name]
	if !ok {
		return nil, &UnknownSeriesError{Name: name, Tracked: r.Names()}
	}
	return append([]float64(nil), vals...), nil
}

// Final returns the last sample of the named series.
func (r *RunResult) Final(name string) (float64, error) {
	vals, ok := r.series[name]
	if !ok {
		return 0, &UnknownSeriesError{Name: name, Tracked: r.Names()}
	}
	return vals[len(vals)-1], nil
}

// seriesBuilder accumulates per-step samples. A RunResult is frozen out
// of it only after the integrator signals successful completion; an
// abandoned builder leaves nothing observable.
type seriesBuilder struct {
	outputs []string
	times   []float64
	series  map[string][]float64
}

func newSeriesBuilder(outputs []string, samples int) *seriesBuilder {
	b := &seriesBuilder{
		outputs: outputs,
		times:   make([]float64, 0, samples),
		series:  make(map[string][]float64, len(outputs)),
	}
	for _, name := range outputs {
		b.series[name] = make([]float64, 0, samples)
	}
	return b
}

// record appends one snapshot: the step's time stamp and the current
// value of every tracked output.
func (b *seriesBuilder) record(t float64, vals map[string]float64) {
	b.times = append(b.times, t)
	for _, name := range b.outputs {
		b.series[name] = append(b.series[name], vals[name])
	}
}

// freeze publishes the accumulated samples as an immutable RunResult.
// The builder must not be used afterwards.
func (b *seriesBuilder) freeze() *RunResult {
	r := &RunResult{times: b.times, series: b.series}
	b.times = nil
	b.series = nil
	return r
}
