package sim

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcrsim/worldsim/internal/model"
	"github.com/gcrsim/worldsim/internal/scenario"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewGCR(model.GCRSpan{})
	require.NoError(t, err)
	return eng
}

func TestEngine_BaselineRun(t *testing.T) {
	eng := newTestEngine(t)

	res, err := eng.Run(context.Background(), scenario.Scenario{})
	require.NoError(t, err)
	assert.Equal(t, 401, res.Len())

	names := res.Names()
	for _, want := range model.GCRDefaultOutputs {
		assert.Contains(t, names, want)
	}
}

func TestEngine_ValidationBeforeRun(t *testing.T) {
	eng := newTestEngine(t)

	tests := []struct {
		name string
		s    scenario.Scenario
	}{
		{"below range", scenario.Scenario{model.XCCPriceParam: 0.5}},
		{"above range", scenario.Scenario{model.XCCPriceParam: 1001}},
		{"NaN", scenario.Scenario{model.XCCPriceParam: math.NaN()}},
		{"unknown parameter", scenario.Scenario{"warp_factor": 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := eng.Run(context.Background(), tt.s)
			assert.Nil(t, res)
			// A malformed input is a validation failure; it must never
			// reach the integrator and come back as a numerical one.
			assert.True(t, scenario.IsValidationError(err))
			assert.False(t, IsNumericalFailure(err))
		})
	}
}

// Identical scenarios on fresh engines produce bit-identical series.
func TestEngine_Deterministic(t *testing.T) {
	s := scenario.Scenario{model.XCCPriceParam: 250}

	a, err := newTestEngine(t).Run(context.Background(), s)
	require.NoError(t, err)
	b, err := newTestEngine(t).Run(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, a.Times(), b.Times())
	for _, name := range a.Names() {
		av, err := a.Series(name)
		require.NoError(t, err)
		bv, err := b.Series(name)
		require.NoError(t, err)
		assert.Equal(t, av, bv, "series %q", name)
	}
}

func TestEngine_CachesByScenarioKey(t *testing.T) {
	eng := newTestEngine(t)
	s := scenario.Scenario{model.XCCPriceParam: 100}

	first, err := eng.Run(context.Background(), s)
	require.NoError(t, err)
	second, err := eng.Run(context.Background(), s)
	require.NoError(t, err)

	// Cache hit: the shared immutable result, not a recomputation.
	assert.Same(t, first, second)

	other, err := eng.Run(context.Background(), scenario.Scenario{model.XCCPriceParam: 200})
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

// A higher carbon-credit price never increases emissions, at any sample.
func TestEngine_CO2eMonotoneInPrice(t *testing.T) {
	eng := newTestEngine(t)

	low, err := eng.Run(context.Background(), scenario.Scenario{model.XCCPriceParam: 100})
	require.NoError(t, err)
	high, err := eng.Run(context.Background(), scenario.Scenario{model.XCCPriceParam: 500})
	require.NoError(t, err)

	lowE, err := low.Series("co2e_emissions")
	require.NoError(t, err)
	highE, err := high.Series("co2e_emissions")
	require.NoError(t, err)

	require.Equal(t, len(lowE), len(highE))
	for i := range lowE {
		assert.LessOrEqual(t, highE[i], lowE[i], "sample %d", i)
	}

	lowFinal, err := low.Final("co2e_emissions")
	require.NoError(t, err)
	highFinal, err := high.Final("co2e_emissions")
	require.NoError(t, err)
	assert.Less(t, highFinal, lowFinal)
}

// Concurrent runs with different scenarios match their sequential
// references exactly: per-run isolation leaves no cross-talk.
func TestEngine_ConcurrentIsolation(t *testing.T) {
	prices := []float64{1, 50, 100, 250, 500, 750, 1000}

	reference := make(map[float64][]float64, len(prices))
	refEng := newTestEngine(t)
	for _, p := range prices {
		res, err := refEng.Run(context.Background(), scenario.Scenario{model.XCCPriceParam: p})
		require.NoError(t, err)
		pop, err := res.Series("population")
		require.NoError(t, err)
		reference[p] = pop
	}

	eng := newTestEngine(t)
	var wg sync.WaitGroup
	errs := make(chan error, len(prices)*4)
	for round := 0; round < 4; round++ {
		for _, p := range prices {
			wg.Add(1)
			go func(p float64) {
				defer wg.Done()
				res, err := eng.Run(context.Background(), scenario.Scenario{model.XCCPriceParam: p})
				if err != nil {
					errs <- err
					return
				}
				pop, err := res.Series("population")
				if err != nil {
					errs <- err
					return
				}
				if !assert.ObjectsAreEqual(reference[p], pop) {
					errs <- assert.AnError
				}
			}(p)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent run: %v", err)
	}
}

func TestEngine_CancelledRunNotCached(t *testing.T) {
	eng := newTestEngine(t)
	s := scenario.Scenario{model.XCCPriceParam: 42}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Run(ctx, s)
	require.ErrorIs(t, err, context.Canceled)

	// A later request with the same scenario succeeds.
	res, err := eng.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 401, res.Len())
}

func TestEngine_Accessors(t *testing.T) {
	eng := newTestEngine(t)

	assert.Equal(t, model.GCRModelVersion, eng.ModelVersion())
	assert.Equal(t, model.GCRDefaultOutputs, eng.Outputs())

	params := eng.Parameters()
	require.Len(t, params, 1)
	assert.Equal(t, model.XCCPriceParam, params[0].Name)
}
