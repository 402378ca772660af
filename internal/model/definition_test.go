package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalConfig builds a valid one-stock configuration for mutation in
// individual tests.
func minimalConfig() Config {
	return Config{
		T0:   0,
		TEnd: 10,
		DT:   1,
		Stocks: []Stock{
			{Name: "level", Initial: 1, Inflows: []string{"fill"}},
		},
		Auxiliaries: []Auxiliary{
			{Name: "rate", Eval: func(Values) float64 { return 0.5 }},
		},
		Flows: []Flow{
			{
				Name: "fill",
				Deps: []string{"level", "rate"},
				Eval: func(v Values) float64 { return v["level"] * v["rate"] },
			},
		},
	}
}

func TestNew_Valid(t *testing.T) {
	def, err := New(minimalConfig())
	require.NoError(t, err)

	t0, tEnd, dt, steps := def.Span()
	assert.Equal(t, 0.0, t0)
	assert.Equal(t, 10.0, tEnd)
	assert.Equal(t, 1.0, dt)
	assert.Equal(t, 10, steps)

	assert.True(t, def.Trackable("level"))
	assert.True(t, def.Trackable("rate"))
	assert.True(t, def.Trackable("fill"))
	assert.False(t, def.Trackable("nope"))
	assert.Equal(t, []string{"fill", "level", "rate"}, def.TrackableNames())
}

func TestNew_BadTimeGrid(t *testing.T) {
	tests := []struct {
		name         string
		t0, tEnd, dt float64
	}{
		{"zero dt", 0, 10, 0},
		{"negative dt", 0, 10, -1},
		{"empty span", 5, 5, 1},
		{"reversed span", 10, 0, 1},
		{"non-integer step count", 0, 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := minimalConfig()
			cfg.T0, cfg.TEnd, cfg.DT = tt.t0, tt.tEnd, tt.dt
			_, err := New(cfg)
			require.Error(t, err)

			var de *DefinitionError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, ErrCodeBadTimeGrid, de.Code)
		})
	}
}

func TestNew_HalfYearGridIsExact(t *testing.T) {
	cfg := minimalConfig()
	cfg.T0, cfg.TEnd, cfg.DT = 1900, 2100, 0.5
	def, err := New(cfg)
	require.NoError(t, err)

	_, _, _, steps := def.Span()
	assert.Equal(t, 400, steps)
}

func TestNew_UndefinedReference(t *testing.T) {
	cfg := minimalConfig()
	cfg.Flows[0].Deps = []string{"ghost"}
	_, err := New(cfg)

	var de *DefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeUndefinedRef, de.Code)
	assert.Equal(t, "fill", de.Name)
	assert.Contains(t, de.Error(), "ghost")
}

func TestNew_StockReferencesUndefinedFlow(t *testing.T) {
	cfg := minimalConfig()
	cfg.Stocks[0].Outflows = []string{"drain"}
	_, err := New(cfg)

	var de *DefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeUndefinedRef, de.Code)
	assert.Equal(t, "level", de.Name)
}

func TestNew_DuplicateName(t *testing.T) {
	cfg := minimalConfig()
	cfg.Auxiliaries = append(cfg.Auxiliaries, Auxiliary{
		Name: "level", // collides with the stock
		Eval: func(Values) float64 { return 0 },
	})
	_, err := New(cfg)

	var de *DefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeDuplicateName, de.Code)
}

func TestNew_ReservedTimeName(t *testing.T) {
	cfg := minimalConfig()
	cfg.Auxiliaries = append(cfg.Auxiliaries, Auxiliary{
		Name: TimeVar,
		Eval: func(Values) float64 { return 0 },
	})
	_, err := New(cfg)

	var de *DefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeDuplicateName, de.Code)
}

func TestNew_AuxiliaryCycle(t *testing.T) {
	cfg := minimalConfig()
	cfg.Auxiliaries = []Auxiliary{
		{Name: "a", Deps: []string{"b"}, Eval: func(v Values) float64 { return v["b"] }},
		{Name: "b", Deps: []string{"c"}, Eval: func(v Values) float64 { return v["c"] }},
		{Name: "c", Deps: []string{"a"}, Eval: func(v Values) float64 { return v["a"] }},
		{Name: "rate", Eval: func(Values) float64 { return 0.5 }},
	}
	_, err := New(cfg)

	// The cycle is a tagged error naming its members, not a runtime
	// stack overflow.
	var de *DefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeCycle, de.Code)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, de.Cycle)
	assert.True(t, IsCycleError(err))
}

func TestNew_AuxiliaryDependsOnFlow(t *testing.T) {
	cfg := minimalConfig()
	cfg.Auxiliaries = append(cfg.Auxiliaries, Auxiliary{
		Name: "echo",
		Deps: []string{"fill"},
		Eval: func(v Values) float64 { return v["fill"] },
	})
	_, err := New(cfg)

	var de *DefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeUndefinedRef, de.Code)
}

func TestPlan_TopologicalOrder(t *testing.T) {
	cfg := minimalConfig()
	// Declared deliberately out of dependency order.
	cfg.Auxiliaries = []Auxiliary{
		{Name: "c", Deps: []string{"b"}, Eval: func(v Values) float64 { return v["b"] + 1 }},
		{Name: "b", Deps: []string{"a"}, Eval: func(v Values) float64 { return v["a"] + 1 }},
		{Name: "a", Deps: []string{"level"}, Eval: func(v Values) float64 { return v["level"] }},
		{Name: "rate", Eval: func(Values) float64 { return 0.5 }},
	}
	def, err := New(cfg)
	require.NoError(t, err)

	plan := def.Plan()
	index := make(map[string]int, len(plan))
	for i, aux := range plan {
		index[aux.Name] = i
	}
	assert.Less(t, index["a"], index["b"])
	assert.Less(t, index["b"], index["c"])
}

func TestConfigure_OverridesWithoutMutatingBase(t *testing.T) {
	base, err := New(minimalConfig())
	require.NoError(t, err)

	cfgd, err := base.Configure(Overrides{
		Auxiliaries: map[string]float64{"rate": 0.9},
		Stocks:      map[string]float64{"level": 42},
	})
	require.NoError(t, err)

	// The configured copy reflects the overrides.
	assert.Equal(t, 42.0, cfgd.Stocks()[0].Initial)
	for _, aux := range cfgd.Plan() {
		if aux.Name == "rate" {
			assert.Equal(t, 0.9, aux.Eval(nil))
		}
	}

	// The base is untouched.
	assert.Equal(t, 1.0, base.Stocks()[0].Initial)
	for _, aux := range base.Plan() {
		if aux.Name == "rate" {
			assert.Equal(t, 0.5, aux.Eval(nil))
		}
	}
}

func TestConfigure_UnknownOverride(t *testing.T) {
	base, err := New(minimalConfig())
	require.NoError(t, err)

	_, err = base.Configure(Overrides{Auxiliaries: map[string]float64{"ghost": 1}})
	var de *DefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeUnknownOverride, de.Code)

	_, err = base.Configure(Overrides{Stocks: map[string]float64{"ghost": 1}})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeUnknownOverride, de.Code)
}

func TestIsDefinitionError(t *testing.T) {
	_, err := New(Config{T0: 0, TEnd: 1, DT: 0})
	assert.True(t, IsDefinitionError(err))
	assert.False(t, IsDefinitionError(nil))
}
