// Package testutil provides small model definitions shared by tests.
package testutil

import (
	"math"

	"github.com/gcrsim/worldsim/internal/model"
)

// GrowthModel builds a single-stock model: a population with one
// proportional growth inflow and no other coupling. With dt=1 each Euler
// step multiplies the stock by exactly (1+rate), which makes expected
// trajectories computable in closed form.
func GrowthModel(t0, tEnd, dt, initial, rate float64) (*model.Definition, error) {
	return model.New(model.Config{
		T0:   t0,
		TEnd: tEnd,
		DT:   dt,
		Stocks: []model.Stock{
			{Name: "population", Initial: initial, Inflows: []string{"growth"}},
		},
		Flows: []model.Flow{
			{
				Name: "growth",
				Deps: []string{"population"},
				Eval: func(v model.Values) float64 { return v["population"] * rate },
			},
		},
	})
}

// FailingModel builds a model whose auxiliary turns non-finite at the
// given simulation time: finite before failAt, NaN from failAt on.
// Used to exercise the integrator's atomic-failure contract.
func FailingModel(t0, tEnd, dt, failAt float64) (*model.Definition, error) {
	return model.New(model.Config{
		T0:   t0,
		TEnd: tEnd,
		DT:   dt,
		Stocks: []model.Stock{
			{Name: "level", Initial: 1, Inflows: []string{"fill"}},
		},
		Auxiliaries: []model.Auxiliary{
			{
				Name: "trigger",
				Deps: []string{model.TimeVar},
				Eval: func(v model.Values) float64 {
					if v[model.TimeVar] >= failAt {
						return math.NaN()
					}
					return 1
				},
			},
		},
		Flows: []model.Flow{
			{
				Name: "fill",
				Deps: []string{"trigger"},
				Eval: func(v model.Values) float64 { return v["trigger"] },
			},
		},
	})
}
