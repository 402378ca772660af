package model

// GCRModelVersion identifies the shipped equation set. The golden
// regression series in internal/sim are recorded against this version;
// any change to an equation, constant, or table below must bump it and
// regenerate the goldens.
const GCRModelVersion = "gcr-v1"

// XCCPriceParam is the auxiliary overridden by the carbon-credit price
// scenario parameter. Its baseline value of zero means no policy: the
// abatement tables map zero price to zero abatement.
const XCCPriceParam = "xcc_price"

// GCRDefaultOutputs are the series tracked by default, matching the
// dashboard contract: population, industrial output, pollution index,
// and CO2-equivalent emissions.
var GCRDefaultOutputs = []string{
	"population",
	"industrial_output",
	"persistent_pollution_index",
	"co2e_emissions",
}

// Sector constants for the GCR world model. Units are millions-scale
// absolutes: persons, dollars of capital, resource units, pollution units,
// tonnes CO2e. The values are calibrated for plausible century-scale
// trajectories, not for fidelity to any specific historical dataset.
const (
	gcrT0   = 1900.0
	gcrTEnd = 2100.0
	gcrDT   = 0.5

	initialPopulation = 1.6e9
	initialCapital    = 2.0e11
	initialResources  = 1.0e12
	initialPollution  = 2.5e7

	birthRateNormal    = 0.032 // births per person-year, before fertility response
	deathRateNormal    = 0.028 // deaths per person-year, before mortality response
	capitalOutputRatio = 3.0   // dollars of capital per dollar of annual output
	investmentFraction = 0.2   // share of industrial output reinvested
	capitalLifetime    = 20.0  // years
	resourceIntensity  = 0.02  // resource units consumed per dollar of output

	emissionIntensity         = 5.0e-4 // tonnes CO2e per dollar of output, unabated
	pollutionPerTonCO2e       = 0.25   // pollution units generated per tonne CO2e
	pollutionAssimilationTime = 25.0   // years

	foodBase        = 2.4e9 // subsistence-equivalent food supply at reference yield
	subsistenceFood = 1.0   // food per capita at bare subsistence
)

// Nonlinear sector responses. All nonlinearity in the model runs through
// these tables so that runs are bit-reproducible: no transcendental calls.
var (
	// Extraction efficiency collapses as the remaining resource
	// fraction falls (diminishing returns on depletion).
	resourceEfficiencyTable = MustTable("resource_efficiency",
		[]float64{0, 0.1, 0.3, 0.5, 0.7, 1.0},
		[]float64{0, 0.15, 0.5, 0.75, 0.9, 1.0})

	// Agricultural yield degrades as the pollution index climbs.
	pollutionYieldTable = MustTable("pollution_yield",
		[]float64{0, 1, 10, 30, 100},
		[]float64{1, 1, 0.85, 0.6, 0.3})

	// Fertility declines with rising income (demographic transition).
	fertilityIncomeTable = MustTable("fertility_income",
		[]float64{0, 200, 600, 1500, 4000},
		[]float64{1.2, 1.0, 0.85, 0.7, 0.6})

	// Mortality rises steeply below subsistence food ratio.
	mortalityFoodTable = MustTable("mortality_food",
		[]float64{0, 0.5, 1, 2, 4},
		[]float64{3, 1.8, 1, 0.85, 0.75})

	// Mortality rises with the pollution index.
	mortalityPollutionTable = MustTable("mortality_pollution",
		[]float64{0, 1, 10, 30, 100},
		[]float64{0.9, 1, 1.1, 1.4, 2})

	// Share of industrial investment diverted to abatement capacity,
	// as a function of the carbon-credit price ($/tCO2e).
	abatementShareTable = MustTable("abatement_share",
		[]float64{0, 1, 100, 250, 500, 1000},
		[]float64{0, 0.005, 0.03, 0.05, 0.08, 0.1})

	// Fraction of gross emissions avoided at a given carbon-credit
	// price. Monotone nondecreasing: a higher price never increases
	// emissions.
	emissionAbatementTable = MustTable("emission_abatement",
		[]float64{0, 1, 100, 250, 500, 1000},
		[]float64{0, 0.01, 0.25, 0.45, 0.65, 0.8})
)

// GCRSpan optionally overrides the simulated time grid of the GCR model.
// Zero values keep the defaults (1900-2100 at half-year steps).
type GCRSpan struct {
	T0, TEnd, DT float64
}

func (s GCRSpan) withDefaults() GCRSpan {
	if s.T0 == 0 && s.TEnd == 0 {
		s.T0, s.TEnd = gcrT0, gcrTEnd
	}
	if s.DT == 0 {
		s.DT = gcrDT
	}
	return s
}

// NewGCRModel builds the versioned GCR world model: five coupled sectors
// (population, industrial capital, agriculture, nonrenewable resources,
// persistent pollution) plus CO2e emissions, with a carbon-credit price
// auxiliary feeding the abatement responses.
//
// The returned Definition is a fresh instance; callers must not share a
// configured copy across concurrent runs.
func NewGCRModel(span GCRSpan) (*Definition, error) {
	span = span.withDefaults()

	// Intermediate assignments throughout the equations force rounding
	// after each floating-point operation, keeping trajectories
	// bit-identical across architectures.
	cfg := Config{
		T0:   span.T0,
		TEnd: span.TEnd,
		DT:   span.DT,

		Tables: []*Table{
			resourceEfficiencyTable,
			pollutionYieldTable,
			fertilityIncomeTable,
			mortalityFoodTable,
			mortalityPollutionTable,
			abatementShareTable,
			emissionAbatementTable,
		},

		Auxiliaries: []Auxiliary{
			{
				Name: XCCPriceParam,
				Eval: func(Values) float64 { return 0 },
			},
			{
				Name: "resource_fraction",
				Deps: []string{"natural_resources"},
				Eval: func(v Values) float64 {
					r := v["natural_resources"]
					// Euler steps can overshoot past empty.
					if r < 0 {
						r = 0
					}
					return r / initialResources
				},
			},
			{
				Name: "extraction_efficiency",
				Deps: []string{"resource_fraction"},
				Eval: func(v Values) float64 {
					return resourceEfficiencyTable.At(v["resource_fraction"])
				},
			},
			{
				Name: "industrial_output",
				Deps: []string{"industrial_capital", "extraction_efficiency"},
				Eval: func(v Values) float64 {
					potential := v["industrial_capital"] / capitalOutputRatio
					return potential * v["extraction_efficiency"]
				},
			},
			{
				Name: "io_per_capita",
				Deps: []string{"industrial_output", "population"},
				Eval: func(v Values) float64 {
					return v["industrial_output"] / v["population"]
				},
			},
			{
				Name: "persistent_pollution_index",
				Deps: []string{"persistent_pollution"},
				Eval: func(v Values) float64 {
					return v["persistent_pollution"] / initialPollution
				},
			},
			{
				Name: "food_production",
				Deps: []string{"persistent_pollution_index"},
				Eval: func(v Values) float64 {
					yield := pollutionYieldTable.At(v["persistent_pollution_index"])
					return foodBase * yield
				},
			},
			{
				Name: "food_ratio",
				Deps: []string{"food_production", "population"},
				Eval: func(v Values) float64 {
					perCapita := v["food_production"] / v["population"]
					return perCapita / subsistenceFood
				},
			},
			{
				Name: "fertility_multiplier",
				Deps: []string{"io_per_capita"},
				Eval: func(v Values) float64 {
					return fertilityIncomeTable.At(v["io_per_capita"])
				},
			},
			{
				Name: "mortality_multiplier",
				Deps: []string{"food_ratio", "persistent_pollution_index"},
				Eval: func(v Values) float64 {
					food := mortalityFoodTable.At(v["food_ratio"])
					poll := mortalityPollutionTable.At(v["persistent_pollution_index"])
					return food * poll
				},
			},
			{
				Name: "abatement_share",
				Deps: []string{XCCPriceParam},
				Eval: func(v Values) float64 {
					return abatementShareTable.At(v[XCCPriceParam])
				},
			},
			{
				Name: "emission_abatement",
				Deps: []string{XCCPriceParam},
				Eval: func(v Values) float64 {
					return emissionAbatementTable.At(v[XCCPriceParam])
				},
			},
			{
				Name: "co2e_emissions",
				Deps: []string{"industrial_output", "emission_abatement"},
				Eval: func(v Values) float64 {
					gross := v["industrial_output"] * emissionIntensity
					kept := 1 - v["emission_abatement"]
					return gross * kept
				},
			},
		},

		Flows: []Flow{
			{
				Name: "births",
				Deps: []string{"population", "fertility_multiplier"},
				Eval: func(v Values) float64 {
					base := v["population"] * birthRateNormal
					return base * v["fertility_multiplier"]
				},
			},
			{
				Name: "deaths",
				Deps: []string{"population", "mortality_multiplier"},
				Eval: func(v Values) float64 {
					base := v["population"] * deathRateNormal
					return base * v["mortality_multiplier"]
				},
			},
			{
				Name: "investment",
				Deps: []string{"industrial_output", "abatement_share"},
				Eval: func(v Values) float64 {
					gross := v["industrial_output"] * investmentFraction
					kept := 1 - v["abatement_share"]
					return gross * kept
				},
			},
			{
				Name: "depreciation",
				Deps: []string{"industrial_capital"},
				Eval: func(v Values) float64 {
					return v["industrial_capital"] / capitalLifetime
				},
			},
			{
				Name: "resource_depletion",
				Deps: []string{"industrial_output"},
				Eval: func(v Values) float64 {
					return v["industrial_output"] * resourceIntensity
				},
			},
			{
				Name: "pollution_generation",
				Deps: []string{"co2e_emissions"},
				Eval: func(v Values) float64 {
					return v["co2e_emissions"] * pollutionPerTonCO2e
				},
			},
			{
				Name: "pollution_assimilation",
				Deps: []string{"persistent_pollution"},
				Eval: func(v Values) float64 {
					return v["persistent_pollution"] / pollutionAssimilationTime
				},
			},
		},

		Stocks: []Stock{
			{
				Name:     "population",
				Initial:  initialPopulation,
				Inflows:  []string{"births"},
				Outflows: []string{"deaths"},
			},
			{
				Name:     "industrial_capital",
				Initial:  initialCapital,
				Inflows:  []string{"investment"},
				Outflows: []string{"depreciation"},
			},
			{
				Name:     "natural_resources",
				Initial:  initialResources,
				Outflows: []string{"resource_depletion"},
			},
			{
				Name:     "persistent_pollution",
				Initial:  initialPollution,
				Inflows:  []string{"pollution_generation"},
				Outflows: []string{"pollution_assimilation"},
			},
		},
	}

	return New(cfg)
}
