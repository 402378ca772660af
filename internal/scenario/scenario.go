// Package scenario turns caller-supplied named numeric inputs into
// validated overrides of a base model.
//
// A Scenario never mutates the base model: Apply produces an independent
// configured Definition, so concurrent scenarios cannot interfere.
// Out-of-range values fail with a *ValidationError naming the offending
// parameter and its allowed range; values are never silently clamped.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/gcrsim/worldsim/internal/model"
)

// Scenario maps parameter names to values.
// Absent parameters keep the model's baseline behavior.
type Scenario map[string]float64

// Parameter declares one accepted scenario input: its inclusive range
// and the model variable it overrides.
type Parameter struct {
	Name string

	// Min and Max bound the accepted value, both inclusive.
	Min, Max float64

	// Auxiliary, when set, is the auxiliary overridden to the parameter
	// value. Stock, when set, is the stock whose initial value is
	// replaced. Exactly one must be set.
	Auxiliary string
	Stock     string
}

// ValidationError reports a scenario parameter outside its declared range
// or a parameter the model does not accept.
//
// Validation errors are recoverable: no run is attempted and the caller
// can resubmit with a corrected value.
type ValidationError struct {
	// Param is the offending parameter name.
	Param string

	// Value is the rejected value (zero for unknown-parameter errors).
	Value float64

	// Min and Max are the declared inclusive bounds, set when the
	// parameter exists but the value is out of range.
	Min, Max float64

	// Unknown is true when the parameter name is not declared at all.
	Unknown bool
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("unknown scenario parameter %q", e.Param)
	}
	return fmt.Sprintf("scenario parameter %q = %v outside allowed range [%v, %v]", e.Param, e.Value, e.Min, e.Max)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GCRParameters declares the scenario inputs accepted by the GCR world
// model: the carbon-credit price in $/tCO2e, bounded to [1, 1000].
func GCRParameters() []Parameter {
	return []Parameter{
		{Name: model.XCCPriceParam, Min: 1, Max: 1000, Auxiliary: model.XCCPriceParam},
	}
}

// Validate checks every scenario value against the declared parameters.
// It fails on the first unknown name (sorted order, for determinism) or
// out-of-range value.
func Validate(params []Parameter, s Scenario) error {
	byName := make(map[string]Parameter, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}

	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p, ok := byName[name]
		if !ok {
			return &ValidationError{Param: name, Unknown: true}
		}
		val := s[name]
		// NaN compares false against any bound, so it needs an explicit
		// check: no [min, max] range contains it.
		if math.IsNaN(val) || val < p.Min || val > p.Max {
			return &ValidationError{Param: name, Value: val, Min: p.Min, Max: p.Max}
		}
	}
	return nil
}

// Apply validates the scenario and produces an independent configured
// model with its overrides in place. The base Definition is not modified.
func Apply(base *model.Definition, params []Parameter, s Scenario) (*model.Definition, error) {
	if err := Validate(params, s); err != nil {
		return nil, err
	}

	ov := model.Overrides{
		Auxiliaries: make(map[string]float64),
		Stocks:      make(map[string]float64),
	}
	byName := make(map[string]Parameter, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}
	for name, val := range s {
		p := byName[name]
		switch {
		case p.Auxiliary != "":
			ov.Auxiliaries[p.Auxiliary] = val
		case p.Stock != "":
			ov.Stocks[p.Stock] = val
		default:
			return nil, fmt.Errorf("parameter %q declares no override target", name)
		}
	}

	return base.Configure(ov)
}
