package model

import "fmt"

// Table is a piecewise-linear lookup function: an ordered sequence of
// (x, y) control points with linear interpolation between them.
//
// Inputs outside [x_first, x_last] are clamped to the nearest endpoint.
// Tables are immutable for the life of a run.
type Table struct {
	name string
	xs   []float64
	ys   []float64
}

// NewTable builds a lookup table from control points.
// The x values must be strictly increasing and at least two points are
// required. Fails with a *DefinitionError otherwise.
func NewTable(name string, xs, ys []float64) (*Table, error) {
	if name == "" {
		return nil, &DefinitionError{Code: ErrCodeBadTable, Name: name, Message: "table name is required"}
	}
	if len(xs) != len(ys) {
		return nil, &DefinitionError{
			Code:    ErrCodeBadTable,
			Name:    name,
			Message: fmt.Sprintf("mismatched control points: %d x values, %d y values", len(xs), len(ys)),
		}
	}
	if len(xs) < 2 {
		return nil, &DefinitionError{
			Code:    ErrCodeBadTable,
			Name:    name,
			Message: fmt.Sprintf("at least 2 control points required, got %d", len(xs)),
		}
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, &DefinitionError{
				Code:    ErrCodeBadTable,
				Name:    name,
				Message: fmt.Sprintf("x values must be strictly increasing: x[%d]=%v, x[%d]=%v", i-1, xs[i-1], i, xs[i]),
			}
		}
	}

	// Copy to prevent external mutation of the control points.
	t := &Table{
		name: name,
		xs:   make([]float64, len(xs)),
		ys:   make([]float64, len(ys)),
	}
	copy(t.xs, xs)
	copy(t.ys, ys)
	return t, nil
}

// MustTable is NewTable that panics on error.
// Intended for package-level table literals in versioned model definitions,
// where a malformed table is a programming defect caught by tests.
func MustTable(name string, xs, ys []float64) *Table {
	t, err := NewTable(name, xs, ys)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// At evaluates the table at x with clamped linear interpolation.
//
// Inputs below the first control point return the first y; inputs above
// the last control point return the last y. The table never extrapolates.
func (t *Table) At(x float64) float64 {
	if x <= t.xs[0] {
		return t.ys[0]
	}
	last := len(t.xs) - 1
	if x >= t.xs[last] {
		return t.ys[last]
	}

	// Find the segment containing x. Tables are small (a handful of
	// control points), so a linear scan beats binary search overhead.
	i := 1
	for x > t.xs[i] {
		i++
	}

	x0, x1 := t.xs[i-1], t.xs[i]
	y0, y1 := t.ys[i-1], t.ys[i]

	// Intermediate assignments force rounding after each operation so the
	// result is identical across architectures (no FMA contraction).
	frac := (x - x0) / (x1 - x0)
	span := y1 - y0
	rise := frac * span
	return y0 + rise
}

// Domain returns the table's defined input range [min, max].
func (t *Table) Domain() (min, max float64) {
	return t.xs[0], t.xs[len(t.xs)-1]
}
