package model

import (
	"errors"
	"fmt"
	"strings"
)

// DefinitionError reports a malformed model definition.
//
// Definition errors are fatal at construction time and indicate a
// programming or configuration defect, never a runtime condition:
//
//   - Undefined reference: a flow or auxiliary depends on a name
//     that no stock, auxiliary, or flow declares
//   - Dependency cycle: the auxiliary graph cannot be evaluated in a
//     single topological pass
//   - Duplicate name: two variables share a name
//   - Bad time grid: dt <= 0 or the span is not an exact multiple of dt
//   - Bad table: malformed lookup control points
type DefinitionError struct {
	// Code identifies the defect category.
	Code DefinitionErrorCode

	// Name is the offending variable or table, when one is identifiable.
	Name string

	// Cycle lists the auxiliary names forming a dependency cycle,
	// set only for ErrCodeCycle.
	Cycle []string

	// Message is a human-readable description.
	Message string
}

// DefinitionErrorCode categorizes definition errors.
type DefinitionErrorCode string

const (
	// ErrCodeUndefinedRef indicates a reference to an undeclared name.
	ErrCodeUndefinedRef DefinitionErrorCode = "UNDEFINED_REFERENCE"

	// ErrCodeCycle indicates a cyclic auxiliary dependency.
	ErrCodeCycle DefinitionErrorCode = "DEPENDENCY_CYCLE"

	// ErrCodeDuplicateName indicates two variables with the same name.
	ErrCodeDuplicateName DefinitionErrorCode = "DUPLICATE_NAME"

	// ErrCodeBadTimeGrid indicates an invalid [t0, t_end] / dt combination.
	ErrCodeBadTimeGrid DefinitionErrorCode = "BAD_TIME_GRID"

	// ErrCodeBadTable indicates malformed lookup table control points.
	ErrCodeBadTable DefinitionErrorCode = "BAD_TABLE"

	// ErrCodeUnknownOverride indicates a Configure override naming a
	// variable the model does not declare.
	ErrCodeUnknownOverride DefinitionErrorCode = "UNKNOWN_OVERRIDE"
)

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("%s: %s (cycle: %s)", e.Code, e.Message, strings.Join(e.Cycle, " -> "))
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (variable=%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDefinitionError reports whether err is (or wraps) a DefinitionError.
func IsDefinitionError(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}

// IsCycleError reports whether err is a dependency-cycle DefinitionError.
func IsCycleError(err error) bool {
	var de *DefinitionError
	if errors.As(err, &de) {
		return de.Code == ErrCodeCycle
	}
	return false
}
