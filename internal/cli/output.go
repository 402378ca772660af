package cli

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gcrsim/worldsim/internal/sim"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // run or validation failure
	ExitCommandError = 2 // command error (bad paths, malformed flags, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// writeResult renders a completed run in the requested format.
func writeResult(w io.Writer, format string, params map[string]float64, modelVersion string, result *sim.RunResult) error {
	switch format {
	case "json":
		return writeResultJSON(w, params, modelVersion, result)
	case "csv":
		return writeResultCSV(w, result)
	default:
		return writeResultText(w, params, modelVersion, result)
	}
}

func writeResultJSON(w io.Writer, params map[string]float64, modelVersion string, result *sim.RunResult) error {
	series := make(map[string][]float64)
	for _, name := range result.Names() {
		vals, err := result.Series(name)
		if err != nil {
			return err
		}
		series[name] = vals
	}
	payload := map[string]any{
		"model_version": modelVersion,
		"parameters":    params,
		"times":         result.Times(),
		"series":        series,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writeResultCSV(w io.Writer, result *sim.RunResult) error {
	names := result.Names()
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, names...)
	if err := cw.Write(header); err != nil {
		return err
	}

	times := result.Times()
	columns := make([][]float64, len(names))
	for i, name := range names {
		vals, err := result.Series(name)
		if err != nil {
			return err
		}
		columns[i] = vals
	}

	row := make([]string, len(header))
	for i, t := range times {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, col := range columns {
			row[j+1] = strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeResultText prints a compact summary: the run shape plus first,
// middle, and final samples of each series.
func writeResultText(w io.Writer, params map[string]float64, modelVersion string, result *sim.RunResult) error {
	times := result.Times()
	fmt.Fprintf(w, "model %s, %d samples [%g .. %g]\n", modelVersion, result.Len(), times[0], times[len(times)-1])
	if len(params) > 0 {
		fmt.Fprintf(w, "parameters: %v\n", params)
	}
	mid := len(times) / 2
	for _, name := range result.Names() {
		vals, err := result.Series(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %-28s t=%-8g %14.6g   t=%-8g %14.6g   t=%-8g %14.6g\n",
			name,
			times[0], vals[0],
			times[mid], vals[mid],
			times[len(times)-1], vals[len(vals)-1])
	}
	return nil
}
