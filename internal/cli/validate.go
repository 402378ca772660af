package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gcrsim/worldsim/internal/scenario"
)

// ValidationResult holds validation results for --format json.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Name   string   `json:"name,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario document without running it",
		Long: `Validate a scenario YAML document without running a simulation.

Checks the document structure against the scenario schema, then the
parameter values against the model's declared ranges.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	result := ValidationResult{Valid: true}

	f, err := scenario.Load(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return outputValidation(opts, cmd, result)
	}
	result.Name = f.Name

	if err := scenario.Validate(scenario.GCRParameters(), f.Scenario()); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	}

	return outputValidation(opts, cmd, result)
}

func outputValidation(opts *RootOptions, cmd *cobra.Command, result ValidationResult) error {
	w := cmd.OutOrStdout()

	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return WrapExitError(ExitCommandError, "write output", err)
		}
	} else {
		if result.Valid {
			fmt.Fprintf(w, "valid: %s\n", result.Name)
		} else {
			for _, msg := range result.Errors {
				fmt.Fprintf(w, "invalid: %s\n", msg)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "scenario is invalid")
	}
	return nil
}
