package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gcrsim/worldsim/internal/model"
	"github.com/gcrsim/worldsim/internal/scenario"
	"github.com/gcrsim/worldsim/internal/sim"
	"github.com/gcrsim/worldsim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Price    float64
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "Run a simulation scenario",
		Long: `Run the GCR world model for one scenario.

The scenario comes from a YAML document, or from --price for the common
single-parameter case. With no scenario at all, the baseline (no carbon
policy) is simulated.

Example:
  worldsim run --price 100
  worldsim run scenarios/gcr-250.yaml --format csv
  worldsim run --price 500 --db ./runs.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args, cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Price, "price", 0, "carbon-credit price in $/tCO2e (1-1000)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the completed run to this SQLite database")

	return cmd
}

func runScenario(opts *RunOptions, args []string, cmd *cobra.Command) error {
	sc, outputs, err := resolveScenario(opts, args, cmd)
	if err != nil {
		return err
	}

	base, err := model.NewGCRModel(model.GCRSpan{})
	if err != nil {
		return WrapExitError(ExitCommandError, "build model", err)
	}
	if len(outputs) == 0 {
		outputs = model.GCRDefaultOutputs
	}
	engine := sim.New(base, model.GCRModelVersion, scenario.GCRParameters(), sim.WithOutputs(outputs))

	slog.Debug("running scenario", "parameters", map[string]float64(sc))
	result, err := engine.Run(cmd.Context(), sc)
	if err != nil {
		if scenario.IsValidationError(err) {
			return WrapExitError(ExitFailure, "invalid scenario", err)
		}
		return WrapExitError(ExitFailure, "simulation failed", err)
	}
	slog.Debug("run complete", "samples", result.Len(), "series", len(result.Names()))

	if opts.Database != "" {
		if err := persistRun(cmd, opts.Database, engine, sc, result); err != nil {
			return err
		}
	}

	if err := writeResult(cmd.OutOrStdout(), opts.Format, sc, engine.ModelVersion(), result); err != nil {
		return WrapExitError(ExitCommandError, "write output", err)
	}
	return nil
}

// resolveScenario merges the scenario file (if given) with the --price
// flag. The flag wins when both are present.
func resolveScenario(opts *RunOptions, args []string, cmd *cobra.Command) (scenario.Scenario, []string, error) {
	sc := scenario.Scenario{}
	var outputs []string

	if len(args) == 1 {
		f, err := scenario.Load(args[0])
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "load scenario", err)
		}
		sc = f.Scenario()
		outputs = f.Outputs
		slog.Debug("loaded scenario file", "name", f.Name, "path", args[0])
	}

	if cmd.Flags().Changed("price") {
		sc[model.XCCPriceParam] = opts.Price
	}

	return sc, outputs, nil
}

func persistRun(cmd *cobra.Command, path string, engine *sim.Engine, sc scenario.Scenario, result *sim.RunResult) error {
	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("closing database", "error", closeErr)
		}
	}()

	key := scenario.Key(engine.ModelVersion(), sc)
	rec, err := st.SaveRun(cmd.Context(), key, engine.ModelVersion(), sc, result)
	if err != nil {
		return WrapExitError(ExitFailure, "persist run", err)
	}
	slog.Info("run persisted", "id", rec.ID, "db", path)
	return nil
}
