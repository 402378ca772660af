package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gcrsim/worldsim/internal/api"
	"github.com/gcrsim/worldsim/internal/model"
	"github.com/gcrsim/worldsim/internal/sim"
	"github.com/gcrsim/worldsim/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation over HTTP",
		Long: `Start the HTTP layer in front of the simulation engine.

Endpoints:
  POST /api/v1/run        run one scenario
  GET  /api/v1/dashboard  baseline and priced runs side by side
  GET  /api/v1/runs       stored run records (requires --db)
  GET  /api/v1/runs/:id   one stored run (requires --db)
  GET  /health

Example:
  worldsim serve --addr :8088 --db ./runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8088", "listen address")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database for run persistence (optional)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	engine, err := sim.NewGCR(model.GCRSpan{})
	if err != nil {
		return WrapExitError(ExitCommandError, "build model", err)
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("closing database", "error", closeErr)
			}
		}()
		slog.Info("run persistence enabled", "db", opts.Database)
	}

	server := &http.Server{
		Addr:    opts.Addr,
		Handler: api.NewServer(engine, st).Handler(),
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api listening", "addr", opts.Addr, "model_version", engine.ModelVersion())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return WrapExitError(ExitFailure, "shutdown error", err)
		}
	}

	slog.Info("server stopped gracefully")
	return nil
}
