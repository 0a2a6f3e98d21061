package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/athenaq/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve query generation over HTTP",
		Long: `Start the HTTP service.

Endpoints:
  POST /generate/athena/query?fromDate=YYYY-MM-DD&toDate=YYYY-MM-DD
       body: JSON array of brands; returns the SQL as text/plain, or a
       JSON document when the request accepts application/json
  GET  /healthz
  GET  /metrics

Example:
  athenaq serve --addr :8080
  athenaq serve --config ./athenaq.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func runServe(rootOpts *RootOptions, opts *ServeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	logger := newLogger(rootOpts, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	cfg, err := loadConfig(rootOpts, formatter)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err.Error(), nil)
	}

	// Use command's context if available (for testing), otherwise create one
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
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("server starting",
		"addr", cfg.Server.Addr,
		"table", cfg.Athena.Table,
		"dialect", cfg.Athena.Dialect,
		"plan_cache_size", cfg.Server.PlanCacheSize)

	if err := srv.Run(ctx); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeServer+": server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
