package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/athenaq/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Table   string `json:"table,omitempty"`
	Dialect string `json:"dialect,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a config file",
		Long: `Load a YAML or CUE config file and check it: unknown keys, malformed
durations, SQL identifiers and the dialect name are all reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := config.Load(path)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Code == config.ErrCodeInvalid {
			return outputValidationFailure(formatter, cfgErr)
		}
		return outputCommandError(formatter, ErrCodeConfig, err.Error(), nil)
	}

	formatter.VerboseLog("Loaded %s: table %s, dialect %s", path, cfg.Athena.Table, cfg.Athena.Dialect)

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:   true,
			Path:    path,
			Table:   cfg.Athena.Table,
			Dialect: cfg.Athena.Dialect,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ %s is valid\n", path)
	return nil
}

// outputValidationFailure reports a config that parsed but failed its checks.
// Validation failures exit 1, unreadable files exit 2.
func outputValidationFailure(formatter *OutputFormatter, cfgErr *config.ConfigError) error {
	if formatter.Format == "json" {
		if err := formatter.Error(ErrCodeConfig, cfgErr.Message, ValidationResult{Path: cfgErr.Path}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "config validation failed")
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "  %s: %s\n", cfgErr.Path, cfgErr.Message)

	return NewExitError(ExitFailure, "config validation failed")
}
