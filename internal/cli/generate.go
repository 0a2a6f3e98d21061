package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/athenaq/internal/stock"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	RangeOptions
	Brands  []string
	Dialect string

	// IDGenerator overrides the query id source (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator stock.IDGenerator
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the stock query for brands over a date range",
		Long: `Generate the stock query for the given brands, restricted to the
partitions of the date range.

Example:
  athenaq generate --from 2020-02-19 --to 2020-04-19 --brand acme --brand globex
  athenaq generate --from 2020-04-01 --to 2020-04-30 --brand acme --dialect postgres`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(rootOpts, opts, cmd)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringArrayVarP(&opts.Brands, "brand", "b", nil, "brand to include (repeatable, required)")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "override the configured SQL dialect (athena|sqlite|postgres)")
	_ = cmd.MarkFlagRequired("brand")

	return cmd
}

func runGenerate(rootOpts *RootOptions, opts *GenerateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	from, to, err := opts.parse(formatter)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(rootOpts, formatter)
	if err != nil {
		return err
	}
	if opts.Dialect != "" {
		cfg.Athena.Dialect = opts.Dialect
	}

	builderOpts := []stock.Option{stock.WithLogger(newLogger(rootOpts, cmd.ErrOrStderr()))}
	if opts.IDGenerator != nil {
		builderOpts = append(builderOpts, stock.WithIDGenerator(opts.IDGenerator))
	}
	builder, err := stock.NewBuilder(cfg, builderOpts...)
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err.Error(), nil)
	}

	q, err := builder.Build(stock.Request{From: from, To: to, Brands: opts.Brands})
	if err != nil {
		return buildError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(q)
	}

	if !q.DateFilterApplied {
		fmt.Fprintf(formatter.GetErrWriter(), "warning: no partition filter applied: %s\n", q.Diagnostic)
	}
	fmt.Fprintln(formatter.Writer, q.SQL)
	if len(q.Args) > 0 {
		formatter.VerboseLog("args: %v", q.Args)
	}
	return nil
}
