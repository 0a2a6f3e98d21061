package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/athenaq/internal/partition"
	"github.com/roach88/athenaq/internal/replica"
	"github.com/roach88/athenaq/internal/stock"
)

const verifyBrand = "athenaq-verify"

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	RangeOptions
	Database string
	Pad      int
}

// VerifyResult is the JSON payload of the verify command.
type VerifyResult struct {
	From              partition.Date   `json:"from"`
	To                partition.Date   `json:"to"`
	Seeded            int              `json:"seeded"`
	Returned          int              `json:"returned"`
	DateFilterApplied bool             `json:"date_filter_applied"`
	Exact             bool             `json:"exact"`
	Missing           []partition.Date `json:"missing,omitempty"`
	Extra             []partition.Date `json:"extra,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Prove a generated query selects exactly the requested days",
		Long: `Seed a SQLite replica of the stock table with one row per day around
the range, run the generated query against it, and compare the days it
returns with the requested range.

Exits 1 when a day is missing or a day outside the range is returned.

Example:
  athenaq verify --from 2018-02-17 --to 2020-04-19
  athenaq verify --from 2020-02-28 --to 2020-03-01 --db ./replica.db --pad 400`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, opts, cmd)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", ":memory:", "path to the SQLite replica")
	cmd.Flags().IntVar(&opts.Pad, "pad", 366, "days seeded on each side of the range")

	return cmd
}

func runVerify(rootOpts *RootOptions, opts *VerifyOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	from, to, err := opts.parse(formatter)
	if err != nil {
		return err
	}
	if opts.Pad < 0 {
		return outputCommandError(formatter, ErrCodeGeneric, "--pad must not be negative", nil)
	}

	cfg, err := loadConfig(rootOpts, formatter)
	if err != nil {
		return err
	}
	// SQLite reads a schema qualifier as an attached database name.
	cfg.Athena.Dialect = "sqlite"
	cfg.Athena.Database = ""

	builder, err := stock.NewBuilder(cfg, stock.WithLogger(newLogger(rootOpts, cmd.ErrOrStderr())))
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err.Error(), nil)
	}
	q, err := builder.Build(stock.Request{From: from, To: to, Brands: []string{verifyBrand}})
	if err != nil {
		return buildError(formatter, err)
	}

	db, err := replica.Open(opts.Database, replica.SchemaFromConfig(cfg))
	if err != nil {
		return outputCommandError(formatter, ErrCodeReplica, err.Error(), nil)
	}
	defer db.Close()

	template := replica.StockRow{StockID: "verify", Brand: verifyBrand}
	if len(cfg.Stock.Categories) > 0 {
		template.Category = cfg.Stock.Categories[0]
	} else if len(cfg.Stock.Products) > 0 {
		template.Category = cfg.Stock.Products[0].Category
		template.Name = cfg.Stock.Products[0].Name
	}

	ctx := cmd.Context()
	seeded, err := db.SeedDays(ctx, from.AddDays(-opts.Pad), to.AddDays(opts.Pad), template)
	if err != nil {
		return outputCommandError(formatter, ErrCodeReplica, err.Error(), nil)
	}
	formatter.VerboseLog("Seeded %d day(s) into %s", seeded, opts.Database)

	rows, err := db.Select(ctx, q.SQL, q.Args...)
	if err != nil {
		return outputCommandError(formatter, ErrCodeReplica, err.Error(), nil)
	}
	coverage := replica.CompareDays(replica.ShippingDays(rows), from, to)

	result := VerifyResult{
		From:              from,
		To:                to,
		Seeded:            seeded,
		Returned:          len(rows),
		DateFilterApplied: q.DateFilterApplied,
		Exact:             coverage.Exact(),
		Missing:           coverage.Missing,
		Extra:             coverage.Extra,
	}
	return outputVerifyResult(formatter, result)
}

func outputVerifyResult(formatter *OutputFormatter, result VerifyResult) error {
	if formatter.Format == "json" {
		if result.Exact {
			return formatter.Success(result)
		}
		if err := formatter.Error(ErrCodeCoverage, "query does not match the range", result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d missing, %d extra day(s)", ErrCodeCoverage, len(result.Missing), len(result.Extra)))
	}

	if result.Exact {
		fmt.Fprintf(formatter.Writer, "✓ %s..%s: %d day(s) returned, none missing, none extra\n", result.From, result.To, result.Returned)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✗ %s..%s: %d missing, %d extra day(s)\n", result.From, result.To, len(result.Missing), len(result.Extra))
	if !result.DateFilterApplied {
		fmt.Fprintln(formatter.Writer, "  no partition filter was applied")
	}
	for _, d := range result.Missing {
		fmt.Fprintf(formatter.Writer, "  missing %s\n", d)
	}
	if formatter.Verbose {
		for _, d := range result.Extra {
			fmt.Fprintf(formatter.Writer, "  extra %s\n", d)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %d missing, %d extra day(s)", ErrCodeCoverage, len(result.Missing), len(result.Extra)))
}
