package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/athenaq/internal/partition"
	"github.com/roach88/athenaq/internal/stock"
)

// RangeOptions holds the --from/--to flags shared by plan, generate and verify.
type RangeOptions struct {
	From string
	To   string
}

func (r *RangeOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.From, "from", "", "first day of the range, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&r.To, "to", "", "last day of the range, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

func (r *RangeOptions) parse(formatter *OutputFormatter) (partition.Date, partition.Date, error) {
	from, err := partition.ParseDate(r.From)
	if err != nil {
		return partition.Date{}, partition.Date{}, outputCommandError(formatter, ErrCodeInvalidDate, "--from: "+err.Error(), nil)
	}
	to, err := partition.ParseDate(r.To)
	if err != nil {
		return partition.Date{}, partition.Date{}, outputCommandError(formatter, ErrCodeInvalidDate, "--to: "+err.Error(), nil)
	}
	return from, to, nil
}

// PlanResult is the JSON payload of the plan command.
type PlanResult struct {
	From    partition.Date      `json:"from"`
	To      partition.Date      `json:"to"`
	Shape   string              `json:"shape"`
	Filters partition.FilterSet `json:"filters"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RangeOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the partition filters covering a date range",
		Long: `Plan the minimal set of year/month/day partition filters whose union is
exactly the days from --from to --to, inclusive.

Example:
  athenaq plan --from 2018-02-17 --to 2020-04-19
  athenaq plan --from 2020-04-09 --to 2020-04-10 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, opts, cmd)
		},
	}
	opts.register(cmd)

	return cmd
}

func runPlan(rootOpts *RootOptions, opts *RangeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	from, to, err := opts.parse(formatter)
	if err != nil {
		return err
	}

	set, err := partition.Plan(from, to)
	if err != nil {
		return buildError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(PlanResult{From: from, To: to, Shape: set.Shape().String(), Filters: set})
	}

	fmt.Fprintf(formatter.Writer, "%s..%s: %s, %d filter(s)\n", from, to, set.Shape(), set.Len())
	for _, f := range set.Sorted() {
		fmt.Fprintf(formatter.Writer, "  %s\n", f)
	}
	return nil
}

// buildError maps planning and query generation errors onto CLI codes.
func buildError(formatter *OutputFormatter, err error) error {
	var rangeErr *partition.InvalidRangeError
	switch {
	case errors.As(err, &rangeErr):
		return outputCommandError(formatter, ErrCodeInvalidRange, rangeErr.Error(), nil)
	case errors.Is(err, stock.ErrNoBrands):
		return outputCommandError(formatter, ErrCodeNoBrands, err.Error(), nil)
	default:
		return outputCommandError(formatter, ErrCodeGeneric, err.Error(), nil)
	}
}
