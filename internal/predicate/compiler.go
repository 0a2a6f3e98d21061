package predicate

import (
	"errors"
	"log/slog"

	"github.com/roach88/athenaq/internal/partition"
	"github.com/roach88/athenaq/internal/queryir"
)

var (
	// ErrColumnsUnavailable means at least one partition column reference
	// was absent, so no date predicate was attached.
	ErrColumnsUnavailable = errors.New("partition columns unavailable")

	// ErrNoClauses means the filter set produced no clause to attach.
	ErrNoClauses = errors.New("partition filter set produced no clauses")
)

// Columns names the partition columns of the target table.
// A nil field means the table has no such column.
type Columns struct {
	Year  *queryir.Column
	Month *queryir.Column
	Day   *queryir.Column
}

// Complete reports whether all three columns are present.
func (c Columns) Complete() bool {
	return c.Year != nil && c.Month != nil && c.Day != nil
}

// Result is the outcome of Compile.
type Result struct {
	// Predicate is the filter to use. When Applied is false it is the
	// caller's existing predicate, unchanged (possibly nil).
	Predicate queryir.Predicate

	// Applied reports whether a date restriction was attached.
	Applied bool

	// Clauses is the number of OR-ed clauses attached.
	Clauses int

	// Diagnostic explains why nothing was attached. Nil when Applied.
	Diagnostic error
}

// Compiler turns partition filter sets into query predicates.
//
// Compile is pure apart from logging. A Compiler is safe for concurrent use.
type Compiler struct {
	logger *slog.Logger
}

// NewCompiler creates a Compiler. A nil logger uses slog.Default().
func NewCompiler(logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{logger: logger}
}

// Compile attaches a date restriction for set to existing.
//
// Every filter becomes one clause:
//
//	year only          year = Y
//	year + months      year = Y AND month IN (...)
//	year + month + day year = Y AND month IN (...) AND day IN (...)
//
// The clauses are OR-ed in chronological order and the disjunction is
// AND-ed onto existing. Missing columns or an empty set leave existing
// untouched; the reason is reported in Result.Diagnostic and logged. Neither
// case is an error: the query stays correct, only unpruned.
func (c *Compiler) Compile(existing queryir.Predicate, set partition.FilterSet, cols Columns) Result {
	if !cols.Complete() {
		c.log().Warn("partition columns unavailable, skipping date filter",
			"action", "compile",
			"year", cols.Year != nil,
			"month", cols.Month != nil,
			"day", cols.Day != nil)
		return Result{Predicate: existing, Diagnostic: ErrColumnsUnavailable}
	}

	clauses := make([]queryir.Predicate, 0, set.Len())
	for _, f := range set.Sorted() {
		if clause := buildClause(f, cols); clause != nil {
			clauses = append(clauses, clause)
		}
	}

	if len(clauses) == 0 {
		c.log().Error("partition filter set produced no clauses",
			"action", "compile",
			"filters", set.Len(),
			"shape", set.Shape().String())
		return Result{Predicate: existing, Diagnostic: ErrNoClauses}
	}

	c.log().Debug("partition predicate compiled",
		"action", "compile",
		"filters", len(clauses),
		"shape", set.Shape().String())

	return Result{
		Predicate: queryir.Conjoin(existing, queryir.Or{Predicates: clauses}),
		Applied:   true,
		Clauses:   len(clauses),
	}
}

func (c *Compiler) log() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// buildClause renders one filter. Returns nil for a filter of unknown kind.
func buildClause(f partition.Filter, cols Columns) queryir.Predicate {
	year := queryir.Equals{Column: *cols.Year, Value: queryir.String(f.Year())}

	switch f.Kind() {
	case partition.KindYear:
		return year
	case partition.KindYearMonths:
		return queryir.And{Predicates: []queryir.Predicate{
			year,
			queryir.In{Column: *cols.Month, Values: queryir.Strings(f.Months()...)},
		}}
	case partition.KindYearMonthDays:
		return queryir.And{Predicates: []queryir.Predicate{
			year,
			queryir.In{Column: *cols.Month, Values: queryir.Strings(f.Months()...)},
			queryir.In{Column: *cols.Day, Values: queryir.Strings(f.Days()...)},
		}}
	default:
		return nil
	}
}
