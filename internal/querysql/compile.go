package querysql

import (
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/athenaq/internal/queryir"
)

// ErrInvalidQuery is returned when a query fails queryir.Validate.
var ErrInvalidQuery = errors.New("invalid query")

// SQLCompiler compiles QueryIR to SQL text in one dialect.
//
// Identifiers are always double-quoted. Literals are bound as parameters
// unless the dialect inlines them.
type SQLCompiler struct {
	Dialect Dialect
}

// NewSQLCompiler creates a compiler for dialect d.
func NewSQLCompiler(d Dialect) *SQLCompiler {
	return &SQLCompiler{Dialect: d}
}

// Compile converts a QueryIR query to SQL.
// Returns (sql, params, error) tuple; params is empty for inlining dialects.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	if result := queryir.Validate(q); !result.IsValid() {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(result.Errors, "; "))
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	builder := sq.Select(compileColumns(q.Columns)...).
		From(quoteTable(q.From))

	for _, part := range whereParts(q.Filter) {
		cond, err := compilePredicate(part)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		builder = builder.Where(cond)
	}

	for _, o := range q.OrderBy {
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		builder = builder.OrderBy(quoteIdent(o.Column.Name) + dir)
	}

	if c.Dialect.InlineLiterals {
		query, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
		if err != nil {
			return "", nil, fmt.Errorf("build select: %w", err)
		}
		query, err = inlineArgs(query, args)
		if err != nil {
			return "", nil, fmt.Errorf("inline literals: %w", err)
		}
		return query, []any{}, nil
	}

	placeholder := c.Dialect.Placeholder
	if placeholder == nil {
		placeholder = sq.Question
	}
	query, args, err := builder.PlaceholderFormat(placeholder).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build select: %w", err)
	}
	return query, args, nil
}

func compileColumns(cols []queryir.Column) []string {
	if len(cols) == 0 {
		return []string{"*"}
	}
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = quoteIdent(col.Name)
	}
	return out
}

// whereParts splits a top-level conjunction into separate WHERE terms.
func whereParts(p queryir.Predicate) []queryir.Predicate {
	switch pred := p.(type) {
	case nil:
		return nil
	case queryir.And:
		return pred.Predicates
	case *queryir.And:
		return pred.Predicates
	default:
		return []queryir.Predicate{p}
	}
}

// compilePredicate converts a predicate to a squirrel condition.
func compilePredicate(p queryir.Predicate) (sq.Sqlizer, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return compileEquals(pred)
	case *queryir.Equals:
		return compileEquals(*pred)
	case queryir.In:
		return compileIn(pred)
	case *queryir.In:
		return compileIn(*pred)
	case queryir.And:
		return compileConj(pred.Predicates, func(parts []sq.Sqlizer) sq.Sqlizer { return sq.And(parts) })
	case *queryir.And:
		return compileConj(pred.Predicates, func(parts []sq.Sqlizer) sq.Sqlizer { return sq.And(parts) })
	case queryir.Or:
		return compileConj(pred.Predicates, func(parts []sq.Sqlizer) sq.Sqlizer { return sq.Or(parts) })
	case *queryir.Or:
		return compileConj(pred.Predicates, func(parts []sq.Sqlizer) sq.Sqlizer { return sq.Or(parts) })
	default:
		return nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq queryir.Equals) (sq.Sqlizer, error) {
	param, err := valueToParam(eq.Value)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", eq.Column.Name, err)
	}
	return sq.Eq{quoteIdent(eq.Column.Name): param}, nil
}

// compileIn renders "col IN (?,...)"; squirrel renders an empty list as (1=0).
func compileIn(in queryir.In) (sq.Sqlizer, error) {
	params := make([]any, len(in.Values))
	for i, v := range in.Values {
		param, err := valueToParam(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", in.Column.Name, err)
		}
		params[i] = param
	}
	return sq.Eq{quoteIdent(in.Column.Name): params}, nil
}

func compileConj(preds []queryir.Predicate, wrap func([]sq.Sqlizer) sq.Sqlizer) (sq.Sqlizer, error) {
	parts := make([]sq.Sqlizer, 0, len(preds))
	for _, p := range preds {
		part, err := compilePredicate(p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return wrap(parts), nil
}
