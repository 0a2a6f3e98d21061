package queryir

import (
	"fmt"
)

// ValidationResult contains the structural analysis of a query.
type ValidationResult struct {
	// Errors lists problems that make the query impossible to render:
	// missing table or column names, nil predicate children, nil literals.
	Errors []string

	// Warnings lists constructs that render but are almost certainly
	// mistakes, such as SELECT * or an IN list that matches nothing.
	Warnings []string
}

// IsValid reports whether the query can be compiled.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Validate checks a query for structural problems.
//
// Rules:
//  1. The source table must be named
//  2. Every column reference must be named
//  3. Predicate children and literals must be non-nil
//  4. Empty IN lists and empty OR groups match nothing (warning)
//  5. Explicit projection preferred over SELECT * (warning)
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{}
	v.validateQuery(query)

	return ValidationResult{
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

// validator accumulates findings during traversal.
type validator struct {
	errors   []string
	warnings []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addError("nil query")
		return
	}

	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addError("nil query")
			return
		}
		v.validateSelect(*query)
	default:
		v.addError("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if sel.From.Name == "" {
		v.addError("select has no source table")
	}

	if len(sel.Columns) == 0 {
		v.addWarning("empty column list (SELECT *) - prefer an explicit projection")
	}
	for i, c := range sel.Columns {
		if c.Name == "" {
			v.addError("column %d has no name", i)
		}
	}
	for i, o := range sel.OrderBy {
		if o.Column.Name == "" {
			v.addError("order by term %d has no column name", i)
		}
	}

	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addError("nil predicate")
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case In:
		v.validateIn(pred)
	case *In:
		v.validateIn(*pred)
	case And:
		v.validateChildren("AND", pred.Predicates)
	case *And:
		v.validateChildren("AND", pred.Predicates)
	case Or:
		if len(pred.Predicates) == 0 {
			v.addWarning("empty OR group matches nothing")
		}
		v.validateChildren("OR", pred.Predicates)
	case *Or:
		v.validatePredicate(*pred)
	default:
		v.addError("unknown predicate type: %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	if eq.Column.Name == "" {
		v.addError("equality predicate has no column name")
	}
	if eq.Value == nil {
		v.addError("column '%s' compared to nil literal", eq.Column.Name)
	}
}

func (v *validator) validateIn(in In) {
	if in.Column.Name == "" {
		v.addError("IN predicate has no column name")
	}
	if len(in.Values) == 0 {
		v.addWarning("column '%s' IN () matches nothing", in.Column.Name)
	}
	for i, val := range in.Values {
		if val == nil {
			v.addError("column '%s' IN list has nil literal at %d", in.Column.Name, i)
		}
	}
}

func (v *validator) validateChildren(op string, preds []Predicate) {
	for i, sub := range preds {
		if sub == nil {
			v.addError("%s child %d is nil", op, i)
			continue
		}
		v.validatePredicate(sub)
	}
}
