package queryir

// Query represents an abstract query in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in backend compilers.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Equals: column = literal
//   - In: column IN (literal, ...)
//   - And: all predicates must be true
//   - Or: at least one predicate must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Table names the relation a Select reads from.
// Schema is optional; when set it is printed as a qualifier.
type Table struct {
	Schema string
	Name   string
}

// Column references a column of the queried table.
//
// Column references are passed around as *Column where a column may be
// absent from the target schema (nil means "not available").
type Column struct {
	Name string
}

// Col returns a reference to the named column.
func Col(name string) *Column {
	return &Column{Name: name}
}

// OptionalCol returns nil for an empty name, otherwise Col(name).
// Configuration uses empty names for columns a table does not have.
func OptionalCol(name string) *Column {
	if name == "" {
		return nil
	}
	return Col(name)
}

// OrderBy is one ORDER BY term.
type OrderBy struct {
	Column Column
	Desc   bool
}

// Select represents a table read with filtering and ordering.
//
// Semantics:
//
//	SELECT <columns> FROM <from> WHERE <filter> ORDER BY <order>
//
// Example:
//
//	Select{
//	  Columns: []Column{{Name: "stockid"}, {Name: "brandname"}},
//	  From:    Table{Schema: "inventory", Name: "stock"},
//	  Filter: And{Predicates: []Predicate{
//	    In{Column: Column{Name: "brandname"}, Values: Strings("acme", "globex")},
//	    Equals{Column: Column{Name: "year"}, Value: String("2020")},
//	  }},
//	  OrderBy: []OrderBy{{Column: Column{Name: "shippedtimestamp"}, Desc: true}},
//	}
//
// Top-level And conjuncts are rendered as separate WHERE terms; everything
// else keeps its own grouping.
type Select struct {
	Columns []Column  // Explicit projection (empty = *)
	From    Table     // Source relation
	Filter  Predicate // WHERE conditions (nil = no filter)
	OrderBy []OrderBy // ORDER BY terms in priority order
}

func (Select) queryNode() {}

// Equals represents a column-equals-literal predicate.
//
//	<column> = <value>
type Equals struct {
	Column Column
	Value  Value
}

func (Equals) predicateNode() {}

// In represents set membership.
//
//	<column> IN (<value>, ...)
//
// An empty Values list matches nothing.
type In struct {
	Column Column
	Values []Value
}

func (In) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// Empty Predicates means "always true".
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction of predicates (at least one must be true).
// Empty Predicates means "always false".
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Conjoin attaches p to existing with AND and returns the combined filter.
//
// A nil existing filter yields p alone. When existing is already an And, p
// is appended as another conjunct instead of nesting.
func Conjoin(existing, p Predicate) Predicate {
	if p == nil {
		return existing
	}
	switch e := existing.(type) {
	case nil:
		return p
	case And:
		preds := make([]Predicate, 0, len(e.Predicates)+1)
		preds = append(preds, e.Predicates...)
		return And{Predicates: append(preds, p)}
	case *And:
		return Conjoin(*e, p)
	default:
		return And{Predicates: []Predicate{existing, p}}
	}
}
