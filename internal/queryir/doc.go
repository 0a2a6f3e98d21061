// Package queryir provides an abstract query intermediate representation (IR)
// for athenaq's generated queries.
//
// QueryIR is the boundary between the code that decides what to select
// (the stock query builder and the partition predicate compiler) and the
// SQL renderer in package querysql. Builders never concatenate SQL text.
//
// ARCHITECTURE:
//
//	[partition.FilterSet] → [predicate.Compiler] ┐
//	[stock.Builder] ──────────────────────────────┴→ [Query IR] → [querysql]
//
// SUPPORTED FRAGMENT:
//
//   - Select(columns, from, filter, order by)
//   - Predicates: Equals, In, And, Or
//   - Literals: String, Int, Bool (no floats, no NULL)
//
// SEALED INTERFACES:
//
// Query, Predicate and Value are sealed interfaces using the marker method
// pattern. Only types in this package can implement them, so renderers can
// use exhaustive type switches:
//
//	switch p := pred.(type) {
//	case Equals, *Equals:
//	case In, *In:
//	case And, *And:
//	case Or, *Or:
//	}
//
// Both value and pointer forms are accepted everywhere.
//
// Validate reports structural errors (nil children, unnamed columns) and
// warnings (SELECT *, IN lists that match nothing). Renderers refuse
// queries with errors.
package queryir
