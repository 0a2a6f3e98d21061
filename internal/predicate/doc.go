// Package predicate compiles partition filter sets into QueryIR predicates
// that restrict a query to a date range on year/month/day partition columns.
package predicate
