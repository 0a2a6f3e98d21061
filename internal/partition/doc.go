// Package partition plans partition predicates for tables partitioned by
// year, month and day columns.
//
// Plan turns an inclusive calendar range into a FilterSet: a disjunction of
// Filters, each constraining a year and optionally a month set and a day
// set. The union of the Filters is exactly the requested range, and no two
// Filters select the same day.
//
// RANGE SHAPES:
//
// The planner picks one of three shapes from the size of the range:
//
//	multi_year    at least one whole calendar year inside the range
//	multi_month   at least one whole month between the edge months
//	single_month  one month, or two adjacent months
//
// Whole years and whole months collapse into year-only and year+months
// Filters so partition pruning stays effective; day-level Filters appear only
// at edges that do not fall on a month boundary.
//
// RENDERING:
//
// Years render as plain decimal strings ("2020"). Months and days render as
// two-character zero-padded strings ("04", "09"), matching how the
// partition values are stored.
//
// A FilterSet is a set. Emission order is not chronological for multi-year
// ranges and must never be relied upon; Sorted gives a canonical order.
package partition
