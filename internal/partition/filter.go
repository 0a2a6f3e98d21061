package partition

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a Filter by the partition components it constrains.
type Kind int

const (
	// KindYear matches every day of the year.
	KindYear Kind = iota + 1
	// KindYearMonths matches the listed months in full.
	KindYearMonths
	// KindYearMonthDays matches the listed days of a single month.
	KindYearMonthDays
)

func (k Kind) String() string {
	switch k {
	case KindYear:
		return "year"
	case KindYearMonths:
		return "year_months"
	case KindYearMonthDays:
		return "year_month_days"
	default:
		return "unknown"
	}
}

// Filter is one disjunct of a partition predicate: a year plus an optional
// month set plus an optional day set.
//
// Filters are values. They are built only by Plan and never change after
// construction; accessors hand out copies.
//
// Invariants:
//   - the year is always set
//   - a non-empty day set comes with exactly one month
type Filter struct {
	year   int
	months []time.Month
	days   []int
}

func yearFilter(year int) Filter {
	return Filter{year: year}
}

// monthsFilter covers months first..last (inclusive) of year.
func monthsFilter(year int, first, last time.Month) Filter {
	return Filter{year: year, months: monthRange(first, last)}
}

// daysFilter covers days first..last (inclusive) of a single month.
func daysFilter(year int, month time.Month, first, last int) Filter {
	return Filter{year: year, months: []time.Month{month}, days: dayRange(first, last)}
}

// Year returns the partition year as a plain decimal string.
func (f Filter) Year() string {
	return strconv.Itoa(f.year)
}

// Months returns the two-digit month values in ascending order, or nil.
func (f Filter) Months() []string {
	if len(f.months) == 0 {
		return nil
	}
	out := make([]string, len(f.months))
	for i, m := range f.months {
		out[i] = pad2(int(m))
	}
	return out
}

// Days returns the two-digit day values in ascending order, or nil.
func (f Filter) Days() []string {
	if len(f.days) == 0 {
		return nil
	}
	out := make([]string, len(f.days))
	for i, d := range f.days {
		out[i] = pad2(d)
	}
	return out
}

// Kind reports which of the three legal shapes f has.
func (f Filter) Kind() Kind {
	switch {
	case len(f.months) == 0:
		return KindYear
	case len(f.days) == 0:
		return KindYearMonths
	default:
		return KindYearMonthDays
	}
}

// HasOnlyYear reports whether f matches a whole year.
func (f Filter) HasOnlyYear() bool { return f.Kind() == KindYear }

// HasOnlyYearMonth reports whether f matches whole months.
func (f Filter) HasOnlyYearMonth() bool { return f.Kind() == KindYearMonths }

// HasYearMonthDay reports whether f matches individual days.
func (f Filter) HasYearMonthDay() bool { return f.Kind() == KindYearMonthDays }

// Covers reports whether d falls inside f.
func (f Filter) Covers(d Date) bool {
	if d.Year != f.year {
		return false
	}
	if len(f.months) > 0 && !slices.Contains(f.months, d.Month) {
		return false
	}
	if len(f.days) > 0 && !slices.Contains(f.days, d.Day) {
		return false
	}
	return true
}

// Dates returns every day f selects, in ascending order.
func (f Filter) Dates() []Date {
	months := f.months
	if len(months) == 0 {
		months = monthRange(time.January, time.December)
	}
	var out []Date
	for _, m := range months {
		days := f.days
		if len(days) == 0 {
			days = dayRange(1, daysIn(f.year, m))
		}
		for _, d := range days {
			out = append(out, Date{Year: f.year, Month: m, Day: d})
		}
	}
	return out
}

// Equal reports value equality.
func (f Filter) Equal(g Filter) bool {
	return f.year == g.year && slices.Equal(f.months, g.months) && slices.Equal(f.days, g.days)
}

// first returns the earliest day f selects.
func (f Filter) first() Date {
	d := Date{Year: f.year, Month: time.January, Day: 1}
	if len(f.months) > 0 {
		d.Month = f.months[0]
	}
	if len(f.days) > 0 {
		d.Day = f.days[0]
	}
	return d
}

// String renders f compactly: "2019", "2018-[03..12]", "2020-04-[01..19]".
func (f Filter) String() string {
	switch f.Kind() {
	case KindYear:
		return f.Year()
	case KindYearMonths:
		return fmt.Sprintf("%s-%s", f.Year(), spanString(f.Months()))
	default:
		return fmt.Sprintf("%s-%s-%s", f.Year(), pad2(int(f.months[0])), spanString(f.Days()))
	}
}

type filterJSON struct {
	Year   string   `json:"year"`
	Months []string `json:"months"`
	Days   []string `json:"days"`
}

// MarshalJSON renders absent components as null.
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(filterJSON{Year: f.Year(), Months: f.Months(), Days: f.Days()})
}

// Shape identifies which range shape produced a FilterSet.
type Shape int

const (
	// ShapeMultiYear spans at least one whole year between start and end.
	ShapeMultiYear Shape = iota + 1
	// ShapeMultiMonth spans at least one whole month but no whole year.
	ShapeMultiMonth
	// ShapeSingleMonth fits in one month or two adjacent months.
	ShapeSingleMonth
)

func (s Shape) String() string {
	switch s {
	case ShapeMultiYear:
		return "multi_year"
	case ShapeMultiMonth:
		return "multi_month"
	case ShapeSingleMonth:
		return "single_month"
	default:
		return "unknown"
	}
}

// FilterSet is the result of planning a range: an unordered disjunction of
// non-overlapping Filters whose union is exactly the planned range.
//
// Emission order is kept only for diagnostics. Consumers must not depend on
// it; use Sorted for a canonical order.
type FilterSet struct {
	filters []Filter
	shape   Shape
}

// Len returns the number of disjuncts.
func (s FilterSet) Len() int { return len(s.filters) }

// Shape returns the range shape the planner selected.
func (s FilterSet) Shape() Shape { return s.shape }

// Filters returns the disjuncts in emission order.
func (s FilterSet) Filters() []Filter {
	return slices.Clone(s.filters)
}

// Sorted returns the disjuncts in chronological order.
func (s FilterSet) Sorted() []Filter {
	out := slices.Clone(s.filters)
	slices.SortFunc(out, func(a, b Filter) int {
		return a.first().Compare(b.first())
	})
	return out
}

// Contains reports whether f is one of the disjuncts.
func (s FilterSet) Contains(f Filter) bool {
	return slices.ContainsFunc(s.filters, f.Equal)
}

// Equal reports order-insensitive value equality.
func (s FilterSet) Equal(other FilterSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, f := range s.filters {
		if !other.Contains(f) {
			return false
		}
	}
	return true
}

// Covers reports whether any disjunct selects d.
func (s FilterSet) Covers(d Date) bool {
	return slices.ContainsFunc(s.filters, func(f Filter) bool { return f.Covers(d) })
}

// Dates returns every selected day in ascending order.
func (s FilterSet) Dates() []Date {
	var out []Date
	for _, f := range s.Sorted() {
		out = append(out, f.Dates()...)
	}
	return out
}

// String joins the sorted disjuncts with " OR ".
func (s FilterSet) String() string {
	parts := make([]string, 0, s.Len())
	for _, f := range s.Sorted() {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, " OR ")
}

// MarshalJSON renders the disjuncts in chronological order.
func (s FilterSet) MarshalJSON() ([]byte, error) {
	sorted := s.Sorted()
	if sorted == nil {
		sorted = []Filter{}
	}
	return json.Marshal(sorted)
}

func pad2(n int) string {
	return fmt.Sprintf("%02d", n)
}

// monthRange returns first..last inclusive; empty when first > last.
func monthRange(first, last time.Month) []time.Month {
	var out []time.Month
	for m := first; m <= last; m++ {
		out = append(out, m)
	}
	return out
}

// dayRange returns first..last inclusive; empty when first > last.
func dayRange(first, last int) []int {
	var out []int
	for d := first; d <= last; d++ {
		out = append(out, d)
	}
	return out
}

func spanString(values []string) string {
	if len(values) == 1 {
		return "[" + values[0] + "]"
	}
	return "[" + values[0] + ".." + values[len(values)-1] + "]"
}
