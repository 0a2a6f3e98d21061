package partition

import "time"

// Plan decomposes the inclusive range [start, end] into the smallest set of
// year, month and day partition filters whose union is exactly that range.
//
// Whole years and whole months collapse into year-level and month-level
// filters; day-level filters appear only at range edges that do not fall on
// a month boundary.
//
// Plan is pure and safe for concurrent use. It fails with an
// *InvalidRangeError when either date is missing or invalid, or when start
// is after end.
func Plan(start, end Date) (FilterSet, error) {
	if err := checkRange(start, end); err != nil {
		return FilterSet{}, err
	}

	if wholeYearsBetween(start, end) > 0 {
		return newFilterSet(ShapeMultiYear, planMultiYear(start, end)), nil
	}
	if n := wholeMonthsBetween(start, end); n > 0 {
		return newFilterSet(ShapeMultiMonth, planMultiMonth(start, end, n)), nil
	}
	return newFilterSet(ShapeSingleMonth, planSingleMonth(start, end)), nil
}

// MustPlan is like Plan but panics on error. Intended for tests and
// constant ranges.
func MustPlan(start, end Date) FilterSet {
	set, err := Plan(start, end)
	if err != nil {
		panic(err)
	}
	return set
}

// wholeYearsBetween counts calendar years that lie entirely inside the range,
// i.e. years with no partial month on either edge.
func wholeYearsBetween(start, end Date) int {
	first := start.Year + 1
	if start.Month == time.January && start.IsFirstOfMonth() {
		first = start.Year
	}
	last := end.Year - 1
	if end.Month == time.December && end.IsLastOfMonth() {
		last = end.Year
	}
	return max(0, last-first+1)
}

// wholeMonthsBetween counts months strictly between start's and end's month.
func wholeMonthsBetween(start, end Date) int {
	return max(0, end.monthIndex()-start.monthIndex()-1)
}

// planMultiYear emits middle years, then the start-year fragments, then the
// end-year fragments. That order is not chronological.
func planMultiYear(start, end Date) []Filter {
	var out []Filter
	for y := start.Year + 1; y < end.Year; y++ {
		out = append(out, yearFilter(y))
	}

	switch {
	case start.Month == time.January && start.IsFirstOfMonth():
		out = append(out, yearFilter(start.Year))
	case start.IsFirstOfMonth():
		out = append(out, monthsFilter(start.Year, start.Month, time.December))
	default:
		out = append(out, daysFilter(start.Year, start.Month, start.Day, start.DaysInMonth()))
		if start.Month < time.December {
			out = append(out, monthsFilter(start.Year, start.Month+1, time.December))
		}
	}

	switch {
	case end.Month == time.December && end.IsLastOfMonth():
		out = append(out, yearFilter(end.Year))
	case end.IsLastOfMonth():
		out = append(out, monthsFilter(end.Year, time.January, end.Month))
	default:
		out = append(out, daysFilter(end.Year, end.Month, 1, end.Day))
		if end.Month > time.January {
			out = append(out, monthsFilter(end.Year, time.January, end.Month-1))
		}
	}
	return out
}

// planMultiMonth emits the intervening whole months, then the start month,
// then the end month. The range crosses at most one year boundary here.
func planMultiMonth(start, end Date, monthsBetween int) []Filter {
	var out []Filter
	switch {
	case start.Year != end.Year && start.Month == time.December:
		out = append(out, monthsFilter(end.Year, time.January, time.Month(monthsBetween)))
	case start.Year != end.Year:
		out = append(out, monthsFilter(start.Year, start.Month+1, time.December))
		// An empty month list would read as a whole-year filter.
		if next := abs((12 - int(start.Month)) - monthsBetween); next > 0 {
			out = append(out, monthsFilter(end.Year, time.January, time.Month(next)))
		}
	default:
		out = append(out, monthsFilter(start.Year, start.Month+1, start.Month+time.Month(monthsBetween)))
	}

	if start.IsFirstOfMonth() {
		out = append(out, monthsFilter(start.Year, start.Month, start.Month))
	} else {
		out = append(out, daysFilter(start.Year, start.Month, start.Day, start.DaysInMonth()))
	}

	if end.IsLastOfMonth() {
		out = append(out, monthsFilter(end.Year, end.Month, end.Month))
	} else {
		out = append(out, daysFilter(end.Year, end.Month, 1, end.Day))
	}
	return out
}

// planSingleMonth handles ranges inside one month or two adjacent months.
func planSingleMonth(start, end Date) []Filter {
	if start.monthIndex() == end.monthIndex() {
		if start.IsFirstOfMonth() && end.IsLastOfMonth() {
			return []Filter{monthsFilter(start.Year, start.Month, start.Month)}
		}
		return []Filter{daysFilter(start.Year, start.Month, start.Day, end.Day)}
	}

	var out []Filter
	if start.IsFirstOfMonth() {
		out = append(out, monthsFilter(start.Year, start.Month, start.Month))
	} else {
		out = append(out, daysFilter(start.Year, start.Month, start.Day, start.DaysInMonth()))
	}
	// The end month always stays day-level, even when end is the last day
	// of its month. Equivalent to a whole-month filter, just less compact.
	// TODO: collapse to a whole-month filter once downstream golden SQL is
	// regenerated.
	out = append(out, daysFilter(end.Year, end.Month, 1, end.Day))
	return out
}

// newFilterSet drops repeated filters, keeping first emission order. A range
// of exactly one whole year yields the same year-only filter from both edges.
func newFilterSet(shape Shape, filters []Filter) FilterSet {
	set := FilterSet{shape: shape}
	for _, f := range filters {
		if !set.Contains(f) {
			set.filters = append(set.filters, f)
		}
	}
	return set
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
