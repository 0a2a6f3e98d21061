package replica

import (
	"slices"

	"github.com/samber/lo"

	"github.com/roach88/athenaq/internal/partition"
)

// Coverage compares the days a query returned against the requested range.
type Coverage struct {
	From, To partition.Date

	// Missing are requested days the query did not return.
	Missing []partition.Date

	// Extra are returned days outside the requested range.
	Extra []partition.Date
}

// Exact reports whether the query returned exactly the requested days.
func (c Coverage) Exact() bool {
	return len(c.Missing) == 0 && len(c.Extra) == 0
}

// CompareDays checks returned days against the inclusive range [from, to].
func CompareDays(returned []partition.Date, from, to partition.Date) Coverage {
	var want []partition.Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		want = append(want, d)
	}

	missing, extra := lo.Difference(want, returned)
	return Coverage{From: from, To: to, Missing: missing, Extra: extra}
}

// ShippingDays returns the distinct shipping days of rows, ascending.
func ShippingDays(rows []StockRow) []partition.Date {
	days := lo.Uniq(lo.Map(rows, func(r StockRow, _ int) partition.Date {
		return partition.DateOf(r.Shipped)
	}))
	slices.SortFunc(days, partition.Date.Compare)
	return days
}
