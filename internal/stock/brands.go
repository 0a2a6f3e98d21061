package stock

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"
)

// NormalizeBrands trims and NFC-normalizes brand names, drops empty ones
// and removes duplicates, keeping first-seen order.
//
// Composed and decomposed spellings of the same brand collapse to one.
func NormalizeBrands(brands []string) []string {
	normalized := lo.Map(brands, func(b string, _ int) string {
		return norm.NFC.String(strings.TrimSpace(b))
	})
	return lo.Uniq(lo.Compact(normalized))
}
