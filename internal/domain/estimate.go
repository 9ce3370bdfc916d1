package domain

import (
	"cmp"
	"slices"
)

// Placeholder shown when a provider does not report duration or distance.
const Unavailable = "-"

// PriceEstimate is one provider product quote in normalized form.
// Prices are in the provider's currency units and default to 0 when absent.
type PriceEstimate struct {
	Provider string
	Service  string
	PriceMin float64
	PriceMax float64
	Currency string
	Duration string
	Distance string
	Deeplink string
}

// SortByMinPrice orders estimates ascending by PriceMin.
// Equal prices keep their relative input order.
func SortByMinPrice(estimates []PriceEstimate) {
	slices.SortStableFunc(estimates, func(a, b PriceEstimate) int {
		return cmp.Compare(a.PriceMin, b.PriceMin)
	})
}
