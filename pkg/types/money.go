package types

import "github.com/shopspring/decimal"

// TaxCents computes sales tax in integer cents, rounding halves up.
// Drift of even one cent against the storefront breaks reconciliation, so
// the arithmetic goes through decimal rather than float64.
func TaxCents(subtotalCents int, rate float64) int {
	if subtotalCents <= 0 || rate <= 0 {
		return 0
	}
	tax := decimal.NewFromInt(int64(subtotalCents)).
		Mul(decimal.NewFromFloat(rate)).
		Round(0)
	return int(tax.IntPart())
}

// DiscountCents computes a percentage discount in integer cents, rounding
// halves up.
func DiscountCents(subtotalCents int, percent float64) int {
	if subtotalCents <= 0 || percent <= 0 {
		return 0
	}
	discount := decimal.NewFromInt(int64(subtotalCents)).
		Mul(decimal.NewFromFloat(percent)).
		Round(0)
	return int(discount.IntPart())
}
