package billing

import (
	"strings"

	"github.com/shopspring/decimal"

	"handyman-backend/models"
)

// Totals is the stored money triple of a billing document.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// ComputeTotals derives subtotal/tax/total from line items and a tax rate in
// percent. Accumulation is done in decimals so a long item list cannot drift;
// subtotal and tax are rounded to cents independently and total is their
// exact sum, so total == subtotal + tax always holds on the stored amounts.
//
// Pure function. Negative quantities or prices are not rejected here; that is
// a boundary concern.
func ComputeTotals(items []models.LineItem, taxRatePercent float64) Totals {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Quantity).Mul(decimal.NewFromFloat(it.UnitPrice)))
	}
	subtotal := sum.Round(2)
	tax := subtotal.Mul(decimal.NewFromFloat(taxRatePercent)).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Add(tax)

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// CommittedItems drops rows with an empty description. A line item only
// counts toward a document once it is described.
func CommittedItems(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}

// effectiveRate reconstructs the tax rate that produced the stored amounts.
// The rate itself is never persisted, only the tax amount, so this is the
// only way to recover it when an update changes items without restating the
// rate.
func effectiveRate(subtotal, tax float64) float64 {
	if subtotal == 0 {
		return 0
	}
	return tax / subtotal * 100
}
