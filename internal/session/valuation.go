package session

import (
	"github.com/shopspring/decimal"
)

// Valuation derives the deal valuation from the current field values:
// EBITDA times the multiple, scaled by the factor score. The interest
// rate is tracked and approved like the other terms but does not enter
// the formula. Missing fields contribute zero, which zeroes the product.
func Valuation(values map[string]float64) float64 {
	ebitda := decimal.NewFromFloat(values["EBITDA"])
	multiple := decimal.NewFromFloat(values["Multiple"])
	factor := decimal.NewFromFloat(values["Factor Score"])

	v, _ := ebitda.Mul(multiple).Mul(factor).Float64()
	return v
}
