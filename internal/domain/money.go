package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Persisted files carry plain JSON numbers, same as the historical format.
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ExclusiveFromInclusive strips VAT from a tax-inclusive amount:
// amount / (1 + rate/100). A rate of 0 returns the amount unchanged.
func ExclusiveFromInclusive(amount, ratePercent decimal.Decimal) (decimal.Decimal, error) {
	if ratePercent.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s%%", ErrInvalidRate, ratePercent)
	}
	return amount.Div(one.Add(ratePercent.Div(hundred))), nil
}

// TaxFromInclusive returns the VAT portion of a tax-inclusive amount.
func TaxFromInclusive(amount, ratePercent decimal.Decimal) (decimal.Decimal, error) {
	excl, err := ExclusiveFromInclusive(amount, ratePercent)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Sub(excl), nil
}
