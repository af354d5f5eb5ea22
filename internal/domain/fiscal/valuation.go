package fiscal

import (
	"github.com/shopspring/decimal"

	"rebanho/internal/core/types"
)

// LineAmount values a single line. Individually tagged animals are priced
// per head; batch animal lines, semen and embryos multiply the unit price
// by their count.
func LineAmount(li LineItem) decimal.Decimal {
	price := li.UnitPrice.Decimal
	switch li.Kind {
	case types.KindAnimal:
		if li.BatchQuantity > 0 {
			return price.Mul(decimal.NewFromInt(int64(li.BatchQuantity)))
		}
		return price
	case types.KindSemen:
		return price.Mul(decimal.NewFromInt(int64(li.Doses)))
	case types.KindEmbryo:
		return price.Mul(decimal.NewFromInt(int64(li.Embryos)))
	default:
		return price
	}
}

// ComputeTotal sums the line amounts, rounded to cents.
func ComputeTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(LineAmount(items[i]))
	}
	return total.Round(2)
}
