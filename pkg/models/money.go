package models

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places every derived amount is rounded to.
//
// Importing this package sets decimal.MarshalJSONWithoutQuotes for the whole
// process, so every decimal.Decimal in the binary marshals as a JSON number.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

func init() {
	// Documents carry amounts as plain JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Round2 rounds an amount to two places, half away from zero.
// Amounts marshal unquoted; see MoneyPlaces.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Percent returns base*rate/100 without rounding.
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred)
}

// Sum adds amounts in order.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

func inPercentRange(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}
