// Package pricing holds the money arithmetic shared by the catalog, cart and checkout.
// Amounts are stored as float64 in the database and converted to decimals here.
package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FinalPrice applies a percentage discount to a list price: price * (1 - discount/100).
// The discount is clamped to [0, 100] and the result rounded to cents.
func FinalPrice(price, discount float64) float64 {
	return finalPrice(price, discount).InexactFloat64()
}

// LineTotal is the discounted unit price times quantity, rounded to cents.
func LineTotal(price, discount float64, quantity int) float64 {
	return finalPrice(price, discount).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}

// MinorUnits converts an amount to the smallest currency unit (qəpik, kuruş, cents).
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// Sum adds amounts without accumulating float error.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}

func finalPrice(price, discount float64) decimal.Decimal {
	d := decimal.NewFromFloat(discount)
	if d.IsNegative() {
		d = decimal.Zero
	}
	if d.GreaterThan(hundred) {
		d = hundred
	}
	factor := decimal.NewFromInt(1).Sub(d.Div(hundred))
	return decimal.NewFromFloat(price).Mul(factor).Round(2)
}
