package payment

import "github.com/shopspring/decimal"

// CalculateChange returns received - total. The result is only defined when
// total is positive and received covers it.
func CalculateChange(total, received decimal.Decimal) (decimal.Decimal, bool) {
	if !total.IsPositive() || received.LessThan(total) {
		return decimal.Zero, false
	}
	return received.Sub(total), true
}
