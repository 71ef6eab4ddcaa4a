package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds to two decimals, half away from zero.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Percentage returns pct percent of amount rounded with RoundMoney.
func Percentage(amount decimal.Decimal, pct int64) decimal.Decimal {
	return RoundMoney(amount.Mul(decimal.NewFromInt(pct)).Div(hundred))
}

// MinMoney returns the smaller of a and b.
func MinMoney(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// FormatMoney renders amount with exactly two decimals, e.g. "15.00".
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
