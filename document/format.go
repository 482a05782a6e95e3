package document

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatAmount renders amount in the plan's currency, e.g. "$1,234.56".
// Amounts are rounded to the currency's minor unit.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(NormalizeCurrency(currency))
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
