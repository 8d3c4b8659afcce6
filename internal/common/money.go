package common

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brlPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount for people: "R$ 1.234,50".
func FormatBRL(amount decimal.Decimal) string {
	return brlPrinter.Sprintf("R$ %.2f", amount.Round(2).InexactFloat64())
}

// FormatPlain renders an amount for machines: fixed two decimals with a dot, no grouping.
func FormatPlain(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
