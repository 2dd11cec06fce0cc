package billing

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatCurrency renders amount as symbol + grouped digits with the given
// number of decimal places, e.g. $10,626.00. A negative amount keeps its sign
// after the symbol.
func FormatCurrency(amount decimal.Decimal, symbol string, places int32) string {
	if places < 0 {
		places = 0
	}
	fixed := amount.Round(places)

	sign := ""
	if fixed.IsNegative() {
		sign = "-"
		fixed = fixed.Neg()
	}

	text := fixed.StringFixed(places)
	whole, frac, _ := strings.Cut(text, ".")
	grouped := amountPrinter.Sprintf("%d", decimal.RequireFromString(whole).IntPart())

	var b strings.Builder
	b.WriteString(symbol)
	b.WriteString(sign)
	b.WriteString(grouped)
	if places > 0 {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
