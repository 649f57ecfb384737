package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats d as dollars with thousands separators and two
// decimals: 1234.5 -> "$1,234.50", 0 -> "$0.00".
func FormatCurrency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	d = d.Round(2)
	whole := d.Truncate(0)
	frac := d.Sub(whole).StringFixed(2) // "0.50"
	return sign + "$" + humanize.Comma(whole.IntPart()) + frac[1:]
}

// FormatCount formats n with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatDay formats a record as its currency amount followed by its date.
func FormatDay(r RawRecord) string {
	return fmt.Sprintf("%s (%s)", FormatCurrency(r.SalesAmount), r.Date.Format(DateLayout))
}
