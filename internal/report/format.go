// Package report renders pricing and deal sheets as HTML documents and XLSX workbooks.
package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/pricedesk/internal/pricing"
)

// Money formats v with the currency symbol, thousands separators and 2 decimals.
func Money(cur pricing.Currency, v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + cur.Symbol() + humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

// USD is Money in the base currency.
func USD(v float64) string {
	return Money(pricing.USD, v)
}

// Percent formats v with 2 decimals and a percent suffix.
func Percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// Count formats v as a whole number.
func Count(v float64) string {
	return humanize.Comma(decimal.NewFromFloat(v).Round(0).IntPart())
}

// Rate formats an FX rate with 4 decimals.
func Rate(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

// Bps formats a basis point figure.
func Bps(v float64) string {
	return fmt.Sprintf("%s bps", decimal.NewFromFloat(v).StringFixed(2))
}
