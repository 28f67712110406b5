package pricing

import "strings"

// Currency is an ISO 4217 code. USD is the base currency of every calculation.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

// ForeignCurrencies lists the currencies figures are replicated into, in display order.
var ForeignCurrencies = []Currency{EUR, GBP}

// Symbol returns the display symbol of the currency.
func (c Currency) Symbol() string {
	switch c {
	case EUR:
		return "€"
	case GBP:
		return "£"
	default:
		return "$"
	}
}

// ParseCurrency maps a case-insensitive code to a known Currency.
func ParseCurrency(code string) (Currency, error) {
	switch cur := Currency(strings.ToUpper(strings.TrimSpace(code))); cur {
	case USD, EUR, GBP:
		return cur, nil
	default:
		return "", invalid("unknown currency %q", code)
	}
}

// FXRates are multipliers from USD into each foreign currency.
type FXRates struct {
	EUR float64 `json:"eur"`
	GBP float64 `json:"gbp"`
}

// Validate rejects non-positive rates.
func (fx FXRates) Validate() error {
	if fx.EUR <= 0 {
		return invalid("EUR rate must be > 0")
	}
	if fx.GBP <= 0 {
		return invalid("GBP rate must be > 0")
	}
	return nil
}

// Rate returns the USD multiplier for cur. USD always converts at 1.
func (fx FXRates) Rate(cur Currency) float64 {
	switch cur {
	case EUR:
		return fx.EUR
	case GBP:
		return fx.GBP
	default:
		return 1
	}
}

// Convert replicates a USD amount into cur.
func (fx FXRates) Convert(usd float64, cur Currency) float64 {
	return usd * fx.Rate(cur)
}

// In returns the conversion of r into cur.
func (r Result) In(cur Currency) (Converted, bool) {
	for _, c := range r.Conversion {
		if c.Currency == cur {
			return c, true
		}
	}
	return Converted{}, false
}
