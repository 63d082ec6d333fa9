package valueobjects

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents an ISO 4217 currency code.
type Currency string

// Common currency codes
const (
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyJPY Currency = "JPY"
)

// ErrInvalidCurrency is returned when parsing a malformed currency code.
var ErrInvalidCurrency = errors.New("invalid currency code")

// zeroDecimalCurrencies have no minor unit; their amounts are whole units.
var zeroDecimalCurrencies = map[Currency]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "HUF": true,
	"ISK": true, "JPY": true, "KMF": true, "KRW": true, "PYG": true,
	"RWF": true, "UGX": true, "VND": true, "VUV": true, "XAF": true,
	"XOF": true, "XPF": true,
}

// ParseCurrency validates a three-letter currency code and upper-cases it.
func ParseCurrency(s string) (Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
		}
	}
	return Currency(code), nil
}

// String returns the string representation of Currency.
func (c Currency) String() string {
	return string(c)
}

// IsEmpty checks if the Currency is unset.
func (c Currency) IsEmpty() bool {
	return c == ""
}

// Exponent returns the number of minor-unit digits for the currency.
func (c Currency) Exponent() int32 {
	if zeroDecimalCurrencies[c] {
		return 0
	}
	return 2
}

// Money is an amount in minor units (pence, cents) with an optional currency.
// An empty currency means "use the gateway default".
type Money struct {
	Cents    int64    `json:"cents"`
	Currency Currency `json:"currency,omitempty"`
}

// New creates a Money from minor units and a currency.
func New(cents int64, currency Currency) Money {
	return Money{Cents: cents, Currency: currency}
}

// CurrencyOr returns the money's currency, or fallback when none is set.
func (m Money) CurrencyOr(fallback Currency) Currency {
	if m.Currency.IsEmpty() {
		return fallback
	}
	return m.Currency
}

// Format renders the amount as a fixed-point decimal string, e.g. 1000 GBP -> "10.00".
// fallback is used to pick the exponent when the money carries no currency.
func (m Money) Format(fallback Currency) string {
	return m.FormatIn(m.CurrencyOr(fallback))
}

// FormatIn renders the minor units with the exponent of c, ignoring the money's
// own currency. Use it when c is the currency that goes on the wire.
func (m Money) FormatIn(c Currency) string {
	exp := c.Exponent()
	return decimal.New(m.Cents, -exp).StringFixed(exp)
}

// String returns a human-readable representation.
func (m Money) String() string {
	if m.Currency.IsEmpty() {
		return m.Format("")
	}
	return fmt.Sprintf("%s %s", m.Format(m.Currency), m.Currency)
}
