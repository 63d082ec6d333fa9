package datacash

import (
	vo "datacash/internal/common/value_objects"
)

// Endpoint URLs, chosen by test mode and whether fraud services are enabled.
const (
	TestURL      = "https://testserver.datacash.com/Transaction"
	LiveURL      = "https://mars.transaction.datacash.com/Transaction"
	TestFraudURL = "https://accreditation.datacash.com/Transaction/cnp_a"
	LiveFraudURL = "https://mars.transaction.datacash.com/Transaction/cnp_a"
)

// DefaultCurrency is used when neither the money nor the options name a currency.
const DefaultCurrency = vo.CurrencyGBP

// Config is the per-adapter configuration. It is immutable once a Builder
// or gateway service has been constructed from it.
type Config struct {
	Client          string
	Password        string
	Test            bool
	FraudServices   bool
	DefaultCurrency vo.Currency
}

// Endpoint returns the URL requests for this configuration are posted to.
func (c Config) Endpoint() string {
	return Endpoint(c.Test, c.FraudServices)
}

// Endpoint selects one of the four fixed gateway URLs.
func Endpoint(test, fraudServices bool) string {
	switch {
	case test && fraudServices:
		return TestFraudURL
	case test:
		return TestURL
	case fraudServices:
		return LiveFraudURL
	default:
		return LiveURL
	}
}

func (c Config) currency() vo.Currency {
	if c.DefaultCurrency.IsEmpty() {
		return DefaultCurrency
	}
	return c.DefaultCurrency
}
