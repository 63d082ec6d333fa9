package domain

import (
	"strings"

	vo "datacash/internal/common/value_objects"
)

// Address is a postal address. Blank fields are never sent.
type Address struct {
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	Address3 string `json:"address3,omitempty"`
	Address4 string `json:"address4,omitempty"`
	City     string `json:"city,omitempty"`
	County   string `json:"county,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	Country  string `json:"country,omitempty"`
}

// CustomerInformation feeds the fraud screening block.
type CustomerInformation struct {
	OrderNumber       string `json:"order_number,omitempty"`
	CustomerReference string `json:"customer_reference,omitempty"`
	Forename          string `json:"forename,omitempty"`
	Surname           string `json:"surname,omitempty"`
	DeliveryForename  string `json:"delivery_forename,omitempty"`
	DeliverySurname   string `json:"delivery_surname,omitempty"`
	Telephone         string `json:"telephone,omitempty"`
	Email             string `json:"email,omitempty"`
	IPAddress         string `json:"ip_address,omitempty"`
}

// OrderLine is a single product line for fraud screening.
// Price is in minor units of the transaction currency; zero is treated as blank.
type OrderLine struct {
	Code            string `json:"code,omitempty"`
	Quantity        int    `json:"quantity,omitempty"`
	Price           int64  `json:"price,omitempty"`
	Description     string `json:"description,omitempty"`
	ProductID       string `json:"product_id,omitempty"`
	ProductCategory string `json:"product_category,omitempty"`
	ProductType     string `json:"product_type,omitempty"`
}

// Options carries the per-operation settings.
//
// Defaults:
//   - Currency: the money's currency, then the gateway default.
//   - ExtendedPolicy: DefaultExtendedPolicy, overridden outcome by outcome.
//   - CustomerInformation: required only when fraud services are enabled.
type Options struct {
	OrderID                  string               `json:"order_id"`
	Currency                 vo.Currency          `json:"currency,omitempty"`
	BillingAddress           *Address             `json:"billing_address,omitempty"`
	DeliveryAddress          *Address             `json:"delivery_address,omitempty"`
	SetUpContinuousAuthority bool                 `json:"set_up_continuous_authority,omitempty"`
	ExtendedPolicy           ExtendedPolicy       `json:"extended_policy"`
	CustomerInformation      *CustomerInformation `json:"customer_information,omitempty"`
	OrderLines               []OrderLine          `json:"order_lines,omitempty"`
}

// RequireOrderID returns ErrOrderIDRequired when no order id was supplied.
func (o Options) RequireOrderID() error {
	if strings.TrimSpace(o.OrderID) == "" {
		return ErrOrderIDRequired
	}
	return nil
}
