package datacash

import "encoding/xml"

// Request document layout. Field order is element order on the wire.

type requestDocument struct {
	XMLName        xml.Name       `xml:"Request"`
	Authentication authentication `xml:"Authentication"`
	Transaction    transaction    `xml:"Transaction"`
}

type authentication struct {
	Client   string `xml:"client"`
	Password string `xml:"password"`
}

type transaction struct {
	ContAuthTxn *contAuthTxn `xml:"ContAuthTxn,omitempty"`
	CardTxn     *cardTxn     `xml:"CardTxn,omitempty"`
	HistoricTxn *historicTxn `xml:"HistoricTxn,omitempty"`
	TxnDetails  *txnDetails  `xml:"TxnDetails,omitempty"`
}

type contAuthTxn struct {
	Type string `xml:"type,attr"`
}

type cardTxn struct {
	Method string   `xml:"method"`
	Card   cardData `xml:"Card"`
}

type cardData struct {
	Pan         string  `xml:"pan"`
	ExpiryDate  string  `xml:"expirydate"`
	IssueNumber string  `xml:"issuenumber,omitempty"`
	StartDate   string  `xml:"startdate,omitempty"`
	Cv2Avs      *cv2Avs `xml:"Cv2Avs,omitempty"`
}

type cv2Avs struct {
	CV2            string          `xml:"cv2,omitempty"`
	StreetAddress1 string          `xml:"street_address1,omitempty"`
	StreetAddress2 string          `xml:"street_address2,omitempty"`
	StreetAddress3 string          `xml:"street_address3,omitempty"`
	StreetAddress4 string          `xml:"street_address4,omitempty"`
	Postcode       string          `xml:"postcode,omitempty"`
	ExtendedPolicy *extendedPolicy `xml:"ExtendedPolicy,omitempty"`
}

func (c *cv2Avs) empty() bool {
	return *c == cv2Avs{}
}

type extendedPolicy struct {
	CV2      policyRule `xml:"cv2_policy"`
	Postcode policyRule `xml:"postcode_policy"`
	Address  policyRule `xml:"address_policy"`
}

type policyRule struct {
	NotProvided  string `xml:"notprovided,attr"`
	NotChecked   string `xml:"notchecked,attr"`
	Matched      string `xml:"matched,attr"`
	NotMatched   string `xml:"notmatched,attr"`
	PartialMatch string `xml:"partialmatch,attr"`
}

type historicTxn struct {
	Reference string  `xml:"reference"`
	AuthCode  *string `xml:"authcode,omitempty"`
	Method    string  `xml:"method"`
}

type txnDetails struct {
	MerchantReference string     `xml:"merchantreference,omitempty"`
	Amount            amount     `xml:"amount"`
	CaptureMethod     string     `xml:"capturemethod,omitempty"`
	The3rdMan         *the3rdMan `xml:"The3rdMan,omitempty"`
}

type amount struct {
	Value    string `xml:",chardata"`
	Currency string `xml:"currency,attr,omitempty"`
}

// Fraud screening block.

type the3rdMan struct {
	Type                string            `xml:"type,attr"`
	CustomerInformation *fraudCustomer    `xml:"CustomerInformation,omitempty"`
	BillingAddress      *fraudAddress     `xml:"BillingAddress,omitempty"`
	DeliveryAddress     *fraudAddress     `xml:"DeliveryAddress,omitempty"`
	OrderInformation    *orderInformation `xml:"OrderInformation,omitempty"`
}

type fraudCustomer struct {
	OrderNumber       string `xml:"order_number,omitempty"`
	CustomerReference string `xml:"customer_reference,omitempty"`
	Forename          string `xml:"forename,omitempty"`
	Surname           string `xml:"surname,omitempty"`
	DeliveryForename  string `xml:"delivery_forename,omitempty"`
	DeliverySurname   string `xml:"delivery_surname,omitempty"`
	Telephone         string `xml:"telephone,omitempty"`
	Email             string `xml:"email,omitempty"`
	IPAddress         string `xml:"ip_address,omitempty"`
}

type fraudAddress struct {
	StreetAddress1 string `xml:"street_address_1,omitempty"`
	StreetAddress2 string `xml:"street_address_2,omitempty"`
	StreetAddress3 string `xml:"street_address_3,omitempty"`
	StreetAddress4 string `xml:"street_address_4,omitempty"`
	City           string `xml:"city,omitempty"`
	County         string `xml:"county,omitempty"`
	Postcode       string `xml:"postcode,omitempty"`
	Country        string `xml:"country,omitempty"`
}

type orderInformation struct {
	Products products `xml:"Products"`
}

type products struct {
	Count   int       `xml:"count,attr"`
	Product []product `xml:"Product"`
}

type product struct {
	Code            string `xml:"code,omitempty"`
	Quantity        string `xml:"quantity,omitempty"`
	Price           string `xml:"price,omitempty"`
	Description     string `xml:"prod_description,omitempty"`
	ProductID       string `xml:"prod_id,omitempty"`
	ProductCategory string `xml:"prod_category,omitempty"`
	ProductType     string `xml:"prod_type,omitempty"`
}
