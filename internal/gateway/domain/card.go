package domain

// CardBrand is the card scheme classification of a card number.
type CardBrand string

const (
	BrandVisa            CardBrand = "visa"
	BrandMaster          CardBrand = "master"
	BrandAmericanExpress CardBrand = "american_express"
	BrandMaestro         CardBrand = "maestro"
	BrandSwitch          CardBrand = "switch"
	BrandSolo            CardBrand = "solo"
	BrandDelta           CardBrand = "delta"
)

// Card is a card instrument as supplied by the caller.
// Validation of the number, expiry and verification value is the caller's concern.
type Card struct {
	Number            string    `json:"number"`
	Month             int       `json:"month"`
	Year              int       `json:"year"`
	IssueNumber       string    `json:"issue_number,omitempty"`
	StartMonth        int       `json:"start_month,omitempty"`
	StartYear         int       `json:"start_year,omitempty"`
	VerificationValue string    `json:"verification_value,omitempty"`
	Brand             CardBrand `json:"brand"`
}

// UsesIssueDetails reports whether the issue number and start date apply to this card.
// Only the UK domestic debit schemes carry them.
func (c *Card) UsesIssueDetails() bool {
	return c.Brand == BrandSwitch || c.Brand == BrandSolo
}

// HasStartDate reports whether both start month and start year are set.
func (c *Card) HasStartDate() bool {
	return c.StartMonth > 0 && c.StartYear > 0
}

// HasVerificationValue reports whether a CV2 value was supplied.
func (c *Card) HasVerificationValue() bool {
	return c.VerificationValue != ""
}

// Last4 returns the last four digits of the number for logging.
func (c *Card) Last4() string {
	if len(c.Number) <= 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}

func (*Card) isPaymentSource() {}
