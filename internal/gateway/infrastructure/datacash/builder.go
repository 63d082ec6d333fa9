package datacash

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	vo "datacash/internal/common/value_objects"
	"datacash/internal/gateway/domain"
)

const (
	contAuthSetup    = "setup"
	contAuthHistoric = "historic"
	captureContAuth  = "cont_auth"
	fraudRealtime    = "realtime"
)

// Builder renders gateway request documents. It performs no I/O and holds no
// mutable state, so one Builder may serve concurrent callers.
type Builder struct {
	cfg Config
}

// NewBuilder creates a Builder for the given adapter configuration.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Purchase builds an immediate "auth" request against a card or a continuous authority token.
func (b *Builder) Purchase(money vo.Money, source domain.PaymentSource, opts domain.Options) (string, error) {
	return b.newTransaction(domain.KindAuth, money, source, opts)
}

// Authorize builds a "pre" request against a card or a continuous authority token.
func (b *Builder) Authorize(money vo.Money, source domain.PaymentSource, opts domain.Options) (string, error) {
	return b.newTransaction(domain.KindPre, money, source, opts)
}

// Capture builds a "fulfill" request for a previous pre-authorization.
func (b *Builder) Capture(money vo.Money, token domain.AuthorizationToken, opts domain.Options) (string, error) {
	if err := opts.RequireOrderID(); err != nil {
		return "", err
	}
	return b.historic(domain.KindFulfill, &money, token, opts)
}

// Void builds a "cancel" request. No transaction details are sent.
func (b *Builder) Void(token domain.AuthorizationToken, opts domain.Options) (string, error) {
	return b.historic(domain.KindCancel, nil, token, opts)
}

// Refund builds a "txn_refund" request against a previous transaction.
// A nil money refunds the full original amount.
func (b *Builder) Refund(money *vo.Money, token domain.AuthorizationToken) (string, error) {
	doc := b.document()
	doc.Transaction.HistoricTxn = &historicTxn{
		Reference: token.Reference,
		Method:    domain.KindTxnRefund.String(),
	}
	if money != nil {
		doc.Transaction.TxnDetails = &txnDetails{
			Amount: amount{Value: money.Format(b.cfg.currency())},
		}
	}
	return render(doc)
}

// Credit builds a card "refund" request. The risk policy block is not sent.
func (b *Builder) Credit(money vo.Money, card *domain.Card, opts domain.Options) (string, error) {
	if err := opts.RequireOrderID(); err != nil {
		return "", err
	}
	if card == nil {
		return "", fmt.Errorf("%w: card is required", domain.ErrInvalidPaymentSource)
	}

	doc := b.document()
	doc.Transaction.CardTxn = &cardTxn{
		Method: domain.KindRefund.String(),
		Card:   b.card(card, opts.BillingAddress, nil),
	}
	doc.Transaction.TxnDetails = &txnDetails{
		MerchantReference: FormatMerchantReference(opts.OrderID),
		Amount:            amount{Value: money.FormatIn(b.resolveCurrency(money, opts))},
	}
	return render(doc)
}

// newTransaction dispatches on the payment source variant.
func (b *Builder) newTransaction(kind domain.TransactionKind, money vo.Money, source domain.PaymentSource, opts domain.Options) (string, error) {
	if err := opts.RequireOrderID(); err != nil {
		return "", err
	}

	switch src := source.(type) {
	case *domain.Card:
		if src == nil {
			return "", fmt.Errorf("%w: card is nil", domain.ErrInvalidPaymentSource)
		}
		return b.cardTransaction(kind, money, src, opts)
	case domain.AuthorizationToken:
		return b.continuousAuthorityTransaction(kind, money, src, opts)
	default:
		return "", fmt.Errorf("%w: %T", domain.ErrInvalidPaymentSource, source)
	}
}

func (b *Builder) cardTransaction(kind domain.TransactionKind, money vo.Money, card *domain.Card, opts domain.Options) (string, error) {
	if b.cfg.FraudServices && opts.CustomerInformation == nil {
		return "", domain.ErrCustomerInformationRequired
	}
	if err := opts.ExtendedPolicy.Validate(); err != nil {
		return "", err
	}

	policy := domain.ResolvePolicy(opts.ExtendedPolicy)

	doc := b.document()
	if opts.SetUpContinuousAuthority {
		doc.Transaction.ContAuthTxn = &contAuthTxn{Type: contAuthSetup}
	}
	doc.Transaction.CardTxn = &cardTxn{
		Method: kind.String(),
		Card:   b.card(card, opts.BillingAddress, &policy),
	}
	details := b.transactionDetails(money, opts)
	if b.cfg.FraudServices {
		details.The3rdMan = b.fraudData(money, opts)
	}
	doc.Transaction.TxnDetails = details
	return render(doc)
}

func (b *Builder) continuousAuthorityTransaction(kind domain.TransactionKind, money vo.Money, token domain.AuthorizationToken, opts domain.Options) (string, error) {
	if !token.HasContinuousAuthority() {
		return "", domain.ErrContinuousAuthorityReferenceRequired
	}

	doc := b.document()
	doc.Transaction.ContAuthTxn = &contAuthTxn{Type: contAuthHistoric}
	doc.Transaction.HistoricTxn = &historicTxn{
		Reference: token.CAReference,
		Method:    kind.String(),
	}
	details := b.transactionDetails(money, opts)
	details.CaptureMethod = captureContAuth
	doc.Transaction.TxnDetails = details
	return render(doc)
}

func (b *Builder) historic(kind domain.TransactionKind, money *vo.Money, token domain.AuthorizationToken, opts domain.Options) (string, error) {
	authCode := token.AuthCode

	doc := b.document()
	doc.Transaction.HistoricTxn = &historicTxn{
		Reference: token.Reference,
		AuthCode:  &authCode,
		Method:    kind.String(),
	}
	if money != nil {
		doc.Transaction.TxnDetails = b.transactionDetails(*money, opts)
	}
	return render(doc)
}

func (b *Builder) document() requestDocument {
	return requestDocument{
		Authentication: authentication{
			Client:   b.cfg.Client,
			Password: b.cfg.Password,
		},
	}
}

func (b *Builder) transactionDetails(money vo.Money, opts domain.Options) *txnDetails {
	currency := b.resolveCurrency(money, opts)
	return &txnDetails{
		MerchantReference: FormatMerchantReference(opts.OrderID),
		Amount: amount{
			Value:    money.FormatIn(currency),
			Currency: currency.String(),
		},
	}
}

// resolveCurrency prefers the option override, then the money, then the adapter default.
func (b *Builder) resolveCurrency(money vo.Money, opts domain.Options) vo.Currency {
	if !opts.Currency.IsEmpty() {
		return opts.Currency
	}
	return money.CurrencyOr(b.cfg.currency())
}

// card renders the Card element. A nil policy omits the ExtendedPolicy block,
// and an empty Cv2Avs block is dropped entirely.
func (b *Builder) card(card *domain.Card, address *domain.Address, policy *domain.ExtendedPolicy) cardData {
	data := cardData{
		Pan:        card.Number,
		ExpiryDate: FormatDate(card.Month, card.Year),
	}

	if card.UsesIssueDetails() {
		data.IssueNumber = strings.TrimSpace(card.IssueNumber)
		if card.HasStartDate() {
			data.StartDate = FormatDate(card.StartMonth, card.StartYear)
		}
	}

	avs := &cv2Avs{}
	if card.HasVerificationValue() {
		avs.CV2 = card.VerificationValue
	}
	if address != nil {
		avs.StreetAddress1 = strings.TrimSpace(address.Address1)
		avs.StreetAddress2 = strings.TrimSpace(address.Address2)
		avs.StreetAddress3 = strings.TrimSpace(address.Address3)
		avs.StreetAddress4 = strings.TrimSpace(address.Address4)
		avs.Postcode = strings.TrimSpace(address.Postcode)
	}
	if policy != nil {
		avs.ExtendedPolicy = &extendedPolicy{
			CV2:      toPolicyRule(policy.CV2),
			Postcode: toPolicyRule(policy.Postcode),
			Address:  toPolicyRule(policy.Address),
		}
	}
	if !avs.empty() {
		data.Cv2Avs = avs
	}
	return data
}

func toPolicyRule(r domain.PolicyRule) policyRule {
	return policyRule{
		NotProvided:  string(r.NotProvided),
		NotChecked:   string(r.NotChecked),
		Matched:      string(r.Matched),
		NotMatched:   string(r.NotMatched),
		PartialMatch: string(r.PartialMatch),
	}
}

// fraudData renders the fraud screening block, or nil when it would be empty.
func (b *Builder) fraudData(money vo.Money, opts domain.Options) *the3rdMan {
	block := &the3rdMan{
		Type:                fraudRealtime,
		CustomerInformation: fraudCustomerInformation(opts.CustomerInformation),
		BillingAddress:      fraudAddressFrom(opts.BillingAddress),
		DeliveryAddress:     fraudAddressFrom(opts.DeliveryAddress),
	}

	if len(opts.OrderLines) > 0 {
		currency := b.resolveCurrency(money, opts)
		lines := make([]product, 0, len(opts.OrderLines))
		for _, line := range opts.OrderLines {
			lines = append(lines, productFrom(line, currency))
		}
		block.OrderInformation = &orderInformation{
			Products: products{Count: len(lines), Product: lines},
		}
	}

	if block.CustomerInformation == nil && block.BillingAddress == nil &&
		block.DeliveryAddress == nil && block.OrderInformation == nil {
		return nil
	}
	return block
}

func fraudCustomerInformation(info *domain.CustomerInformation) *fraudCustomer {
	if info == nil {
		return nil
	}
	c := fraudCustomer{
		OrderNumber:       strings.TrimSpace(info.OrderNumber),
		CustomerReference: strings.TrimSpace(info.CustomerReference),
		Forename:          strings.TrimSpace(info.Forename),
		Surname:           strings.TrimSpace(info.Surname),
		DeliveryForename:  strings.TrimSpace(info.DeliveryForename),
		DeliverySurname:   strings.TrimSpace(info.DeliverySurname),
		Telephone:         strings.TrimSpace(info.Telephone),
		Email:             strings.TrimSpace(info.Email),
		IPAddress:         strings.TrimSpace(info.IPAddress),
	}
	if c == (fraudCustomer{}) {
		return nil
	}
	return &c
}

func fraudAddressFrom(address *domain.Address) *fraudAddress {
	if address == nil {
		return nil
	}
	a := fraudAddress{
		StreetAddress1: strings.TrimSpace(address.Address1),
		StreetAddress2: strings.TrimSpace(address.Address2),
		StreetAddress3: strings.TrimSpace(address.Address3),
		StreetAddress4: strings.TrimSpace(address.Address4),
		City:           strings.TrimSpace(address.City),
		County:         strings.TrimSpace(address.County),
		Postcode:       strings.TrimSpace(address.Postcode),
		Country:        strings.TrimSpace(address.Country),
	}
	if a == (fraudAddress{}) {
		return nil
	}
	return &a
}

func productFrom(line domain.OrderLine, currency vo.Currency) product {
	p := product{
		Code:            strings.TrimSpace(line.Code),
		Description:     strings.TrimSpace(line.Description),
		ProductID:       strings.TrimSpace(line.ProductID),
		ProductCategory: strings.TrimSpace(line.ProductCategory),
		ProductType:     strings.TrimSpace(line.ProductType),
	}
	if line.Quantity > 0 {
		p.Quantity = strconv.Itoa(line.Quantity)
	}
	if line.Price != 0 {
		p.Price = vo.New(line.Price, currency).Format(currency)
	}
	return p
}

func render(doc requestDocument) (string, error) {
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding request document: %w", err)
	}
	return xml.Header + string(out), nil
}
