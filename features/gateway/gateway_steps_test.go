package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cucumber/godog"

	vo "datacash/internal/common/value_objects"
	"datacash/internal/gateway/application"
	"datacash/internal/gateway/domain"
	"datacash/internal/gateway/infrastructure/datacash"
	"datacash/internal/gateway/infrastructure/memory"
)

const reference = "4400200050664928"

// scriptedTransport replies with a canned document and keeps what was posted.
type scriptedTransport struct {
	mu     sync.Mutex
	reply  string
	err    error
	urls   []string
	bodies []string
}

func (t *scriptedTransport) Post(ctx context.Context, url, body string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.urls = append(t.urls, url)
	t.bodies = append(t.bodies, body)
	return t.reply, t.err
}

type gatewayState struct {
	ctx       context.Context
	cfg       datacash.Config
	transport *scriptedTransport
	journal   *memory.Journal
	service   *application.Gateway
	customer  *domain.CustomerInformation
	lastResp  *application.TransactionResponse
	lastError error
}

func InitializeGatewayScenario(ctx *godog.ScenarioContext) {
	state := &gatewayState{
		ctx:       context.Background(),
		transport: &scriptedTransport{},
		journal:   memory.NewJournal(),
	}

	// Background steps
	ctx.Step(`^a DataCash account in (test|live) mode$`, state.aDataCashAccountInMode)
	ctx.Step(`^fraud services are enabled$`, state.fraudServicesAreEnabled)
	ctx.Step(`^the customer "([^"]*)" "([^"]*)" with email "([^"]*)"$`, state.theCustomer)
	ctx.Step(`^the gateway answers with status "([^"]*)" and reason "([^"]*)"$`, state.theGatewayAnswers)
	ctx.Step(`^the gateway answers with continuous authority reference "([^"]*)"$`, state.theGatewayAnswersWithCAReference)
	ctx.Step(`^the gateway is unreachable$`, state.theGatewayIsUnreachable)

	// Operations
	ctx.Step(`^I purchase (\d+) pence with a visa card for order "([^"]*)"$`, state.iPurchaseWithCard)
	ctx.Step(`^I authorize (\d+) pence with a visa card for order "([^"]*)"$`, state.iAuthorizeWithCard)
	ctx.Step(`^I authorize (\d+) pence with a visa card for order "([^"]*)" and set up continuous authority$`, state.iAuthorizeWithContinuousAuthoritySetup)
	ctx.Step(`^I authorize (\d+) pence with the authorization "([^"]*)" for order "([^"]*)"$`, state.iAuthorizeWithToken)
	ctx.Step(`^I capture (\d+) pence against "([^"]*)" for order "([^"]*)"$`, state.iCapture)
	ctx.Step(`^I void "([^"]*)"$`, state.iVoid)
	ctx.Step(`^I refund (\d+) pence against "([^"]*)"$`, state.iRefund)
	ctx.Step(`^I refund the full amount against "([^"]*)"$`, state.iRefundInFull)
	ctx.Step(`^I credit (\d+) pence to a visa card for order "([^"]*)"$`, state.iCreditCard)
	ctx.Step(`^I purchase (\d+) pence with a visa card for order "([^"]*)" with idempotency key "([^"]*)"$`, state.iPurchaseWithIdempotencyKey)

	// Outcomes
	ctx.Step(`^the transaction should succeed$`, state.theTransactionShouldSucceed)
	ctx.Step(`^the transaction should fail with message "([^"]*)"$`, state.theTransactionShouldFailWithMessage)
	ctx.Step(`^the authorization should be "([^"]*)"$`, state.theAuthorizationShouldBe)
	ctx.Step(`^the request should be rejected with "([^"]*)"$`, state.theRequestShouldBeRejectedWith)
	ctx.Step(`^the request should fail with a transport error$`, state.theRequestShouldFailWithATransportError)
	ctx.Step(`^the request should have been posted to "([^"]*)"$`, state.theRequestShouldHaveBeenPostedTo)
	ctx.Step(`^the sent document should contain '([^']*)'$`, state.theSentDocumentShouldContain)
	ctx.Step(`^the sent document should not contain '([^']*)'$`, state.theSentDocumentShouldNotContain)
	ctx.Step(`^no request should have been sent$`, state.noRequestShouldHaveBeenSent)
	ctx.Step(`^(\d+) requests? should have been sent$`, state.requestsShouldHaveBeenSent)
	ctx.Step(`^the journal should hold (\d+) transactions?$`, state.theJournalShouldHold)
	ctx.Step(`^the result should be a replay$`, state.theResultShouldBeAReplay)
}

func (s *gatewayState) aDataCashAccountInMode(mode string) error {
	s.cfg = datacash.Config{
		Client:   "99000001",
		Password: "boomboom",
		Test:     mode == "test",
	}
	return nil
}

func (s *gatewayState) fraudServicesAreEnabled() error {
	s.cfg.FraudServices = true
	return nil
}

func (s *gatewayState) theCustomer(forename, surname, email string) error {
	s.customer = &domain.CustomerInformation{Forename: forename, Surname: surname, Email: email}
	return nil
}

func (s *gatewayState) theGatewayAnswers(status, reason string) error {
	s.transport.reply = fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <CardTxn><authcode>123456789</authcode></CardTxn>
  <datacash_reference>%s</datacash_reference>
  <reason>%s</reason>
  <status>%s</status>
</Response>`, reference, reason, status)
	return nil
}

func (s *gatewayState) theGatewayAnswersWithCAReference(caReference string) error {
	s.transport.reply = fmt.Sprintf(`<Response>
  <ContAuthTxn><ca_reference>%s</ca_reference></ContAuthTxn>
  <CardTxn><authcode>123456789</authcode></CardTxn>
  <datacash_reference>%s</datacash_reference>
  <reason>ACCEPTED</reason>
  <status>1</status>
</Response>`, caReference, reference)
	return nil
}

func (s *gatewayState) theGatewayIsUnreachable() error {
	s.transport.err = errors.New("dial tcp: i/o timeout")
	return nil
}

func (s *gatewayState) gateway() *application.Gateway {
	if s.service == nil {
		s.service = application.NewGateway(s.cfg, s.transport, s.journal)
	}
	return s.service
}

func visaCard() *domain.Card {
	return &domain.Card{
		Number:            "4444333322221111",
		Month:             12,
		Year:              2030,
		VerificationValue: "444",
		Brand:             domain.BrandVisa,
	}
}

func (s *gatewayState) options(orderID string) domain.Options {
	return domain.Options{
		OrderID:             orderID,
		BillingAddress:      &domain.Address{Address1: "1 High Street", Postcode: "AB1 2CD"},
		CustomerInformation: s.customer,
	}
}

func (s *gatewayState) record(resp *application.TransactionResponse, err error) error {
	s.lastResp, s.lastError = resp, err
	return nil
}

func (s *gatewayState) iPurchaseWithCard(pence int, orderID string) error {
	return s.record(s.gateway().Purchase(s.ctx, application.PaymentRequest{
		Amount:  vo.New(int64(pence), ""),
		Card:    visaCard(),
		Options: s.options(orderID),
	}))
}

func (s *gatewayState) iPurchaseWithIdempotencyKey(pence int, orderID, key string) error {
	return s.record(s.gateway().Purchase(s.ctx, application.PaymentRequest{
		IdempotencyKey: key,
		Amount:         vo.New(int64(pence), ""),
		Card:           visaCard(),
		Options:        s.options(orderID),
	}))
}

func (s *gatewayState) iAuthorizeWithCard(pence int, orderID string) error {
	return s.record(s.gateway().Authorize(s.ctx, application.PaymentRequest{
		Amount:  vo.New(int64(pence), ""),
		Card:    visaCard(),
		Options: s.options(orderID),
	}))
}

func (s *gatewayState) iAuthorizeWithContinuousAuthoritySetup(pence int, orderID string) error {
	opts := s.options(orderID)
	opts.SetUpContinuousAuthority = true
	return s.record(s.gateway().Authorize(s.ctx, application.PaymentRequest{
		Amount:  vo.New(int64(pence), ""),
		Card:    visaCard(),
		Options: opts,
	}))
}

func (s *gatewayState) iAuthorizeWithToken(pence int, authorization, orderID string) error {
	return s.record(s.gateway().Authorize(s.ctx, application.PaymentRequest{
		Amount:        vo.New(int64(pence), ""),
		Authorization: authorization,
		Options:       s.options(orderID),
	}))
}

func (s *gatewayState) iCapture(pence int, authorization, orderID string) error {
	return s.record(s.gateway().Capture(s.ctx, application.CaptureRequest{
		Amount:        vo.New(int64(pence), ""),
		Authorization: authorization,
		Options:       domain.Options{OrderID: orderID},
	}))
}

func (s *gatewayState) iVoid(authorization string) error {
	return s.record(s.gateway().Void(s.ctx, application.VoidRequest{Authorization: authorization}))
}

func (s *gatewayState) iRefund(pence int, authorization string) error {
	amount := vo.New(int64(pence), "")
	return s.record(s.gateway().Refund(s.ctx, application.RefundRequest{Amount: &amount, Authorization: authorization}))
}

func (s *gatewayState) iRefundInFull(authorization string) error {
	return s.record(s.gateway().Refund(s.ctx, application.RefundRequest{Authorization: authorization}))
}

func (s *gatewayState) iCreditCard(pence int, orderID string) error {
	return s.record(s.gateway().Credit(s.ctx, application.CreditRequest{
		Amount:  vo.New(int64(pence), ""),
		Card:    visaCard(),
		Options: s.options(orderID),
	}))
}

func (s *gatewayState) requireResponse() error {
	if s.lastError != nil {
		return fmt.Errorf("expected a gateway response, got error: %w", s.lastError)
	}
	if s.lastResp == nil {
		return fmt.Errorf("no response recorded")
	}
	return nil
}

func (s *gatewayState) theTransactionShouldSucceed() error {
	if err := s.requireResponse(); err != nil {
		return err
	}
	if !s.lastResp.Success {
		return fmt.Errorf("expected success, got failure %q", s.lastResp.Message)
	}
	return nil
}

func (s *gatewayState) theTransactionShouldFailWithMessage(message string) error {
	if err := s.requireResponse(); err != nil {
		return err
	}
	if s.lastResp.Success {
		return fmt.Errorf("expected failure, got success")
	}
	if s.lastResp.Message != message {
		return fmt.Errorf("expected message %q, got %q", message, s.lastResp.Message)
	}
	return nil
}

func (s *gatewayState) theAuthorizationShouldBe(authorization string) error {
	if err := s.requireResponse(); err != nil {
		return err
	}
	if s.lastResp.Authorization != authorization {
		return fmt.Errorf("expected authorization %q, got %q", authorization, s.lastResp.Authorization)
	}
	return nil
}

func (s *gatewayState) theRequestShouldBeRejectedWith(message string) error {
	if s.lastError == nil {
		return fmt.Errorf("expected the request to be rejected")
	}
	if !domain.IsPrecondition(s.lastError) {
		return fmt.Errorf("expected a precondition error, got %v", s.lastError)
	}
	if !strings.Contains(s.lastError.Error(), message) {
		return fmt.Errorf("expected error containing %q, got %q", message, s.lastError.Error())
	}
	return nil
}

func (s *gatewayState) theRequestShouldFailWithATransportError() error {
	if !errors.Is(s.lastError, domain.ErrTransport) {
		return fmt.Errorf("expected transport error, got %v", s.lastError)
	}
	return nil
}

func (s *gatewayState) lastBody() (string, error) {
	s.transport.mu.Lock()
	defer s.transport.mu.Unlock()
	if len(s.transport.bodies) == 0 {
		return "", fmt.Errorf("no request was sent")
	}
	return s.transport.bodies[len(s.transport.bodies)-1], nil
}

func (s *gatewayState) theRequestShouldHaveBeenPostedTo(url string) error {
	s.transport.mu.Lock()
	defer s.transport.mu.Unlock()
	if len(s.transport.urls) == 0 {
		return fmt.Errorf("no request was sent")
	}
	if got := s.transport.urls[len(s.transport.urls)-1]; got != url {
		return fmt.Errorf("expected request to %s, got %s", url, got)
	}
	return nil
}

func (s *gatewayState) theSentDocumentShouldContain(fragment string) error {
	body, err := s.lastBody()
	if err != nil {
		return err
	}
	if !strings.Contains(body, fragment) {
		return fmt.Errorf("expected document to contain %q:\n%s", fragment, body)
	}
	return nil
}

func (s *gatewayState) theSentDocumentShouldNotContain(fragment string) error {
	body, err := s.lastBody()
	if err != nil {
		return err
	}
	if strings.Contains(body, fragment) {
		return fmt.Errorf("expected document not to contain %q:\n%s", fragment, body)
	}
	return nil
}

func (s *gatewayState) noRequestShouldHaveBeenSent() error {
	return s.requestsShouldHaveBeenSent(0)
}

func (s *gatewayState) requestsShouldHaveBeenSent(count int) error {
	s.transport.mu.Lock()
	defer s.transport.mu.Unlock()
	if len(s.transport.bodies) != count {
		return fmt.Errorf("expected %d requests, got %d", count, len(s.transport.bodies))
	}
	return nil
}

func (s *gatewayState) theJournalShouldHold(count int) error {
	if got := s.journal.Len(); got != count {
		return fmt.Errorf("expected %d journaled transactions, got %d", count, got)
	}
	return nil
}

func (s *gatewayState) theResultShouldBeAReplay() error {
	if err := s.requireResponse(); err != nil {
		return err
	}
	if !s.lastResp.Replayed {
		return fmt.Errorf("expected a replayed result")
	}
	return nil
}
