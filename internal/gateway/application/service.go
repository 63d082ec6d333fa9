package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"datacash/internal/common/logging"
	"datacash/internal/common/metrics"
	vo "datacash/internal/common/value_objects"
	"datacash/internal/gateway/domain"
	"datacash/internal/gateway/infrastructure/datacash"
)

// Gateway is the application service for DataCash transactions.
//
// Each operation builds a request document, posts it through the transport,
// parses the reply and appends the outcome to the journal. A request that
// carries an idempotency key already present in the journal is answered from
// the journal without contacting the gateway. Concurrent requests under one key
// share a single round trip.
type Gateway struct {
	cfg       datacash.Config
	builder   *datacash.Builder
	transport domain.Transport
	journal   domain.Journal
	inflight  singleflight.Group
	now       func() time.Time
}

// NewGateway creates a Gateway service.
func NewGateway(cfg datacash.Config, transport domain.Transport, journal domain.Journal) *Gateway {
	return &Gateway{
		cfg:       cfg,
		builder:   datacash.NewBuilder(cfg),
		transport: transport,
		journal:   journal,
		now:       time.Now,
	}
}

// PaymentRequest asks for a purchase or pre-authorization. Exactly one of Card
// or Authorization is expected; Card wins when both are set.
type PaymentRequest struct {
	IdempotencyKey string
	Amount         vo.Money
	Card           *domain.Card
	Authorization  string
	Options        domain.Options
}

// CaptureRequest fulfils a previous pre-authorization.
type CaptureRequest struct {
	IdempotencyKey string
	Amount         vo.Money
	Authorization  string
	Options        domain.Options
}

// VoidRequest cancels a previous transaction.
type VoidRequest struct {
	IdempotencyKey string
	Authorization  string
	Options        domain.Options
}

// RefundRequest refunds a previous transaction. A nil Amount refunds in full.
type RefundRequest struct {
	IdempotencyKey string
	Amount         *vo.Money
	Authorization  string
}

// CreditRequest pays money to a card. When only Authorization is given the
// request is sent as a reference refund instead, in full when Amount is zero.
type CreditRequest struct {
	IdempotencyKey string
	Amount         vo.Money
	Card           *domain.Card
	Authorization  string
	Options        domain.Options
}

// TransactionResponse is the outcome of a gateway operation.
type TransactionResponse struct {
	TransactionID string            `json:"transaction_id,omitempty"`
	Kind          string            `json:"kind"`
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	Authorization string            `json:"authorization"`
	Params        map[string]string `json:"params"`
	Test          bool              `json:"test"`
	Replayed      bool              `json:"replayed,omitempty"`
}

// TransactionDetails is a journaled transaction as returned by GetTransaction.
type TransactionDetails struct {
	TransactionResponse
	OrderID   string    `json:"order_id,omitempty"`
	Amount    *vo.Money `json:"amount,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// call describes one gateway round trip.
type call struct {
	kind           domain.TransactionKind
	idempotencyKey string
	orderID        string
	amount         *vo.Money
	build          func() (string, error)
}

// Purchase authorizes and captures in a single step.
func (g *Gateway) Purchase(ctx context.Context, req PaymentRequest) (*TransactionResponse, error) {
	return g.payment(ctx, domain.KindAuth, req)
}

// Authorize reserves funds for a later Capture.
func (g *Gateway) Authorize(ctx context.Context, req PaymentRequest) (*TransactionResponse, error) {
	return g.payment(ctx, domain.KindPre, req)
}

func (g *Gateway) payment(ctx context.Context, kind domain.TransactionKind, req PaymentRequest) (*TransactionResponse, error) {
	amount := req.Amount
	return g.execute(ctx, call{
		kind:           kind,
		idempotencyKey: req.IdempotencyKey,
		orderID:        req.Options.OrderID,
		amount:         &amount,
		build: func() (string, error) {
			if err := requirePositive(req.Amount); err != nil {
				return "", err
			}
			source, err := paymentSource(req.Card, req.Authorization)
			if err != nil {
				return "", err
			}
			if req.Card != nil {
				logging.DebugContext(ctx, "Building card transaction",
					"kind", kind.String(),
					"card_last4", req.Card.Last4(),
				)
			}
			if kind == domain.KindPre {
				return g.builder.Authorize(req.Amount, source, req.Options)
			}
			return g.builder.Purchase(req.Amount, source, req.Options)
		},
	})
}

// Capture fulfils a pre-authorization.
func (g *Gateway) Capture(ctx context.Context, req CaptureRequest) (*TransactionResponse, error) {
	amount := req.Amount
	return g.execute(ctx, call{
		kind:           domain.KindFulfill,
		idempotencyKey: req.IdempotencyKey,
		orderID:        req.Options.OrderID,
		amount:         &amount,
		build: func() (string, error) {
			if err := requirePositive(req.Amount); err != nil {
				return "", err
			}
			token, err := referenceToken(req.Authorization)
			if err != nil {
				return "", err
			}
			return g.builder.Capture(req.Amount, token, req.Options)
		},
	})
}

// Void cancels a transaction that has not yet settled.
func (g *Gateway) Void(ctx context.Context, req VoidRequest) (*TransactionResponse, error) {
	return g.execute(ctx, call{
		kind:           domain.KindCancel,
		idempotencyKey: req.IdempotencyKey,
		orderID:        req.Options.OrderID,
		build: func() (string, error) {
			token, err := referenceToken(req.Authorization)
			if err != nil {
				return "", err
			}
			return g.builder.Void(token, req.Options)
		},
	})
}

// Refund returns money against a previous transaction.
func (g *Gateway) Refund(ctx context.Context, req RefundRequest) (*TransactionResponse, error) {
	return g.execute(ctx, call{
		kind:           domain.KindTxnRefund,
		idempotencyKey: req.IdempotencyKey,
		amount:         req.Amount,
		build: func() (string, error) {
			if req.Amount != nil {
				if err := requirePositive(*req.Amount); err != nil {
					return "", err
				}
			}
			token, err := referenceToken(req.Authorization)
			if err != nil {
				return "", err
			}
			return g.builder.Refund(req.Amount, token)
		},
	})
}

// Credit pays money to a card, or falls back to a reference refund when the
// caller passes an authorization instead of a card.
func (g *Gateway) Credit(ctx context.Context, req CreditRequest) (*TransactionResponse, error) {
	if req.Card == nil && req.Authorization != "" {
		logging.WarnContext(ctx, "Credit with an authorization is sent as a reference refund")
		var amount *vo.Money
		if req.Amount.Cents != 0 {
			amount = &req.Amount
		}
		return g.Refund(ctx, RefundRequest{
			IdempotencyKey: req.IdempotencyKey,
			Amount:         amount,
			Authorization:  req.Authorization,
		})
	}

	amount := req.Amount
	return g.execute(ctx, call{
		kind:           domain.KindRefund,
		idempotencyKey: req.IdempotencyKey,
		orderID:        req.Options.OrderID,
		amount:         &amount,
		build: func() (string, error) {
			if err := requirePositive(req.Amount); err != nil {
				return "", err
			}
			return g.builder.Credit(req.Amount, req.Card, req.Options)
		},
	})
}

// GetTransaction loads a journaled transaction.
func (g *Gateway) GetTransaction(ctx context.Context, id domain.RecordID) (*TransactionDetails, error) {
	record, err := g.journal.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TransactionDetails{
		TransactionResponse: fromRecord(record),
		OrderID:             record.OrderID,
		Amount:              record.Amount,
		CreatedAt:           record.CreatedAt,
	}, nil
}

func (g *Gateway) execute(ctx context.Context, c call) (*TransactionResponse, error) {
	if c.idempotencyKey == "" {
		return g.roundTrip(ctx, c)
	}

	// Followers of an in-flight key wait for the leader's outcome.
	leader := false
	v, err, _ := g.inflight.Do(c.idempotencyKey, func() (any, error) {
		leader = true
		return g.idempotent(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	resp := *v.(*TransactionResponse)
	if leader {
		return &resp, nil
	}
	if resp.Kind != c.kind.String() {
		return nil, fmt.Errorf("%w: key is in use for %s", domain.ErrDuplicateIdempotencyKey, resp.Kind)
	}
	if !resp.Replayed {
		metrics.RecordReplay()
		logging.InfoContext(ctx, "Sharing in-flight transaction",
			"kind", c.kind.String(),
			"transaction_id", resp.TransactionID,
		)
	}
	resp.Replayed = true
	return &resp, nil
}

// idempotent replays a journaled outcome for the call's key, or performs the
// round trip when the key is new.
func (g *Gateway) idempotent(ctx context.Context, c call) (*TransactionResponse, error) {
	existing, err := g.journal.FindByIdempotencyKey(ctx, c.idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	if existing == nil {
		return g.roundTrip(ctx, c)
	}
	if existing.Kind != c.kind {
		return nil, fmt.Errorf("%w: key was used for %s", domain.ErrDuplicateIdempotencyKey, existing.Kind)
	}

	metrics.RecordReplay()
	logging.InfoContext(ctx, "Replaying journaled transaction",
		"kind", c.kind.String(),
		"transaction_id", existing.ID.String(),
	)
	resp := fromRecord(existing)
	resp.Replayed = true
	return &resp, nil
}

func (g *Gateway) roundTrip(ctx context.Context, c call) (*TransactionResponse, error) {
	body, err := c.build()
	if err != nil {
		if domain.IsPrecondition(err) {
			metrics.RecordPreconditionFailure(c.kind.String())
			logging.WarnContext(ctx, "Gateway request rejected before sending",
				"kind", c.kind.String(),
				"order_id", c.orderID,
				"error", err,
			)
		}
		return nil, err
	}

	endpoint := g.cfg.Endpoint()
	start := g.now()
	raw, err := g.transport.Post(ctx, endpoint, body)
	elapsed := g.now().Sub(start)
	if err != nil {
		metrics.RecordGatewayCall(c.kind.String(), metrics.OutcomeTransport, "", elapsed)
		logging.ErrorContext(ctx, "Gateway transport failed",
			"kind", c.kind.String(),
			"order_id", c.orderID,
			"endpoint", endpoint,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	params, err := datacash.Parse(raw)
	if err != nil {
		logging.WarnContext(ctx, "Unparsable gateway response",
			"kind", c.kind.String(),
			"order_id", c.orderID,
			"error", err,
		)
	}
	resp := datacash.NewResponse(params, g.cfg.Test)

	outcome := metrics.OutcomeSuccess
	if !resp.Success {
		outcome = metrics.OutcomeDeclined
	}
	metrics.RecordGatewayCall(c.kind.String(), outcome, resp.Status(), elapsed)
	logging.InfoContext(ctx, "Gateway call completed",
		"kind", c.kind.String(),
		"order_id", c.orderID,
		"endpoint", endpoint,
		"status", resp.Status(),
		"success", resp.Success,
		"duration_ms", elapsed.Milliseconds(),
	)

	record := domain.NewRecord(c.kind, c.orderID, c.amount, resp, c.idempotencyKey, g.now())
	result := TransactionResponse{
		Kind:          c.kind.String(),
		Success:       resp.Success,
		Message:       resp.Message,
		Authorization: resp.Authorization,
		Params:        resp.Params,
		Test:          resp.Test,
	}

	// Journal failures are logged; the gateway result is still returned.
	if err := g.journal.Append(ctx, record); err != nil {
		if !errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
			metrics.RecordJournalFailure()
		}
		logging.ErrorContext(ctx, "Failed to journal gateway outcome",
			"kind", c.kind.String(),
			"order_id", c.orderID,
			"authorization", resp.Authorization,
			"error", err,
		)
		return &result, nil
	}

	result.TransactionID = record.ID.String()
	return &result, nil
}

func fromRecord(record *domain.Record) TransactionResponse {
	resp := record.Response()
	return TransactionResponse{
		TransactionID: record.ID.String(),
		Kind:          record.Kind.String(),
		Success:       resp.Success,
		Message:       resp.Message,
		Authorization: resp.Authorization,
		Params:        resp.Params,
		Test:          resp.Test,
	}
}

func paymentSource(card *domain.Card, authorization string) (domain.PaymentSource, error) {
	if card != nil {
		return card, nil
	}
	if authorization != "" {
		return domain.ParseAuthorizationToken(authorization), nil
	}
	return nil, fmt.Errorf("%w: card or authorization is required", domain.ErrInvalidPaymentSource)
}

func referenceToken(authorization string) (domain.AuthorizationToken, error) {
	token := domain.ParseAuthorizationToken(authorization)
	if token.Reference == "" {
		return token, fmt.Errorf("%w: authorization reference is required", domain.ErrInvalidPaymentSource)
	}
	return token, nil
}

func requirePositive(m vo.Money) error {
	if m.Cents <= 0 {
		return domain.ErrAmountRequired
	}
	return nil
}
