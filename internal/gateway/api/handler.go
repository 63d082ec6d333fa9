package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"datacash/internal/common/logging"
	vo "datacash/internal/common/value_objects"
	"datacash/internal/gateway/application"
	"datacash/internal/gateway/domain"
)

// IdempotencyKeyHeader names the optional request header used to replay results.
const IdempotencyKeyHeader = "Idempotency-Key"

// Handler implements the HTTP handlers for the gateway API.
type Handler struct {
	service *application.Gateway
}

// NewHandler creates a new Handler.
func NewHandler(service *application.Gateway) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the gateway API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /purchases", h.Purchase)
	mux.HandleFunc("POST /authorizations", h.Authorize)
	mux.HandleFunc("POST /captures", h.Capture)
	mux.HandleFunc("POST /voids", h.Void)
	mux.HandleFunc("POST /refunds", h.Refund)
	mux.HandleFunc("POST /credits", h.Credit)
	mux.HandleFunc("GET /transactions/{id}", h.GetTransaction)
}

// PaymentRequest is the JSON body for purchases, authorizations and credits.
type PaymentRequest struct {
	Amount        vo.Money       `json:"amount"`
	Card          *domain.Card   `json:"card,omitempty"`
	Authorization string         `json:"authorization,omitempty"`
	Options       domain.Options `json:"options"`
}

// CaptureRequest is the JSON body for captures.
type CaptureRequest struct {
	Amount        vo.Money       `json:"amount"`
	Authorization string         `json:"authorization"`
	Options       domain.Options `json:"options"`
}

// VoidRequest is the JSON body for voids.
type VoidRequest struct {
	Authorization string         `json:"authorization"`
	Options       domain.Options `json:"options"`
}

// RefundRequest is the JSON body for reference refunds. Omit amount to refund in full.
type RefundRequest struct {
	Amount        *vo.Money `json:"amount,omitempty"`
	Authorization string    `json:"authorization"`
}

// Purchase handles POST /purchases.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	h.payment(w, r, h.service.Purchase)
}

// Authorize handles POST /authorizations.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	h.payment(w, r, h.service.Authorize)
}

func (h *Handler) payment(w http.ResponseWriter, r *http.Request, op func(context.Context, application.PaymentRequest) (*application.TransactionResponse, error)) {
	ctx, key := idempotencyContext(r)

	var req PaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := normalizeCurrencies(&req.Amount, &req.Options); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid currency", err)
		return
	}

	resp, err := op(ctx, application.PaymentRequest{
		IdempotencyKey: key,
		Amount:         req.Amount,
		Card:           req.Card,
		Authorization:  req.Authorization,
		Options:        req.Options,
	})
	h.respond(ctx, w, resp, err)
}

// Capture handles POST /captures.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	ctx, key := idempotencyContext(r)

	var req CaptureRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := normalizeCurrencies(&req.Amount, &req.Options); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid currency", err)
		return
	}

	resp, err := h.service.Capture(ctx, application.CaptureRequest{
		IdempotencyKey: key,
		Amount:         req.Amount,
		Authorization:  req.Authorization,
		Options:        req.Options,
	})
	h.respond(ctx, w, resp, err)
}

// Void handles POST /voids.
func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	ctx, key := idempotencyContext(r)

	var req VoidRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Void(ctx, application.VoidRequest{
		IdempotencyKey: key,
		Authorization:  req.Authorization,
		Options:        req.Options,
	})
	h.respond(ctx, w, resp, err)
}

// Refund handles POST /refunds.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	ctx, key := idempotencyContext(r)

	var req RefundRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Amount != nil {
		if err := normalizeCurrencies(req.Amount, nil); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid currency", err)
			return
		}
	}

	resp, err := h.service.Refund(ctx, application.RefundRequest{
		IdempotencyKey: key,
		Amount:         req.Amount,
		Authorization:  req.Authorization,
	})
	h.respond(ctx, w, resp, err)
}

// Credit handles POST /credits.
func (h *Handler) Credit(w http.ResponseWriter, r *http.Request) {
	ctx, key := idempotencyContext(r)

	var req PaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := normalizeCurrencies(&req.Amount, &req.Options); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid currency", err)
		return
	}

	resp, err := h.service.Credit(ctx, application.CreditRequest{
		IdempotencyKey: key,
		Amount:         req.Amount,
		Card:           req.Card,
		Authorization:  req.Authorization,
		Options:        req.Options,
	})
	h.respond(ctx, w, resp, err)
}

// GetTransaction handles GET /transactions/{id}.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRecordID(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid transaction_id", err)
		return
	}

	resp, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		h.handleGatewayError(r.Context(), w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// idempotencyContext reads the Idempotency-Key header and adds it to the logging context.
func idempotencyContext(r *http.Request) (context.Context, string) {
	key := r.Header.Get(IdempotencyKeyHeader)
	return logging.WithIdempotencyKey(r.Context(), key), key
}

// normalizeCurrencies validates and upper-cases the currency codes a caller sent.
func normalizeCurrencies(money *vo.Money, opts *domain.Options) error {
	if !money.Currency.IsEmpty() {
		currency, err := vo.ParseCurrency(money.Currency.String())
		if err != nil {
			return err
		}
		money.Currency = currency
	}
	if opts != nil && !opts.Currency.IsEmpty() {
		currency, err := vo.ParseCurrency(opts.Currency.String())
		if err != nil {
			return err
		}
		opts.Currency = currency
	}
	return nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

// respond writes the gateway outcome. Declined transactions are still 200.
func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, resp *application.TransactionResponse, err error) {
	if err != nil {
		h.handleGatewayError(ctx, w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleGatewayError maps domain errors to HTTP responses.
func (h *Handler) handleGatewayError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case domain.IsPrecondition(err):
		h.writeError(w, http.StatusBadRequest, "invalid gateway request", err)
	case errors.Is(err, domain.ErrTransport):
		h.writeError(w, http.StatusBadGateway, "payment gateway unavailable", nil)
	case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		h.writeError(w, http.StatusConflict, "idempotency key already used for another operation", nil)
	case errors.Is(err, domain.ErrTransactionNotFound):
		h.writeError(w, http.StatusNotFound, "transaction not found", nil)
	case errors.Is(err, context.DeadlineExceeded):
		h.writeError(w, http.StatusGatewayTimeout, "request timed out", nil)
	default:
		logging.ErrorContext(ctx, "Unhandled error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError writes an error response.
func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Message = err.Error()
	}
	h.writeJSON(w, status, resp)
}
