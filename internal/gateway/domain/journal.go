package domain

import (
	"context"
	"time"

	vo "datacash/internal/common/value_objects"
)

// Record is the journal entry for one completed gateway round trip.
// Card data is never journaled.
type Record struct {
	ID             RecordID
	IdempotencyKey string
	Kind           TransactionKind
	OrderID        string
	Amount         *vo.Money
	Success        bool
	Status         string
	Message        string
	Authorization  string
	Test           bool
	CreatedAt      time.Time
}

// NewRecord captures a gateway response for the journal.
func NewRecord(kind TransactionKind, orderID string, amount *vo.Money, resp *Response, idempotencyKey string, now time.Time) *Record {
	return &Record{
		ID:             NewRecordID(),
		IdempotencyKey: idempotencyKey,
		Kind:           kind,
		OrderID:        orderID,
		Amount:         amount,
		Success:        resp.Success,
		Status:         resp.Status(),
		Message:        resp.Message,
		Authorization:  resp.Authorization,
		Test:           resp.Test,
		CreatedAt:      now.UTC(),
	}
}

// Response rebuilds the caller-facing result from a journal entry.
// Only the status and reason fields survive in Params.
func (r *Record) Response() *Response {
	params := map[string]string{}
	if r.Status != "" {
		params["status"] = r.Status
	}
	if r.Message != "" {
		params["reason"] = r.Message
	}
	return &Response{
		Success:       r.Success,
		Message:       r.Message,
		Params:        params,
		Authorization: r.Authorization,
		Test:          r.Test,
	}
}

// Journal persists gateway outcomes.
type Journal interface {
	// Append stores a record. Records are immutable once appended.
	Append(ctx context.Context, record *Record) error
	// FindByID retrieves a record. Returns ErrTransactionNotFound when missing.
	FindByID(ctx context.Context, id RecordID) (*Record, error)
	// FindByIdempotencyKey returns the record stored under key, or (nil, nil) when none exists.
	FindByIdempotencyKey(ctx context.Context, key string) (*Record, error)
}
