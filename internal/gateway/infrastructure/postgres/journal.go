package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	vo "datacash/internal/common/value_objects"
	"datacash/internal/gateway/domain"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const insertTransaction = `
INSERT INTO gateway.transactions (
	id, idempotency_key, kind, order_id, amount_cents, currency,
	success, status, message, authorization_token, test, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const selectTransaction = `
SELECT id, idempotency_key, kind, order_id, amount_cents, currency,
	success, status, message, authorization_token, test, created_at
FROM gateway.transactions`

// Journal implements domain.Journal on PostgreSQL.
type Journal struct {
	db Executor
}

// NewJournal creates a Journal over a pool or transaction.
func NewJournal(db Executor) *Journal {
	return &Journal{db: db}
}

// Append inserts a record. A second record under the same idempotency key
// fails with domain.ErrDuplicateIdempotencyKey.
func (j *Journal) Append(ctx context.Context, record *domain.Record) error {
	var cents pgtype.Int8
	var currency pgtype.Text
	if record.Amount != nil {
		cents = pgtype.Int8{Int64: record.Amount.Cents, Valid: true}
		currency = nullableText(record.Amount.Currency.String())
	}

	_, err := j.db.Exec(ctx, insertTransaction,
		uuid.UUID(record.ID),
		nullableText(record.IdempotencyKey),
		record.Kind.String(),
		record.OrderID,
		cents,
		currency,
		record.Success,
		record.Status,
		record.Message,
		record.Authorization,
		record.Test,
		timeToTimestamptz(record.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateIdempotencyKey, record.IdempotencyKey)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// FindByID retrieves a record by its ID.
func (j *Journal) FindByID(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	row := j.db.QueryRow(ctx, selectTransaction+` WHERE id = $1`, uuid.UUID(id))
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return record, err
}

// FindByIdempotencyKey returns (nil, nil) when no record was stored under key.
func (j *Journal) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Record, error) {
	if key == "" {
		return nil, nil
	}
	row := j.db.QueryRow(ctx, selectTransaction+` WHERE idempotency_key = $1`, key)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return record, err
}

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var (
		id             uuid.UUID
		idempotencyKey pgtype.Text
		kind           string
		cents          pgtype.Int8
		currency       pgtype.Text
		createdAt      pgtype.Timestamptz
		record         domain.Record
	)
	err := row.Scan(
		&id,
		&idempotencyKey,
		&kind,
		&record.OrderID,
		&cents,
		&currency,
		&record.Success,
		&record.Status,
		&record.Message,
		&record.Authorization,
		&record.Test,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.Kind = domain.TransactionKind(kind)
	if !record.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrCorruptData, kind)
	}
	record.CreatedAt, err = timestamptzToTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid created_at: %v", domain.ErrCorruptData, err)
	}

	record.ID = domain.RecordID(id)
	record.IdempotencyKey = idempotencyKey.String
	if cents.Valid {
		amount := vo.New(cents.Int64, vo.Currency(currency.String))
		record.Amount = &amount
	}
	return &record, nil
}

// Verify interface implementation.
var _ domain.Journal = (*Journal)(nil)
