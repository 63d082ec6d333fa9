package memory

import (
	"context"
	"sync"

	"datacash/internal/gateway/domain"
)

// Journal implements domain.Journal in memory. It backs tests and the
// default JOURNAL_BACKEND=memory deployment.
// Concurrency: all access is guarded by a mutex.
type Journal struct {
	mu             sync.RWMutex
	records        map[domain.RecordID]*domain.Record
	idempotencyKey map[string]domain.RecordID
}

// NewJournal creates an empty in-memory Journal.
func NewJournal() *Journal {
	return &Journal{
		records:        make(map[domain.RecordID]*domain.Record),
		idempotencyKey: make(map[string]domain.RecordID),
	}
}

// Append stores a copy of record.
func (j *Journal) Append(ctx context.Context, record *domain.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if record.IdempotencyKey != "" {
		if _, exists := j.idempotencyKey[record.IdempotencyKey]; exists {
			return domain.ErrDuplicateIdempotencyKey
		}
		j.idempotencyKey[record.IdempotencyKey] = record.ID
	}

	stored := *record
	j.records[record.ID] = &stored
	return nil
}

// FindByID retrieves a record by its ID.
func (j *Journal) FindByID(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	record, ok := j.records[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	found := *record
	return &found, nil
}

// FindByIdempotencyKey returns (nil, nil) when no record was stored under key.
func (j *Journal) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	id, ok := j.idempotencyKey[key]
	if !ok {
		return nil, nil
	}
	found := *j.records[id]
	return &found, nil
}

// Len returns the number of stored records.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.records)
}

// Verify interface implementation.
var _ domain.Journal = (*Journal)(nil)
