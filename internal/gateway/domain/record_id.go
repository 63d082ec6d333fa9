package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEmptyRecordID is returned when parsing an empty record ID.
var ErrEmptyRecordID = errors.New("transaction_id cannot be empty")

// ErrInvalidRecordID is returned when parsing an invalid UUID format.
var ErrInvalidRecordID = errors.New("transaction_id: invalid uuid format")

// RecordID uniquely identifies a journaled gateway transaction.
type RecordID uuid.UUID

// ParseRecordID creates a RecordID from a string, validating UUID format.
func ParseRecordID(s string) (RecordID, error) {
	if s == "" {
		return RecordID{}, ErrEmptyRecordID
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return RecordID{}, fmt.Errorf("%w: %s", ErrInvalidRecordID, s)
	}
	return RecordID(id), nil
}

// NewRecordID generates a new unique RecordID.
func NewRecordID() RecordID {
	return RecordID(uuid.New())
}

// String returns the string representation of RecordID.
func (id RecordID) String() string {
	return uuid.UUID(id).String()
}

// IsEmpty checks if the RecordID is the zero value.
func (id RecordID) IsEmpty() bool {
	return uuid.UUID(id) == uuid.Nil
}
