package valueobjects

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEmptyID is returned when parsing an empty string as an ID.
var ErrEmptyID = errors.New("id cannot be empty")

// CorrelationID tracks a request across service boundaries.
// It is a struct wrapper to prevent accidental type confusion at compile time.
type CorrelationID struct {
	value string
}

// ParseCorrelationID creates a CorrelationID from a string, validating it is non-empty.
func ParseCorrelationID(s string) (CorrelationID, error) {
	if s == "" {
		return CorrelationID{}, fmt.Errorf("correlation_id: %w", ErrEmptyID)
	}
	return CorrelationID{value: s}, nil
}

// NewCorrelationID generates a new unique CorrelationID.
func NewCorrelationID() CorrelationID {
	return CorrelationID{value: uuid.NewString()}
}

// String returns the string representation of CorrelationID.
func (c CorrelationID) String() string {
	return c.value
}

// IsEmpty checks if the CorrelationID is empty.
func (c CorrelationID) IsEmpty() bool {
	return c.value == ""
}
