package domain

import "errors"

// Domain errors for the gateway context.
var (
	// ErrOrderIDRequired is returned when a new-transaction operation has no order_id.
	ErrOrderIDRequired = errors.New("order_id is required")

	// ErrContinuousAuthorityReferenceRequired is returned when a continuous authority
	// operation is attempted with a token that carries no ca_reference.
	ErrContinuousAuthorityReferenceRequired = errors.New("the continuous authority reference is required for continuous authority transactions")

	// ErrCustomerInformationRequired is returned when fraud services are enabled and
	// the caller supplied no customer information.
	ErrCustomerInformationRequired = errors.New("customer_information is required when fraud services are enabled")

	// ErrInvalidPaymentSource is returned when an operation receives a nil or unsupported payment source.
	ErrInvalidPaymentSource = errors.New("invalid payment source")

	// ErrInvalidPolicy is returned when a policy override carries a verdict other than accept or reject.
	ErrInvalidPolicy = errors.New("invalid extended policy verdict")

	// ErrAmountRequired is returned when an operation that moves money has no amount.
	ErrAmountRequired = errors.New("amount is required")

	// ErrTransport is returned when the request could not be delivered or the reply could not be read.
	ErrTransport = errors.New("gateway transport failure")

	// ErrTransactionNotFound is returned when a journal record cannot be found.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateIdempotencyKey is returned when a record is appended under a key already in use.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already recorded")

	// ErrCorruptData is returned when data loaded from persistence is invalid.
	ErrCorruptData = errors.New("corrupt data in database")
)

// IsPrecondition reports whether err is a caller-side usage error raised before
// any request was built or sent.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrOrderIDRequired) ||
		errors.Is(err, ErrContinuousAuthorityReferenceRequired) ||
		errors.Is(err, ErrCustomerInformationRequired) ||
		errors.Is(err, ErrInvalidPaymentSource) ||
		errors.Is(err, ErrInvalidPolicy) ||
		errors.Is(err, ErrAmountRequired)
}
