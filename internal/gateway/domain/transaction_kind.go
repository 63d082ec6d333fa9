package domain

// TransactionKind is the DataCash method tag; it determines the document shape.
type TransactionKind string

const (
	// KindAuth is an immediate purchase.
	KindAuth TransactionKind = "auth"
	// KindPre is a pre-authorization awaiting fulfilment.
	KindPre TransactionKind = "pre"
	// KindFulfill captures a pre-authorization.
	KindFulfill TransactionKind = "fulfill"
	// KindCancel voids a previous transaction.
	KindCancel TransactionKind = "cancel"
	// KindRefund refunds against card details.
	KindRefund TransactionKind = "refund"
	// KindTxnRefund refunds against a previous transaction reference.
	KindTxnRefund TransactionKind = "txn_refund"
)

// String returns the wire representation of the kind.
func (k TransactionKind) String() string {
	return string(k)
}

// IsValid reports whether k is one of the known kinds.
func (k TransactionKind) IsValid() bool {
	switch k {
	case KindAuth, KindPre, KindFulfill, KindCancel, KindRefund, KindTxnRefund:
		return true
	}
	return false
}
