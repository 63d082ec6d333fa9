package domain

// PaymentSource is either a *Card or an AuthorizationToken.
// The set is closed: only types in this package implement it.
type PaymentSource interface {
	isPaymentSource()
}

var (
	_ PaymentSource = (*Card)(nil)
	_ PaymentSource = AuthorizationToken{}
)
