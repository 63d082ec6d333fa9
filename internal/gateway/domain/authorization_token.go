package domain

import "strings"

// AuthorizationSeparator joins the fields of a serialized AuthorizationToken.
const AuthorizationSeparator = ";"

// AuthorizationToken identifies a previous gateway transaction.
// Serialized form: "reference;auth_code;ca_reference".
type AuthorizationToken struct {
	Reference   string
	AuthCode    string
	CAReference string
}

// ParseAuthorizationToken splits a serialized token. Missing trailing fields are empty.
// Anything after a third separator is kept as part of the ca_reference.
func ParseAuthorizationToken(s string) AuthorizationToken {
	parts := strings.SplitN(s, AuthorizationSeparator, 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return AuthorizationToken{
		Reference:   parts[0],
		AuthCode:    parts[1],
		CAReference: parts[2],
	}
}

// String serializes the token. The result always carries both separators.
func (t AuthorizationToken) String() string {
	return strings.Join([]string{t.Reference, t.AuthCode, t.CAReference}, AuthorizationSeparator)
}

// HasContinuousAuthority reports whether the token can drive a continuous authority transaction.
func (t AuthorizationToken) HasContinuousAuthority() bool {
	return strings.TrimSpace(t.CAReference) != ""
}

func (AuthorizationToken) isPaymentSource() {}
