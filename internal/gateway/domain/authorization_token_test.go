package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"datacash/internal/gateway/domain"
)

func TestAuthorizationToken_RoundTrip(t *testing.T) {
	token := domain.AuthorizationToken{Reference: "4400200050664928", AuthCode: "123456789"}

	serialized := token.String()
	assert.Equal(t, "4400200050664928;123456789;", serialized)

	parsed := domain.ParseAuthorizationToken(serialized)
	assert.Equal(t, token, parsed)
	assert.Equal(t, serialized, parsed.String())
}

func TestParseAuthorizationToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  domain.AuthorizationToken
	}{
		{"all fields", "ref;auth;ca", domain.AuthorizationToken{Reference: "ref", AuthCode: "auth", CAReference: "ca"}},
		{"empty ca reference", "a;b;", domain.AuthorizationToken{Reference: "a", AuthCode: "b"}},
		{"reference only", "ref", domain.AuthorizationToken{Reference: "ref"}},
		{"missing third segment", "ref;auth", domain.AuthorizationToken{Reference: "ref", AuthCode: "auth"}},
		{"empty", "", domain.AuthorizationToken{}},
		{"extra separators stay in ca reference", "a;b;c;d", domain.AuthorizationToken{Reference: "a", AuthCode: "b", CAReference: "c;d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ParseAuthorizationToken(tt.input)
			assert.Equal(t, tt.want, got)
			// Re-parsing the serialized form is stable.
			assert.Equal(t, got, domain.ParseAuthorizationToken(got.String()))
		})
	}
}

func TestAuthorizationToken_HasContinuousAuthority(t *testing.T) {
	assert.False(t, domain.ParseAuthorizationToken("a;b;").HasContinuousAuthority())
	assert.False(t, domain.ParseAuthorizationToken("a;b;  ").HasContinuousAuthority())
	assert.True(t, domain.ParseAuthorizationToken("a;b;c").HasContinuousAuthority())
}
