package datacash_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"datacash/internal/gateway/infrastructure/datacash"
)

var merchantReferencePattern = regexp.MustCompile(`^[A-Za-z0-9]{6,30}$`)

func TestFormatMerchantReference(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already valid", "order123456", "order123456"},
		{"strips punctuation", "#ORD-00-1", "ORD001"},
		{"pads short reference", "42", "000042"},
		{"pads after stripping", "a-b", "0000ab"},
		{"empty becomes zeros", "", "000000"},
		{"only punctuation", "--##--", "000000"},
		{"truncates long reference", strings.Repeat("x", 40), strings.Repeat("x", 30)},
		{"drops non-ascii letters", "café-1234", "caf1234"},
		{"exactly thirty", strings.Repeat("9", 30), strings.Repeat("9", 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := datacash.FormatMerchantReference(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, merchantReferencePattern, got)
		})
	}
}

func TestFormatMerchantReference_PreservesOrder(t *testing.T) {
	inputs := []string{"Z-9 y 8_x7", "order #1001/2025", "a.b.c.d.e.f.g.h"}
	for _, in := range inputs {
		got := datacash.FormatMerchantReference(in)
		kept := regexp.MustCompile(`[^A-Za-z0-9]`).ReplaceAllString(in, "")
		assert.True(t, strings.HasSuffix(got, kept) || strings.HasPrefix(kept, got), "%q -> %q", in, got)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "09/12", datacash.FormatDate(9, 2012))
	assert.Equal(t, "12/09", datacash.FormatDate(12, 9))
	assert.Equal(t, "01/30", datacash.FormatDate(1, 2030))
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, datacash.TestURL, datacash.Endpoint(true, false))
	assert.Equal(t, datacash.TestFraudURL, datacash.Endpoint(true, true))
	assert.Equal(t, datacash.LiveURL, datacash.Endpoint(false, false))
	assert.Equal(t, datacash.LiveFraudURL, datacash.Endpoint(false, true))

	cfg := datacash.Config{Test: true, FraudServices: true}
	assert.Equal(t, datacash.TestFraudURL, cfg.Endpoint())
}
