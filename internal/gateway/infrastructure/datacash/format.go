package datacash

import (
	"fmt"
	"strings"
)

const (
	minMerchantReference = 6
	maxMerchantReference = 30
)

// FormatMerchantReference keeps only ASCII letters and digits, left-pads with
// zeros to six characters and truncates to thirty.
func FormatMerchantReference(ref string) string {
	var b strings.Builder
	for _, r := range ref {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) < minMerchantReference {
		s = strings.Repeat("0", minMerchantReference-len(s)) + s
	}
	if len(s) > maxMerchantReference {
		s = s[:maxMerchantReference]
	}
	return s
}

// FormatDate renders a month and year as MM/YY.
func FormatDate(month, year int) string {
	return fmt.Sprintf("%02d/%02d", month%100, year%100)
}
