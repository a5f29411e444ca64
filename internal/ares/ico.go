package ares

import (
	"regexp"
	"strings"
)

var nonDigitRe = regexp.MustCompile(`\D+`)

// NormalizeICO strips non-digits and left-pads a 7-digit registry ID to the
// canonical 8 digits. Returns "" when no digits remain.
func NormalizeICO(s string) string {
	digits := nonDigitRe.ReplaceAllString(strings.TrimSpace(s), "")
	if digits == "" {
		return ""
	}
	if len(digits) < 8 {
		digits = strings.Repeat("0", 8-len(digits)) + digits
	}
	return digits
}
