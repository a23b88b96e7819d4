package core

import "strings"

// DefaultCountryPrefix is prepended to bare national numbers.
const DefaultCountryPrefix = "+91"

// PhoneNormalizer canonicalizes phone numbers so equality and uniqueness
// checks always see a single representation per number.
type PhoneNormalizer struct {
	CountryPrefix string
}

// Normalize returns the canonical form of raw. A number already carrying
// a country prefix passes through unchanged; everything else loses its
// leading zeros and gains the configured prefix. Empty input stays empty.
// Normalize is pure and idempotent.
func (n PhoneNormalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "+") {
		return raw
	}
	prefix := n.CountryPrefix
	if prefix == "" {
		prefix = DefaultCountryPrefix
	}
	return prefix + strings.TrimLeft(raw, "0")
}
