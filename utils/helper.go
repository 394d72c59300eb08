package utils

import "strings"

func NewString(s string) *string {
	return &s
}

// NormalizeSize canonicalizes a BOM size token so "m", " M " and "M" all hit
// the same usage-rate row.
func NormalizeSize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
