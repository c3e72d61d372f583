// Package normalize holds the small canonicalization helpers used
// before values are compared or stored.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are compared and
// stored in this form everywhere.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace. Case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
