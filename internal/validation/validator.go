package validation

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether s looks like a plausible email address:
// local part, "@", a domain with at least one dot, and a TLD of two or more
// letters. This is a syntactic gate only; eligibility is decided against the
// roster, not here.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// NormalizeEmail trims whitespace and lowercases an email for roster
// comparison. Submitted emails are stored as typed; only comparisons are
// normalized.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
