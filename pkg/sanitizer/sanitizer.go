package sanitizer

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	dotRegex        = regexp.MustCompile(`\.{2,}`)
)

// Apply runs transforms on value in order.
func Apply[T any](value T, transforms ...func(T) T) T {
	for _, t := range transforms {
		value = t(value)
	}
	return value
}

// Compose joins transforms into one.
func Compose[T any](transforms ...func(T) T) func(T) T {
	return func(value T) T {
		return Apply(value, transforms...)
	}
}

// TrimToLower trims and lowercases s.
func TrimToLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeWhitespace collapses runs of whitespace into one space and
// trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// NormalizeEmail lowercases an address and collapses repeated dots in its
// local part. Strings that are not a single local@domain pair are only
// trimmed and lowercased.
func NormalizeEmail(email string) string {
	email = TrimToLower(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return email
	}
	local = strings.Trim(dotRegex.ReplaceAllString(local, "."), ".")
	return local + "@" + domain
}

// NormalizePhone collapses whitespace in a phone number.
func NormalizePhone(phone string) string {
	return NormalizeWhitespace(phone)
}

// MaskEmail hides the local part of an address except its first letter.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || local == "" {
		return email
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + "@" + domain
}

// CleanStrings applies normalize to every element, drops empty results
// and removes case-insensitive duplicates, keeping the first occurrence.
func CleanStrings(values []string, normalize func(string) string) []string {
	if normalize == nil {
		normalize = strings.TrimSpace
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = normalize(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
