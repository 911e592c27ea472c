package tenantdb

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MinKeyLength = 3
	MaxKeyLength = 30
)

var keyPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ParseKey normalizes a raw tenant identifier and validates it.
// Surrounding whitespace is trimmed and letters are lowercased, so "ACME"
// and "acme" name the same tenant.
func ParseKey(raw string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTenantKey)
	}
	if len(key) < MinKeyLength || len(key) > MaxKeyLength {
		return "", fmt.Errorf("%w: %q must be %d-%d characters", ErrInvalidTenantKey, raw, MinKeyLength, MaxKeyLength)
	}
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: %q may only contain lowercase letters, digits and inner hyphens", ErrInvalidTenantKey, raw)
	}
	return key, nil
}

// DatabaseName derives the tenant database name for an already
// normalized key.
func DatabaseName(prefix, key string) string {
	return prefix + "_" + key
}
