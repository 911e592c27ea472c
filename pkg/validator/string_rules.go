package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Required fails for strings that are empty after trimming.
func Required(field, value string) Rule {
	return rule(field, "field is required", func() bool {
		return strings.TrimSpace(value) != ""
	})
}

// MinLen counts characters, not bytes.
func MinLen(field, value string, min int) Rule {
	return rule(field, fmt.Sprintf("must be at least %d characters long", min), func() bool {
		return utf8.RuneCountInString(value) >= min
	})
}

// MaxLen counts characters, not bytes.
func MaxLen(field, value string, max int) Rule {
	return rule(field, fmt.Sprintf("cannot exceed %d characters", max), func() bool {
		return utf8.RuneCountInString(value) <= max
	})
}

// LenBetween checks min <= length <= max.
func LenBetween(field, value string, min, max int) Rule {
	return rule(field, fmt.Sprintf("must be between %d and %d characters", min, max), func() bool {
		n := utf8.RuneCountInString(value)
		return n >= min && n <= max
	})
}

// Matches checks value against pattern; description completes "must be ...".
func Matches(field, value string, pattern *regexp.Regexp, description string) Rule {
	return rule(field, "must be "+description, func() bool {
		return pattern.MatchString(value)
	})
}

// Each applies check to every element, failing on the first miss.
func Each(field string, values []string, message string, check func(string) bool) Rule {
	return rule(field, message, func() bool {
		for _, v := range values {
			if !check(v) {
				return false
			}
		}
		return true
	})
}

// NotEmpty fails for empty slices.
func NotEmpty[T any](field string, values []T) Rule {
	return rule(field, "at least one value is required", func() bool {
		return len(values) > 0
	})
}
