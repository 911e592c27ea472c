package validator

import (
	"fmt"
	"slices"
	"strings"
)

// OneOf checks that value is one of options.
func OneOf[T comparable](field string, value T, options []T) Rule {
	return rule(field, fmt.Sprintf("must be one of: %s", join(options)), func() bool {
		return slices.Contains(options, value)
	})
}

func join[T any](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
