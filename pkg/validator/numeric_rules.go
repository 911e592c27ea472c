package validator

import "fmt"

// Min checks value >= min.
func Min[T Numeric](field string, value, min T) Rule {
	return rule(field, fmt.Sprintf("must be at least %v", min), func() bool { return value >= min })
}

// Max checks value <= max.
func Max[T Numeric](field string, value, max T) Rule {
	return rule(field, fmt.Sprintf("must be at most %v", max), func() bool { return value <= max })
}

// Between checks min <= value <= max.
func Between[T Numeric](field string, value, min, max T) Rule {
	return rule(field, fmt.Sprintf("must be between %v and %v", min, max), func() bool {
		return value >= min && value <= max
	})
}
