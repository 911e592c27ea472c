package validator

import (
	"errors"
	"fmt"
	"strings"
)

// Numeric is the set of number types accepted by numeric rules.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// ValidationError is a single failed rule.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects failed rules in evaluation order.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (ve *ValidationErrors) Add(field, message string) {
	*ve = append(*ve, ValidationError{Field: field, Message: message})
}

func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

func (ve ValidationErrors) Get(field string) []string {
	var messages []string
	for _, err := range ve {
		if err.Field == field {
			messages = append(messages, err.Message)
		}
	}
	return messages
}

func (ve ValidationErrors) IsEmpty() bool {
	return len(ve) == 0
}

// Rule pairs a check with the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

func rule(field, message string, check func() bool) Rule {
	return Rule{Check: check, Error: ValidationError{Field: field, Message: message}}
}

// Apply evaluates rules and returns ValidationErrors for the failing ones.
// Only the first failure per field is reported.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, r := range rules {
		if errs.Has(r.Error.Field) {
			continue
		}
		if !r.Check() {
			errs = append(errs, r.Error)
		}
	}
	if errs.IsEmpty() {
		return nil
	}
	return errs
}

// When returns rules only if cond holds; use it for optional fields.
func When(cond bool, rules ...Rule) []Rule {
	if !cond {
		return nil
	}
	return rules
}

// Join flattens rule groups for Apply.
func Join(groups ...[]Rule) []Rule {
	var out []Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// ExtractValidationErrors returns the ValidationErrors inside err, if any.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// IsValidationError reports whether err carries ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
