package handler

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError collects field validation messages.
// It's based on url.Values to leverage built-in string slice handling.
type ValidationError url.Values

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := e.fields()
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field][0]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// NewValidationError creates an empty validation error.
func NewValidationError() ValidationError {
	return make(ValidationError)
}

// Add adds a message for a field.
func (e ValidationError) Add(field, message string) {
	url.Values(e).Add(field, message)
}

// Get returns the first message for a field.
func (e ValidationError) Get(field string) string {
	return url.Values(e).Get(field)
}

// Has reports whether a field has any messages.
func (e ValidationError) Has(field string) bool {
	return len(e[field]) > 0
}

// IsEmpty reports whether no field failed.
func (e ValidationError) IsEmpty() bool {
	return len(e) == 0
}

// Err returns e, or nil when it is empty.
func (e ValidationError) Err() error {
	if e.IsEmpty() {
		return nil
	}
	return e
}

func (e ValidationError) fields() []string {
	fields := make([]string, 0, len(e))
	for field, messages := range e {
		if len(messages) > 0 {
			fields = append(fields, field)
		}
	}
	slices.Sort(fields)
	return fields
}
