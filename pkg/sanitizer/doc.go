// Package sanitizer normalizes user input before it is validated and
// stored: whitespace, letter case, email addresses, phone numbers and
// string lists.
//
// Helpers are plain functions and compose into pipelines:
//
//	clean := sanitizer.Compose(sanitizer.NormalizeWhitespace, strings.ToLower)
//	name := sanitizer.Apply(input, clean)
package sanitizer
