package validator

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// PasswordStrength describes the character classes a password needs.
type PasswordStrength struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigits    bool
}

// DefaultPasswordStrength requires six characters with an upper case
// letter, a lower case letter and a digit.
func DefaultPasswordStrength() PasswordStrength {
	return PasswordStrength{
		MinLength:        6,
		MaxLength:        72,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigits:    true,
	}
}

// StrongPassword checks value against cfg.
func StrongPassword(field, value string, cfg PasswordStrength) Rule {
	msg := fmt.Sprintf("must be %d-%d characters and contain an uppercase letter, a lowercase letter and a number",
		cfg.MinLength, cfg.MaxLength)
	return rule(field, msg, func() bool {
		n := utf8.RuneCountInString(value)
		if n < cfg.MinLength || (cfg.MaxLength > 0 && len(value) > cfg.MaxLength) {
			return false
		}
		var upper, lower, digit bool
		for _, r := range value {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return (upper || !cfg.RequireUppercase) &&
			(lower || !cfg.RequireLowercase) &&
			(digit || !cfg.RequireDigits)
	})
}
