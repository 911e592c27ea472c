package validator

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	phonePattern    = regexp.MustCompile(`^[0-9+\-\s()]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// IsEmail reports whether value is a single bare address with a dotted
// domain.
func IsEmail(value string) bool {
	value = strings.TrimSpace(value)
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}
	at := strings.LastIndexByte(value, '@')
	domain := value[at+1:]
	return at > 0 && strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

// IsPhone accepts digits, spaces and + - ( ).
func IsPhone(value string) bool {
	return phonePattern.MatchString(value)
}

// ValidEmail checks a single email address.
func ValidEmail(field, value string) Rule {
	return rule(field, "must be a valid email address", func() bool { return IsEmail(value) })
}

// ValidPhone checks a single phone number.
func ValidPhone(field, value string) Rule {
	return rule(field, "must be a valid phone number", func() bool { return IsPhone(value) })
}

// ValidURL requires an absolute http or https URL.
func ValidURL(field, value string) Rule {
	return rule(field, "must be a valid http(s) URL", func() bool {
		u, err := url.Parse(value)
		return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	})
}

// ValidUsername allows letters, digits, dot, dash and underscore.
func ValidUsername(field, value string, minLen, maxLen int) Rule {
	return rule(field, "must contain only letters, numbers, dots, dashes and underscores", func() bool {
		return len(value) >= minLen && len(value) <= maxLen && usernamePattern.MatchString(value)
	})
}

// ValidObjectID checks a hex MongoDB ObjectID.
func ValidObjectID(field, value string) Rule {
	return rule(field, "must be a valid id", func() bool {
		_, err := bson.ObjectIDFromHex(value)
		return err == nil
	})
}
