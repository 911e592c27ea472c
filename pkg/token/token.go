// Package token generates opaque random tokens such as organization
// verification codes.
package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
)

// DefaultSize is the number of random bytes in a token.
const DefaultSize = 32

var ErrInvalidSize = errors.New("token size must be positive")

// Random returns size random bytes as lowercase hex.
func Random(size int) (string, error) {
	if size <= 0 {
		return "", ErrInvalidSize
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Equal compares two tokens in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
