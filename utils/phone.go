package utils

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// HashPhoneNumber produces the stored form of a customer's phone number.
// Numbers are compared by hash, so formatting differences are stripped first.
func HashPhoneNumber(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	sum := blake2b.Sum256([]byte(digits.String()))
	return hex.EncodeToString(sum[:])
}
