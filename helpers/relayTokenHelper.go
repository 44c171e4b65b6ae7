package helpers

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const relayTokenCost = 12

// HashRelayToken produces the value stored in PRINT_SERVICE_TOKEN_HASH.
func HashRelayToken(token string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(token), relayTokenCost)
	if err != nil {
		return "", fmt.Errorf("hash relay token: %w", err)
	}
	return string(bytes), nil
}

// VerifyRelayToken checks a presented bearer token against the bcrypt hash
// when one is configured, otherwise against the raw token.
func VerifyRelayToken(presented, token, hash string) (bool, string) {
	if presented == "" {
		return false, "missing bearer token"
	}
	if hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented)); err != nil {
			return false, "invalid token"
		}
		return true, ""
	}
	if token == "" {
		return false, "print service token is not configured"
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
		return false, "invalid token"
	}
	return true, ""
}
