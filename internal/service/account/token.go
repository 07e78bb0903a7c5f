package account

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy of verification and reset tokens.
const tokenBytes = 32

// TokenSource produces single-use account tokens.
type TokenSource func() (string, error)

// SecureToken returns 32 random bytes from crypto/rand, hex encoded.
func SecureToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
