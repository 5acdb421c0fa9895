package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// sessionTokenSize is the entropy of an opaque session token (256 bits).
const sessionTokenSize = 32

// GenerateSessionToken creates a cryptographically random opaque session token.
// The token is the only thing the client ever holds; the server stores a hash.
// Returns the token string in a base64-urlencoded format.
func GenerateSessionToken() (string, error) {
	b := make([]byte, sessionTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// HashSessionToken creates a hash of the session token for database storage.
// We store hashed tokens so database compromise doesn't leak valid tokens.
func HashSessionToken(token string) string {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		decoded = []byte(token)
	}
	sum := sha256.Sum256(decoded)
	return hex.EncodeToString(sum[:])
}
