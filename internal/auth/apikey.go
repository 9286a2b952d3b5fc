package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// apiKeyEntropy is the number of random bytes in a key (256 bits).
const apiKeyEntropy = 32

// GenerateAPIKey returns "<prefix>_" followed by 64 lowercase hex characters.
func GenerateAPIKey(prefix string) (string, error) {
	buf := make([]byte, apiKeyEntropy)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return prefix + "_" + hex.EncodeToString(buf), nil
}

// IsAPIKey reports whether a bearer token looks like an API key rather
// than a JWT.
func IsAPIKey(token, prefix string) bool {
	return prefix != "" && strings.HasPrefix(token, prefix+"_")
}
