package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateToken returns a hex-encoded random token of length*2 characters.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		length = 32
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashData returns the hex-encoded SHA-256 digest of data.
func HashData(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// DeterministicID derives a stable identifier from the joined inputs.
// Used to dedupe webhook deliveries that carry the same logical event.
func DeterministicID(inputs ...string) string {
	return HashData(strings.Join(inputs, ":"))
}
