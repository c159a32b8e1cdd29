package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

var hashSalt string

// InitHashSalt loads the hash salt from the environment. In production,
// set LOG_HASH_SALT.
func InitHashSalt() {
	hashSalt = os.Getenv("LOG_HASH_SALT")
	if hashSalt == "" {
		hashSalt = "default-salt-change-in-production"
	}
}

// InitHashSaltForTesting sets a fixed salt so hashes are stable in tests.
func InitHashSaltForTesting(salt string) {
	hashSalt = salt
}

func init() {
	InitHashSalt()
}

// HashUserID creates a privacy-preserving hash of a user ID.
// This allows tracking engine activity without exposing actual user IDs.
func HashUserID(userID string) string {
	data := fmt.Sprintf("%s:%s", userID, hashSalt)
	hash := sha256.Sum256([]byte(data))
	// First 8 characters for readability
	return hex.EncodeToString(hash[:])[:8]
}

// SanitizeNote redacts free-text transaction notes while preserving
// length information for debugging.
func SanitizeNote(note string) string {
	if note == "" {
		return "<empty>"
	}

	words := strings.Fields(note)
	return fmt.Sprintf("<redacted: %d words, %d chars>", len(words), len(note))
}
