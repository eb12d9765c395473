// Package apikey issues and checks the bearer keys third party tools use to
// add tasks on a user's behalf. Only the hash of a key is ever stored.
package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// Prefix marks keys issued by newday.
	Prefix = "nd_"

	MinLength = 20
	MaxLength = 100

	randomBytes = 32
)

// ErrFormat is returned for keys outside the accepted length range.
var ErrFormat = errors.New("apikey: invalid format")

// Generate returns a new key and its hash. The key is shown to the user once.
func Generate() (key, hash string, err error) {
	b := make([]byte, randomBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("apikey: read random: %w", err)
	}
	key = Prefix + hex.EncodeToString(b)
	return key, Hash(key), nil
}

// Hash is the hex SHA-256 of key.
func Hash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// ValidateFormat checks the key length before any lookup happens.
func ValidateFormat(key string) error {
	if len(key) < MinLength || len(key) > MaxLength {
		return ErrFormat
	}
	return nil
}
