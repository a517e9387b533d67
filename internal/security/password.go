package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateAPIKey produces a fresh random API key.
func GenerateAPIKey() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "sk-acestep-" + base64.RawURLEncoding.EncodeToString(b)
}

// HashPassword returns "salt:hash" using salted SHA-256.
func HashPassword(password string) string {
	salt := make([]byte, 16)
	_, _ = rand.Read(salt)
	saltHex := hex.EncodeToString(salt)
	sum := sha256.Sum256([]byte(saltHex + password))
	return fmt.Sprintf("%s:%s", saltHex, hex.EncodeToString(sum[:]))
}

// VerifyPasswordHash checks password against a HashPassword value.
func VerifyPasswordHash(password, hashed string) bool {
	salt, want, found := strings.Cut(hashed, ":")
	if !found {
		return false
	}
	sum := sha256.Sum256([]byte(salt + password))
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
