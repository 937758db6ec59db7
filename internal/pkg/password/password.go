package password

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

const (
	// hashCost is the bcrypt work factor for stored passwords
	hashCost = 12
	// MinLength is the minimum accepted password length
	MinLength = 8
	// maxLength guards the bcrypt 72-byte input limit; anything longer
	// would be silently truncated by the hash
	maxLength = 72
)

// Hash derives a bcrypt hash for storing a password
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether a plaintext password matches a stored hash
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashToken hashes a refresh token with SHA-256 for at-rest storage.
// Unlike passwords, refresh tokens are high-entropy, so a fast hash is fine.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidatePassword reports whether a candidate password is acceptable
func ValidatePassword(password string) bool {
	return len(password) >= MinLength && len(password) <= maxLength
}
