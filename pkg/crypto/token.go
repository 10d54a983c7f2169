package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

const (
	DefaultSecretLength = 32 // 256 bits
)

// SecretPair holds an opaque client secret and the digest kept in storage
type SecretPair struct {
	Secret string // value handed to the client
	Hash   string // value in storage
}

// NewSecret generates a URL-safe random secret of byteLength bytes
// (DefaultSecretLength when byteLength <= 0) together with its hash.
func NewSecret(byteLength int) (*SecretPair, error) {
	if byteLength <= 0 {
		byteLength = DefaultSecretLength
	}

	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	secret := base64.RawURLEncoding.EncodeToString(raw)
	return &SecretPair{Secret: secret, Hash: HashSecret(secret)}, nil
}

func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// VerifySecret reports whether secret hashes to storedHash.
// Empty inputs never verify.
func VerifySecret(secret, storedHash string) bool {
	if secret == "" || storedHash == "" {
		return false
	}

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(HashSecret(secret)), []byte(storedHash)) == 1
}
