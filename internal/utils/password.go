package utils // package utils provides helper functions for hashing and one-time code generation

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashSecret returns the bcrypt hash of a plaintext secret using the given
// cost.  It is used for account passwords and for verification/reset codes
// before they are persisted; the same work factor protects both.
func HashSecret(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifySecret safely compares a bcrypt hash and a plaintext secret.
func VerifySecret(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// GenerateOTP returns a numeric one-time code of n digits.  Activation
// codes are short so users can copy them from an email by hand; the
// hashed copy stored server side is what makes them safe at rest.
func GenerateOTP(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + d.Int64())
	}
	return string(digits), nil
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.  Reset tokens use 36 bytes
// (72 hex characters); they grant password-change power and therefore
// carry far more entropy than the numeric activation codes.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
