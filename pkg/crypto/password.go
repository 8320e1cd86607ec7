// Package crypto holds the process-wide secret-dependent helpers: password
// hashing, opaque access-token generation, verification codes, and the
// phone-number canonicalization rule.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword salts the password with the process-wide APPKEY secret before
// hashing, so the stored hash is opaque even to an attacker who only
// recovers the database. The APPKEY itself is loaded once at startup into
// config.Config and never persisted.
func HashPassword(password, appKey string) (string, error) {
	salted := password + appKey
	hash, err := bcrypt.GenerateFromPassword([]byte(salted), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(hash, password, appKey string) bool {
	salted := password + appKey
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(salted)) == nil
}

// GenerateToken returns a random hex-encoded opaque access token. 32 random bytes yield
// a 64-character hex string, matching the length asserted in scenario S1.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

const verificationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateVerificationCode returns a 6-character alphanumeric secret.
func GenerateVerificationCode() (string, error) {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(verificationCodeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generate verification code: %w", err)
		}
		sb.WriteByte(verificationCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// CanonicalizePhone applies the write-time phone rule: strip a
// leading '+', then replace a leading "0" with the country prefix "62".
func CanonicalizePhone(value string) string {
	v := strings.TrimSpace(value)
	v = strings.TrimPrefix(v, "+")
	if strings.HasPrefix(v, "0") {
		v = "62" + strings.TrimPrefix(v, "0")
	}
	return v
}

// NormalizeEmail lowercases and trims an email address at write time.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
