package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", "app-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.True(t, VerifyPassword(hash, "correct horse battery staple", "app-secret"))
	assert.False(t, VerifyPassword(hash, "wrong password", "app-secret"))
	assert.False(t, VerifyPassword(hash, "correct horse battery staple", "different-app-secret"))
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	other, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerateVerificationCode(t *testing.T) {
	code, err := GenerateVerificationCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestCanonicalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"leading zero becomes country code", "081234567890", "6281234567890"},
		{"leading plus is stripped", "+6281234567890", "6281234567890"},
		{"already canonical", "6281234567890", "6281234567890"},
		{"surrounding whitespace trimmed", "  081234567890  ", "6281234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalizePhone(tt.input))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.com  "))
}
