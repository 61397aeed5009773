package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgon2HashAndVerify(t *testing.T) {
	salt, err := GenerateSalt()
	assert.NoError(t, err)
	assert.Len(t, salt, 32)

	hashed, err := HashPasswordArgon2("s3cret-pass", salt)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "argon2id$"))

	ok, err := VerifyPassword("s3cret-pass", hashed, salt)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-pass", hashed, salt)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordArgon2_InvalidSalt(t *testing.T) {
	_, err := HashPasswordArgon2("pw", "not-hex!")
	assert.Error(t, err)
}

func TestVerifyPassword_LegacyHMAC(t *testing.T) {
	SetJWTSecret("legacy-secret")
	legacy := HashPassword("old-pass")

	ok, err := VerifyPassword("old-pass", legacy, "")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("other", legacy, "")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateSalt_Unique(t *testing.T) {
	a, err := GenerateSalt()
	assert.NoError(t, err)
	b, err := GenerateSalt()
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}
