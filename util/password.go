package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var (
	jwtSecretValue = getEnv("JWTSECRET", "")
	jwtSecret      = jwtSecretValue
	jwtSecretByte  = []byte(jwtSecretValue)
	jwtMutex       sync.RWMutex
)

// argon2id parameters; stored hashes are prefixed so they stay verifiable
// if these are tuned later.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonPrefix  = "argon2id$"
)

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

// HashPassword is the legacy HMAC-SHA256 scheme. New accounts use
// HashPasswordArgon2; this remains so pre-migration hashes stay verifiable
// until the login-time upgrade rewrites them.
func HashPassword(password string) (hashedPassword string) {
	secretByte := GetJWTSecretByte()
	h := hmac.New(sha256.New, secretByte)
	h.Write([]byte(password))
	hashedPassword = hex.EncodeToString(h.Sum(nil))
	return
}

// GenerateSalt returns a random 16-byte salt, hex encoded.
func GenerateSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashPasswordArgon2 derives an argon2id hash of the password with the given
// hex-encoded salt. The result carries the argonPrefix marker.
func HashPasswordArgon2(password, salt string) (string, error) {
	saltBytes, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("invalid salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), saltBytes, argonTime, argonMemory, argonThreads, argonKeyLen)
	return argonPrefix + hex.EncodeToString(key), nil
}

// VerifyPassword checks a plaintext password against the stored hash using
// constant-time comparison. Argon2 hashes are detected by prefix; anything
// else is treated as a legacy HMAC hash.
func VerifyPassword(password, stored, salt string) (bool, error) {
	if strings.HasPrefix(stored, argonPrefix) {
		computed, err := HashPasswordArgon2(password, salt)
		if err != nil {
			return false, err
		}
		return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1, nil
	}
	legacy := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(legacy), []byte(stored)) == 1, nil
}

// SetJWTSecret allows tests or runtime code to update the JWT secret used
// for both token signing and legacy password hashing. This function is
// thread-safe and can be called concurrently.
func SetJWTSecret(secret string) {
	jwtMutex.Lock()
	defer jwtMutex.Unlock()
	jwtSecret = secret
	jwtSecretByte = []byte(secret)
}

// GetJWTSecretByte returns a copy of the current JWT secret bytes in a thread-safe manner.
func GetJWTSecretByte() []byte {
	jwtMutex.RLock()
	defer jwtMutex.RUnlock()
	return append([]byte(nil), jwtSecretByte...)
}
