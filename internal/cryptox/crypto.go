// Package cryptox derives and verifies account credentials. Passwords are
// never persisted: an account stores a random salt and a verifier, the
// SHA-256 of the argon2id key derived from (password, salt).
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of freshly generated salts, in bytes.
const SaltSize = 32

// DeriveKey stretches password with argon2id (1 pass, 64 MiB, 4 lanes, 32 bytes).
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	b := make([]byte, SaltSize)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// NewCredentials generates a salt and the matching verifier for password.
func NewCredentials(password []byte) (salt, verifier []byte, err error) {
	salt, err = NewSalt()
	if err != nil {
		return nil, nil, err
	}
	key := DeriveKey(password, salt)
	defer Wipe(key)
	return salt, MakeVerifier(key), nil
}

// CheckPassword reports whether password matches the stored salt/verifier.
// The comparison is constant time.
func CheckPassword(password, salt, verifier []byte) bool {
	if len(salt) == 0 || len(verifier) == 0 {
		return false
	}
	key := DeriveKey(password, salt)
	defer Wipe(key)
	return subtle.ConstantTimeCompare(MakeVerifier(key), verifier) == 1
}

// CheckPlain compares two plaintext secrets in constant time. It only serves
// records written before credentials were hashed.
func CheckPlain(candidate []byte, stored string) bool {
	return subtle.ConstantTimeCompare(candidate, []byte(stored)) == 1
}

// Wipe overwrites b with zeros. Nil is a no-op.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
