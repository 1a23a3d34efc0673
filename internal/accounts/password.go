package accounts

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 200_000
	saltBytes        = 16
	keyBytes         = 32
)

// hashPassword derives a PBKDF2-SHA256 credential, returning base64 salt and
// hash as stored in the users collection.
func hashPassword(password string) (saltB64, hashB64 string, err error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	hash := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyBytes, sha256.New)
	return base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash), nil
}

// verifyPassword recomputes the hash for the stored salt and compares in
// constant time.
func verifyPassword(password, saltB64, hashB64 string) bool {
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}
	stored, err := base64.StdEncoding.DecodeString(hashB64)
	if err != nil {
		return false
	}
	calc := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, len(stored), sha256.New)
	return subtle.ConstantTimeCompare(calc, stored) == 1
}
