package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// AES-256-GCM, used for PII columns (emails, phone numbers).
// Layout: [nonce(12 bytes) || ciphertext... || tag(16 bytes)], Base64-URL-encoded.

// Encrypt encrypts the provided plaintext with AES-256-GCM.
// The encryptionKey must be exactly 32 bytes (256 bits).
func Encrypt(encryptionKey []byte, text string) (string, error) {
	if len(encryptionKey) != 32 {
		return "", errors.New("encryption key must be 32 bytes for AES-256")
	}
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext := []byte(text)

	// GCM standard 12-byte nonce
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// Seal appends ciphertext + 16-byte tag
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	data := append(nonce, ciphertext...)

	return base64.URLEncoding.EncodeToString(data), nil
}

// Decrypt decrypts data produced by Encrypt.
// It expects a single URL-safe Base64 string containing [nonce||ciphertext||tag].
func Decrypt(encryptionKey []byte, encoded string) (string, error) {
	if len(encryptionKey) != 32 {
		return "", errors.New("encryption key must be 32 bytes for AES-256")
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", errors.New("malformed ciphertext (too short for nonce)")
	}
	nonce := raw[:nonceSize]
	ciphertextAndTag := raw[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertextAndTag, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// DeriveLookupKey produces a deterministic token for exact-match lookups on
// encrypted columns (PBKDF2-SHA256 over the plaintext with the encryption key
// as salt). Not reversible; stored alongside the ciphertext.
func DeriveLookupKey(encryptionKey []byte, text string) string {
	derived := pbkdf2.Key([]byte(text), encryptionKey, 10000, 32, sha256.New)
	return base64.URLEncoding.EncodeToString(derived)
}
