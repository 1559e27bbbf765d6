package utils

import (
	"encoding/base64"
	"testing"
)

// sequentialKey returns a deterministic 32-byte AES key for tests.
func sequentialKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestAESGCMEncryptionDecryption(t *testing.T) {
	encryptionKey := sequentialKey()
	plaintext := "buyer@surepeps.com"

	ciphertext, err := Encrypt(encryptionKey, plaintext)
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	decrypted, err := Decrypt(encryptionKey, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}

	if decrypted != plaintext {
		t.Fatalf("Expected decrypted text '%s', got '%s'", plaintext, decrypted)
	}
}

func TestAESGCMInvalidKey(t *testing.T) {
	shortKey := []byte("not-32-bytes")
	_, err := Encrypt(shortKey, "some text")
	if err == nil {
		t.Fatal("Expected error with invalid key length, got no error")
	} else {
		t.Logf("Correctly got error for invalid key length: %v", err)
	}

	_, err = Decrypt(shortKey, "some ciphertext")
	if err == nil {
		t.Fatal("Expected error with invalid key length, got no error")
	} else {
		t.Logf("Correctly got error for invalid key length: %v", err)
	}
}

func TestAESGCMCorruption(t *testing.T) {
	encryptionKey := sequentialKey()
	plaintext := "+2348000000001"

	ciphertext, err := Encrypt(encryptionKey, plaintext)
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	// Flip a byte in the raw ciphertext
	raw, decodeErr := base64.URLEncoding.DecodeString(ciphertext)
	if decodeErr != nil {
		t.Fatalf("Base64 decode error: %v", decodeErr)
	}
	if len(raw) > 0 {
		raw[0] ^= 0xFF
	}
	corrupted := base64.URLEncoding.EncodeToString(raw)

	_, err = Decrypt(encryptionKey, corrupted)
	if err == nil {
		t.Fatal("Expected error while decrypting corrupted ciphertext, got no error")
	} else {
		t.Logf("Correctly got error while decrypting corrupted data: %v", err)
	}
}

func TestAESGCMShortCipher(t *testing.T) {
	encryptionKey := make([]byte, 32)
	// "Zm9v" -> "foo", obviously too short for 12-byte nonce + 16-byte tag
	_, err := Decrypt(encryptionKey, "Zm9v")
	if err == nil {
		t.Fatal("Expected error while decrypting too-short ciphertext, got no error")
	} else {
		t.Logf("Correctly got error for too-short ciphertext: %v", err)
	}
}

func TestAESGCMInvalidBase64(t *testing.T) {
	encryptionKey := make([]byte, 32)
	_, err := Decrypt(encryptionKey, "!!!NOT-BASE64!!!")
	if err == nil {
		t.Fatal("Expected base64 decode error, got no error")
	} else {
		t.Logf("Correctly got error for invalid base64: %v", err)
	}
}

func TestEmptyTextAESGCM(t *testing.T) {
	encryptionKey := make([]byte, 32)
	emptyText := ""

	ciphertext, err := Encrypt(encryptionKey, emptyText)
	if err != nil {
		t.Fatalf("Encrypt returned error on empty string: %v", err)
	}

	decrypted, err := Decrypt(encryptionKey, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt returned error on empty string: %v", err)
	}

	if decrypted != emptyText {
		t.Fatalf("Expected empty string, got '%s'", decrypted)
	}
}

func TestAESGCMKeyMismatch(t *testing.T) {
	key1 := sequentialKey()
	key2 := make([]byte, 32)
	for i := range key2 {
		key2[i] = byte(31 - i)
	}
	plaintext := "Mismatch test"

	ciphertext, err := Encrypt(key1, plaintext)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	_, err = Decrypt(key2, ciphertext)
	if err == nil {
		t.Fatal("Expected error decrypting with a different key, got none")
	} else {
		t.Logf("Correctly got error with mismatched AES-GCM key: %v", err)
	}
}

func TestDeriveLookupKeyDeterministic(t *testing.T) {
	key := sequentialKey()

	a := DeriveLookupKey(key, "buyer@surepeps.com")
	b := DeriveLookupKey(key, "buyer@surepeps.com")
	if a != b {
		t.Fatalf("Expected identical lookup keys, got '%s' and '%s'", a, b)
	}

	c := DeriveLookupKey(key, "seller@surepeps.com")
	if a == c {
		t.Fatal("Expected different plaintexts to produce different lookup keys")
	}

	otherKey := make([]byte, 32)
	d := DeriveLookupKey(otherKey, "buyer@surepeps.com")
	if a == d {
		t.Fatal("Expected different keys to produce different lookup keys")
	}
}
