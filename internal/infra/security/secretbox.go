package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrCiphertextInvalid indicates the payload could not be authenticated.
var ErrCiphertextInvalid = errors.New("secretbox: invalid ciphertext")

// SecretBox provides AES-GCM symmetric encryption for small payloads such as
// cookie values. The key material is derived from the configured secret via
// SHA-256, so any non-empty string works as a key.
type SecretBox struct {
	aead cipher.AEAD
}

// NewSecretBox derives an AES-256-GCM cipher from the secret.
func NewSecretBox(secret string) (*SecretBox, error) {
	if secret == "" {
		return nil, fmt.Errorf("secretbox: secret is required")
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &SecretBox{aead: aead}, nil
}

// Seal encrypts the plaintext and returns a base64 URL-safe payload with the
// nonce prepended.
func (b *SecretBox) Seal(plaintext string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a payload produced by Seal.
func (b *SecretBox) Open(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrCiphertextInvalid
	}

	nonceSize := b.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrCiphertextInvalid
	}

	plaintext, err := b.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrCiphertextInvalid
	}

	return string(plaintext), nil
}
