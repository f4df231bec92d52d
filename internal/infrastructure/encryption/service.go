// Package encryption seals access tokens at rest with XChaCha20-Poly1305.
package encryption

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"archie-shopify-sync/internal/ports"
)

const keyInfo = "archie-shopify-sync token encryption v1"

// ErrMalformedCiphertext is returned for input that was not produced by Encrypt
var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// Service implements ports.EncryptionService. The AEAD key is derived from
// the configured secret with HKDF-SHA256, so any non-empty secret works.
type Service struct {
	aead cipher.AEAD
}

var _ ports.EncryptionService = (*Service)(nil)

// NewService derives the key from secret
func NewService(secret string) (*Service, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("encryption key must be at least 16 characters")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &Service{aead: aead}, nil
}

// Encrypt returns base64(nonce || ciphertext)
func (s *Service) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt
func (s *Service) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	if len(raw) < s.aead.NonceSize()+s.aead.Overhead() {
		return "", ErrMalformedCiphertext
	}

	nonce, sealed := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plain), nil
}
