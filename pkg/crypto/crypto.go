package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidCiphertext is returned when a sealed value was tampered with or
// sealed by a different key.
var ErrInvalidCiphertext = errors.New("crypto: invalid ciphertext")

const keySize = 32

// Client seals short values (cookie payloads) with AES-256-GCM.
// Sealed values are URL-safe base64 without padding.
type Client interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

type client struct {
	aead cipher.AEAD
}

// NewClient builds a client from a standard base64 encoded 32 byte key.
func NewClient(keyStr string) (Client, error) {
	if keyStr == "" {
		return nil, fmt.Errorf("encryption key is required")
	}

	key, err := base64.StdEncoding.DecodeString(keyStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}

	if len(key) != keySize {
		return nil, fmt.Errorf("encryption key must be 32 bytes (256-bit) when base64 decoded")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &client{aead: gcm}, nil
}

// GenerateKey returns a random key in the format NewClient expects.
func GenerateKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func (c *client) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *client) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}

	data, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: decode base64: %v", ErrInvalidCiphertext, err)
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: too short", ErrInvalidCiphertext)
	}

	nonce, cipherData := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, cipherData, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}

	return string(plaintext), nil
}
