// Package secrets encrypts provider credentials at rest. API keys are stored
// as AES-GCM ciphertext derived from a single master key; decryption happens
// once per model per run execution.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// Keystore seals and opens provider API keys with a process-wide master key.
type Keystore struct {
	aead cipher.AEAD
}

// New derives a 256-bit key from the master key material and prepares the
// AEAD cipher. The master key must not be empty.
func New(masterKey string) (*Keystore, error) {
	if masterKey == "" {
		return nil, fmt.Errorf("master key must not be empty")
	}

	key := sha256.Sum256([]byte(masterKey))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &Keystore{aead: aead}, nil
}

// Encrypt seals the plaintext and returns a base64 token carrying the nonce
// and ciphertext. Empty plaintext yields an empty token.
func (k *Keystore) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, k.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := k.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt. An empty token yields an empty
// plaintext.
func (k *Keystore) Decrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	sealed, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	nonceSize := k.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	plaintext, err := k.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("open ciphertext: %w", err)
	}

	return string(plaintext), nil
}
