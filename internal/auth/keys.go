// Package auth provides password hashing and session token primitives.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	// PASETO v4 requires a 256-bit (32-byte) symmetric key.
	keyLength = 32
	// Expected hex-encoded length (32 bytes = 64 hex characters).
	keyHexLength = 64

	minSecretLength = 16
	keyInfo         = "leafnote session key v1"

	// CSRFKeyPurpose labels the form token signing key.
	CSRFKeyPurpose = "csrf"
)

// ErrSecretTooShort is returned by DeriveKey for weak secrets.
var ErrSecretTooShort = fmt.Errorf("session secret must be at least %d characters", minSecretLength)

// DeriveKey derives the 32 byte token key from a configured secret using HKDF-SHA256.
// The same secret always yields the same key, so every replica shares sessions.
func DeriveKey(secret string) ([]byte, error) {
	if len(secret) < minSecretLength {
		return nil, ErrSecretTooShort
	}

	key := make([]byte, keyLength)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return key, nil
}

// SubKey derives an independent 32 byte key for purpose from the session key,
// so the token encryption key is never used for anything else.
func SubKey(master []byte, purpose string) ([]byte, error) {
	if len(master) != keyLength {
		return nil, fmt.Errorf("invalid master key length: expected %d bytes, got %d", keyLength, len(master))
	}
	if purpose == "" {
		return nil, errors.New("subkey purpose is required")
	}

	key := make([]byte, keyLength)
	r := hkdf.New(sha256.New, master, nil, []byte("leafnote "+purpose+" key v1"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}

// LoadOrGenerateKey loads or generates the PASETO v4 symmetric key.
// The key is stored at keyPath as a hex-encoded string.
// If the file doesn't exist, a new key is generated and saved.
func LoadOrGenerateKey(keyPath string) ([]byte, error) {
	//#nosec G304 -- key path comes from configuration
	keyBytes, err := os.ReadFile(keyPath)
	if err == nil {
		keyHex := strings.TrimSpace(string(keyBytes))

		if len(keyHex) != keyHexLength {
			return nil, fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", keyHexLength, len(keyHex))
		}

		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid auth key format: not valid hex: %w", err)
		}

		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate auth key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save auth key: %w", err)
	}

	return key, nil
}

// ResolveKey picks the derived key when a secret is configured, else the key file.
func ResolveKey(secret, keyPath string) ([]byte, error) {
	if secret != "" {
		return DeriveKey(secret)
	}
	return LoadOrGenerateKey(keyPath)
}
