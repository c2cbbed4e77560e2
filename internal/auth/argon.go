package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	argon2SaltLength = 16
	argon2KeyLength  = 32

	// Upper bound on hashed input size.
	maxPasswordLength = 1024
)

// Password hashing errors.
var (
	ErrPasswordEmpty   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password exceeds maximum length")
)

// Argon2Params are the cost parameters encoded into new hashes.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultArgon2Params is used for every production hash.
var DefaultArgon2Params = Argon2Params{Memory: 64 * 1024, Iterations: 3, Parallelism: 4}

// FastArgon2Params keeps property tests and the seed tool quick. Never use in production.
var FastArgon2Params = Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1}

// Hasher hashes and verifies argon2id passwords.
type Hasher struct {
	params Argon2Params

	dummyOnce sync.Once
	dummyHash string
}

// NewHasher creates a hasher producing hashes with the given parameters.
// Verification always uses the parameters encoded in the stored hash.
func NewHasher(params Argon2Params) *Hasher {
	return &Hasher{params: params}
}

// Hash creates an Argon2id hash of the password with a random salt.
// The result is a PHC formatted string.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordEmpty
	}
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}

	salt := make([]byte, argon2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		argon2KeyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify reports whether password matches encodedHash.
// A malformed hash verifies as false, not as an error.
func (h *Hasher) Verify(encodedHash, password string) (bool, error) {
	if len(password) > maxPasswordLength {
		return false, nil
	}

	salt, hash, params, err := decodeHash(encodedHash)
	if err != nil {
		//nolint:nilerr // a malformed hash is a failed verification
		return false, nil
	}

	testHash := argon2.IDKey(
		[]byte(password),
		salt,
		params.iterations,
		params.memory,
		params.parallelism,
		params.keyLength,
	)

	return subtle.ConstantTimeCompare(hash, testHash) == 1, nil
}

// VerifyDummy runs a full verification against a throwaway hash built with
// this hasher's parameters. Callers use it when no stored hash exists so a
// missing user costs the same as a wrong password.
func (h *Hasher) VerifyDummy(password string) {
	h.dummyOnce.Do(func() {
		b := make([]byte, 24)
		_, _ = rand.Read(b)
		h.dummyHash, _ = h.Hash(base64.RawStdEncoding.EncodeToString(b))
	})
	_, _ = h.Verify(h.dummyHash, password)
}

// argon2Params holds the parameters extracted from an encoded hash.
type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	keyLength   uint32
}

// decodeHash extracts salt, hash and parameters from encoded string, or errors if it can't.
func decodeHash(encodedHash string) (salt, hash []byte, params *argon2Params, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, nil, errors.New("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return nil, nil, nil, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	params = &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.iterations, &params.parallelism); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid parameters: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid salt encoding: %w", err)
	}

	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid hash encoding: %w", err)
	}

	//nolint:gosec // Hash length is always 32 bytes (argon2KeyLength), safe to convert
	params.keyLength = uint32(len(hash))

	return salt, hash, params, nil
}
