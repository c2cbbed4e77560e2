package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(FastArgon2Params)

	encoded, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify(encoded, "pw1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(encoded, "pw2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_SaltsDiffer(t *testing.T) {
	h := NewHasher(FastArgon2Params)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHasher_RejectsBadInput(t *testing.T) {
	h := NewHasher(FastArgon2Params)

	_, err := h.Hash("")
	assert.ErrorIs(t, err, ErrPasswordEmpty)

	_, err = h.Hash(strings.Repeat("x", maxPasswordLength+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := NewHasher(FastArgon2Params)

	for _, encoded := range []string{"", "plaintext", "$bcrypt$v=1$x$y$z", "$argon2id$v=19$m=x$salt$hash"} {
		ok, err := h.Verify(encoded, "pw1")
		assert.NoError(t, err, encoded)
		assert.False(t, ok, encoded)
	}
}

func TestHasher_VerifyUsesEncodedParams(t *testing.T) {
	encoded, err := NewHasher(FastArgon2Params).Hash("pw1")
	require.NoError(t, err)

	ok, err := NewHasher(Argon2Params{Memory: 2048, Iterations: 2, Parallelism: 2}).Verify(encoded, "pw1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasher_VerifyDummy(t *testing.T) {
	h := NewHasher(FastArgon2Params)
	h.VerifyDummy("anything")
	assert.NotEmpty(t, h.dummyHash)
}
