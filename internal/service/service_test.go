package service

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/NiGhtKinG17/LeafNote/internal/auth"
	"github.com/NiGhtKinG17/LeafNote/internal/search"
	"github.com/NiGhtKinG17/LeafNote/internal/store"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

// testEnv bundles the services over a fresh in-memory store.
type testEnv struct {
	store    *store.Badger
	index    *search.SearchIndex
	identity *IdentityService
	sessions *SessionBinder
	notes    *NoteService
	tokens   *auth.TokenService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := store.NewWithOptions("", nil, store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key, err := hex.DecodeString(testKeyHex)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(hex.EncodeToString(key))
	require.NoError(t, err)

	return &testEnv{
		store:    s,
		index:    index,
		identity: NewIdentityService(s, auth.NewHasher(auth.FastArgon2Params), nil),
		sessions: NewSessionBinder(s, tokens, time.Hour, nil),
		notes:    NewNoteService(s, index, nil),
		tokens:   tokens,
	}
}

// registerAndBind creates a local user and returns its resolved identity.
func (e *testEnv) registerAndBind(t *testing.T, username string) *Identity {
	t.Helper()
	ctx := context.Background()

	userID, err := e.identity.RegisterLocal(ctx, RegisterRequest{Username: username, Password: "pw-" + username})
	require.NoError(t, err)

	bound, err := e.sessions.Bind(ctx, userID, SessionMeta{})
	require.NoError(t, err)

	caller, err := e.sessions.Resolve(ctx, bound.Token)
	require.NoError(t, err)
	return caller
}
